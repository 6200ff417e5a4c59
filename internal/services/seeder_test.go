package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smashpass/internal/db"
	"smashpass/internal/models"
)

// newSeederWithFakeCatalog 起一个假目录服务，按查询内容分流响应
func newSeederWithFakeCatalog(t *testing.T, charactersStatus int) *Seeder {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query string `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}

		if strings.Contains(req.Query, "SEARCH_MATCH") {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": map[string]interface{}{
					"Media": map[string]interface{}{
						"id":        500,
						"title":     map[string]string{"english": "Seeded Anime"},
						"startDate": map[string]int{"year": 2011},
					},
				},
			})
			return
		}

		if charactersStatus != http.StatusOK {
			w.WriteHeader(charactersStatus)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"Media": map[string]interface{}{
					"characters": map[string]interface{}{
						"pageInfo": map[string]bool{"hasNextPage": false},
						"nodes": []map[string]interface{}{
							{
								"id":     601,
								"name":   map[string]string{"full": "Hero"},
								"image":  map[string]string{"large": "https://img/hero-l.png", "medium": "https://img/hero-m.png"},
								"age":    "16",
								"gender": "Male",
							},
							{
								"id":     602,
								"name":   map[string]string{"native": "ヒロイン"},
								"gender": "Female",
							},
						},
					},
				},
			},
		})
	}))
	t.Cleanup(server.Close)

	os.Setenv("ANILIST_API_URL", server.URL)
	t.Cleanup(func() { os.Unsetenv("ANILIST_API_URL") })

	seeder := NewSeeder()
	// 测试里不需要限速
	seeder.searchDelay = 0
	seeder.pageDelay = 0
	return seeder
}

func TestSeederIngestsAnimeAndCharacters(t *testing.T) {
	setupTestDB(t)
	seeder := newSeederWithFakeCatalog(t, http.StatusOK)

	require.NoError(t, seeder.Run(context.Background(), []string{"Seeded Anime"}))

	var anime models.Anime
	require.NoError(t, db.DB.Where("external_id = ?", 500).First(&anime).Error)
	assert.Equal(t, "Seeded Anime", anime.Title)
	assert.Equal(t, "2011", anime.ReleaseDate)

	var characters []models.Character
	require.NoError(t, db.DB.Order("external_id ASC").Find(&characters).Error)
	require.Len(t, characters, 2)
	assert.Equal(t, "Hero", characters[0].Name)
	assert.Equal(t, "16", characters[0].Age)
	assert.Equal(t, "ヒロイン", characters[1].Name) // full 缺失时用 native
	assert.Equal(t, "Unknown", characters[1].Age)
	assert.Equal(t, "Female", characters[1].Gender)

	// Hero 两张图都入库，无图角色不产生行
	var imageCount int64
	db.DB.Model(&models.CharacterImage{}).Count(&imageCount)
	assert.EqualValues(t, 2, imageCount)
}

func TestSeederIsIdempotent(t *testing.T) {
	setupTestDB(t)
	seeder := newSeederWithFakeCatalog(t, http.StatusOK)

	require.NoError(t, seeder.Run(context.Background(), []string{"Seeded Anime"}))
	require.NoError(t, seeder.Run(context.Background(), []string{"Seeded Anime"}))

	var animeCount, charCount, imageCount int64
	db.DB.Model(&models.Anime{}).Count(&animeCount)
	db.DB.Model(&models.Character{}).Count(&charCount)
	db.DB.Model(&models.CharacterImage{}).Count(&imageCount)
	assert.EqualValues(t, 1, animeCount)
	assert.EqualValues(t, 2, charCount)
	assert.EqualValues(t, 2, imageCount)
}

func TestSeederAcceptsPartialIngestion(t *testing.T) {
	setupTestDB(t)
	seeder := newSeederWithFakeCatalog(t, http.StatusTooManyRequests)

	// 角色页抓取失败只放弃该动漫的分页，不算整体失败
	require.NoError(t, seeder.Run(context.Background(), []string{"Seeded Anime"}))

	var animeCount, charCount int64
	db.DB.Model(&models.Anime{}).Count(&animeCount)
	db.DB.Model(&models.Character{}).Count(&charCount)
	assert.EqualValues(t, 1, animeCount)
	assert.EqualValues(t, 0, charCount)
}

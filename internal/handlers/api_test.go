package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"smashpass/internal/middleware"
	"smashpass/internal/router"
	"smashpass/internal/services"
	"smashpass/internal/utils"
)

// catalogDown 置位时假目录服务返回 503，模拟上游故障
var catalogDown atomic.Bool

// TestMain 在所有测试前把目录地址指向假服务。
// 假目录只有男性角色，用来验证性别过滤为空时的 404 行为。
func TestMain(m *testing.M) {
	fake := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if catalogDown.Load() {
			http.Error(w, "upstream unavailable", http.StatusServiceUnavailable)
			return
		}

		var req struct {
			Query string `json:"query"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		if strings.Contains(req.Query, "media(search:") {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"data": map[string]interface{}{
					"Page": map[string]interface{}{
						"media": []map[string]interface{}{
							{"id": 1, "title": map[string]string{"english": "Found Anime"}},
						},
					},
				},
			})
			return
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"Page": map[string]interface{}{
					"characters": []map[string]interface{}{
						{
							"id":     77,
							"name":   map[string]string{"full": "Only Guy"},
							"image":  map[string]string{"large": "https://img/g.png"},
							"gender": "Male",
							"media": map[string]interface{}{
								"nodes": []map[string]interface{}{
									{"id": 7, "title": map[string]string{"english": "Some Anime"}, "startDate": map[string]int{"year": 2001}},
								},
							},
						},
					},
				},
			},
		})
	}))

	os.Setenv("ANILIST_API_URL", fake.URL)
	gin.SetMode(gin.TestMode)
	code := m.Run()
	fake.Close()
	os.Exit(code)
}

func newTestRouter() *gin.Engine {
	r := gin.New()
	store := cookie.NewStore([]byte("test_secret"))
	r.Use(sessions.Sessions("smashpass_session", store))
	r.Use(middleware.EnsureSession())
	r.Use(middleware.RequestMemo())
	router.RegisterRoutes(r)
	return r
}

func TestAnimeSearchRequiresQuery(t *testing.T) {
	r := newTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/anime/search", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without query, got %d", w.Code)
	}
}

func TestAnimeSearchReturnsResults(t *testing.T) {
	r := newTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/anime/search?query=found", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if cc := w.Header().Get("Cache-Control"); !strings.Contains(cc, "s-maxage=3600") {
		t.Errorf("expected long cache-control header, got %q", cc)
	}

	var body struct {
		Results []struct {
			ID int `json:"id"`
		} `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(body.Results) != 1 || body.Results[0].ID != 1 {
		t.Errorf("unexpected results: %+v", body.Results)
	}
}

func TestRandomCharacter(t *testing.T) {
	r := newTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/character", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if cc := w.Header().Get("Cache-Control"); !strings.Contains(cc, "s-maxage=60") {
		t.Errorf("expected short cache-control header, got %q", cc)
	}

	var body services.CatalogCharacter
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Name != "Only Guy" || body.Anime != "Some Anime" {
		t.Errorf("unexpected character: %+v", body)
	}
}

func TestRandomCharacterFilteredOutIsNotFound(t *testing.T) {
	r := newTestRouter()

	// 假目录只有男性角色，过滤女性应得到 404 而不是空的 200
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/character?gender=Female", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when filters exclude everything, got %d", w.Code)
	}
}

// 目录故障在请求路径降级为"没有角色"，不是 500
func TestRandomCharacterCatalogDownIsNotFound(t *testing.T) {
	catalogDown.Store(true)
	defer catalogDown.Store(false)
	utils.GetCache().Purge()

	r := newTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/character", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when catalog is down, got %d", w.Code)
	}
}

func TestAnimeSearchCatalogDownReturnsEmpty(t *testing.T) {
	catalogDown.Store(true)
	defer catalogDown.Store(false)
	utils.GetCache().Purge()

	r := newTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/anime/search?query=unreachable", nil)
	r.ServeHTTP(w, req)

	// 搜索降级为空结果的 200
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 when catalog is down, got %d", w.Code)
	}

	var body struct {
		Results []json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if len(body.Results) != 0 {
		t.Errorf("expected empty results, got %d", len(body.Results))
	}
}

func TestGameConfigLifecycle(t *testing.T) {
	r := newTestRouter()

	// 保存
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/game/config",
		strings.NewReader(`{"animes":["Naruto"],"genders":["Female"],"limit":10}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("save: expected 200, got %d", w.Code)
	}

	var configCookie *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == services.GameConfigCookie {
			configCookie = ck
		}
	}
	if configCookie == nil {
		t.Fatal("expected game config cookie to be set")
	}
	if !configCookie.HttpOnly {
		t.Error("expected config cookie to be http-only")
	}

	// 读取
	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/api/game/config", nil)
	req.AddCookie(configCookie)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("load: expected 200, got %d", w.Code)
	}

	var cfg services.GameConfig
	if err := json.Unmarshal(w.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("failed to decode config: %v", err)
	}
	if len(cfg.Animes) != 1 || cfg.Animes[0] != "Naruto" || cfg.Limit != 10 {
		t.Errorf("round trip mismatch: %+v", cfg)
	}

	// 清除后读取应为 404，清除本身可重复
	w = httptest.NewRecorder()
	req = httptest.NewRequest("DELETE", "/api/game/config", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("clear: expected 204, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/api/game/config", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("load after clear: expected 404, got %d", w.Code)
	}
}

func TestGameConfigCorruptCookieIsAbsent(t *testing.T) {
	r := newTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/game/config", nil)
	req.AddCookie(&http.Cookie{Name: services.GameConfigCookie, Value: "garbage"})
	r.ServeHTTP(w, req)

	// 损坏的 cookie 当作没有配置，不是 500
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for corrupt cookie, got %d", w.Code)
	}
}

package services

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"smashpass/internal/anilist"
	"smashpass/internal/db"
	"smashpass/internal/models"
)

// Seeder 离线灌库流水线：顺序执行、可重复运行、不重复插入。
// 对外部 API 用固定间隔限速；某一页抓取失败就放弃该动漫的后续分页，
// 接受部分灌入，不做重试。
type Seeder struct {
	client *anilist.Client

	// 最多抓 4 页（200 个角色），足够覆盖大型作品的主要角色
	maxPages int
	// 请求间隔，防止触发限流
	searchDelay time.Duration
	pageDelay   time.Duration
}

// NewSeeder 创建 Seeder
func NewSeeder() *Seeder {
	return &Seeder{
		client:      anilist.NewClient(),
		maxPages:    4,
		searchDelay: 2 * time.Second,
		pageDelay:   1200 * time.Millisecond,
	}
}

// Run 逐个处理动漫名单：搜索最佳匹配、入库动漫、分页入库角色
func (s *Seeder) Run(ctx context.Context, animeNames []string) error {
	log.Printf("开始灌库，共 %d 部动漫", len(animeNames))

	for _, name := range animeNames {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		log.Printf("处理: %s", name)
		time.Sleep(s.searchDelay)

		media, err := s.client.BestAnimeMatch(ctx, name)
		if err != nil {
			log.Printf("未找到动漫 %q: %v", name, err)
			continue
		}

		anime, err := s.ensureAnimeRow(media)
		if err != nil {
			return err
		}

		saved, err := s.seedCharacters(ctx, anime)
		if err != nil {
			return err
		}
		log.Printf("%s: 新增 %d 个角色", anime.Title, saved)
	}

	log.Println("灌库完成")
	return nil
}

// ensureAnimeRow 按 externalId 查找或创建动漫行
func (s *Seeder) ensureAnimeRow(media *anilist.Media) (*models.Anime, error) {
	var existing models.Anime
	err := db.DB.Where("external_id = ?", media.ID).First(&existing).Error
	if err == nil {
		log.Printf("动漫已存在: %s", existing.Title)
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	anime := models.Anime{
		ExternalID:  media.ID,
		Title:       media.DisplayTitle(),
		ReleaseDate: media.ReleaseYear(),
	}
	if err := db.DB.Create(&anime).Error; err != nil {
		return nil, err
	}
	log.Printf("新建动漫: %s", anime.Title)
	return &anime, nil
}

// seedCharacters 分页拉取角色并插入缺失的行
func (s *Seeder) seedCharacters(ctx context.Context, anime *models.Anime) (int, error) {
	saved := 0

	for page := 1; page <= s.maxPages; page++ {
		characters, pageInfo, err := s.client.CharactersByAnime(ctx, anime.ExternalID, page)
		if err != nil {
			// 放弃该动漫的后续分页，已入库的部分保留
			log.Printf("抓取 %s 第 %d 页失败: %v", anime.Title, page, err)
			break
		}

		for _, ch := range characters {
			created, err := s.insertCharacterIfMissing(anime, ch)
			if err != nil {
				return saved, err
			}
			if created {
				saved++
			}
		}

		if !pageInfo.HasNextPage {
			break
		}
		time.Sleep(s.pageDelay)
	}

	return saved, nil
}

// insertCharacterIfMissing 每次插入前按 externalId 做存在性检查，
// 保证重复运行不产生重复行
func (s *Seeder) insertCharacterIfMissing(anime *models.Anime, ch anilist.Character) (bool, error) {
	var count int64
	if err := db.DB.Model(&models.Character{}).Where("external_id = ?", ch.ID).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	age := ch.Age
	if age == "" {
		age = "Unknown"
	}
	gender := ch.Gender
	if gender == "" {
		gender = "Unknown"
	}

	character := models.Character{
		ExternalID: ch.ID,
		Name:       ch.DisplayName(),
		Age:        age,
		Gender:     gender,
		AnimeID:    anime.ID,
	}
	if err := db.DB.Create(&character).Error; err != nil {
		return false, err
	}

	for _, url := range []string{ch.Image.Large, ch.Image.Medium} {
		if url == "" {
			continue
		}
		image := models.CharacterImage{
			CharacterID: character.ID,
			ImageURL:    url,
		}
		if err := db.DB.Create(&image).Error; err != nil {
			return false, err
		}
	}

	return true, nil
}

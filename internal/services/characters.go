package services

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"smashpass/internal/anilist"
	"smashpass/internal/db"
	"smashpass/internal/models"
	"smashpass/internal/utils"
)

// 各端点的缓存窗口。排名等易变聚合用分钟级（见 votes.go），
// 角色列表和计数用小时级，基本不变的可选项列表用天级。
const (
	cacheListings = 1 * time.Hour
	cacheOptions  = 24 * time.Hour
)

// CharacterService 角色来源服务：数据库路径和外部目录路径
// 两种策略行为上可互换，都在时间窗口缓存之后。
type CharacterService struct {
	client *anilist.Client
}

var (
	characterService     *CharacterService
	characterServiceOnce sync.Once
)

// GetCharacterService 获取单例角色服务
func GetCharacterService() *CharacterService {
	characterServiceOnce.Do(func() {
		characterService = &CharacterService{
			client: anilist.NewClient(),
		}
	})
	return characterService
}

// AnimeOption 可选动漫条目（设置页下拉用）
type AnimeOption struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// CatalogCharacter 外部目录角色的扁平视图。
// 随机页路径带有动漫节点，按动漫查询路径只带角色字段。
type CatalogCharacter struct {
	ExternalID      int    `json:"id"`
	Name            string `json:"name"`
	Image           string `json:"image"`
	Age             string `json:"age"`
	Gender          string `json:"gender"`
	AnimeExternalID int    `json:"anime_external_id"`
	Anime           string `json:"anime"`
	ReleaseDate     string `json:"release_date"`
}

func listCacheKey(prefix string, genders, animeTitles []string) string {
	return fmt.Sprintf("%s:g=%s|a=%s", prefix, strings.Join(genders, ","), strings.Join(animeTitles, ","))
}

// queryCharacters 数据库路径的内层查询：过滤 + 关联预加载。
// 结果经请求级 memo 去重，同一次渲染中相同参数只查一次。
func (s *CharacterService) queryCharacters(memo *utils.Memo, genders, animeTitles []string) ([]models.Character, error) {
	memoKey := listCacheKey("query:characters", genders, animeTitles)
	if v, ok := memo.Get(memoKey); ok {
		return v.([]models.Character), nil
	}

	query := db.DB.Preload("Anime").Preload("Images")
	if len(genders) > 0 {
		query = query.Where("gender IN ?", genders)
	}
	if len(animeTitles) > 0 {
		query = query.Where("anime_id IN (?)",
			db.DB.Model(&models.Anime{}).Select("id").Where("title IN ?", animeTitles))
	}

	var characters []models.Character
	if err := query.Find(&characters).Error; err != nil {
		// 数据库错误原样上抛：这是基础设施故障，不是"没有数据"
		return nil, err
	}

	memo.Set(memoKey, characters)
	return characters, nil
}

// ListCharacters 按给定过滤条件返回随机排列的角色序列。
// genders/animeTitles 为合取过滤，limit <= 0 表示不限量。
func (s *CharacterService) ListCharacters(memo *utils.Memo, genders, animeTitles []string, limit int) ([]models.Character, error) {
	cacheKey := fmt.Sprintf("%s|l=%d", listCacheKey("characters:list", genders, animeTitles), limit)
	if cached := utils.GetCache().Get(cacheKey); cached != nil {
		return cached.([]models.Character), nil
	}

	characters, err := s.queryCharacters(memo, genders, animeTitles)
	if err != nil {
		return nil, err
	}

	shuffled := utils.Shuffle(characters)
	if limit > 0 && limit < len(shuffled) {
		shuffled = shuffled[:limit]
	}

	utils.GetCache().Set(cacheKey, shuffled, cacheListings)
	return shuffled, nil
}

// AvailableAnimes 返回已入库的动漫列表（按标题排序）
func (s *CharacterService) AvailableAnimes() ([]AnimeOption, error) {
	cacheKey := "animes:available"
	if cached := utils.GetCache().Get(cacheKey); cached != nil {
		return cached.([]AnimeOption), nil
	}

	var animes []models.Anime
	if err := db.DB.Order("title ASC").Find(&animes).Error; err != nil {
		return nil, err
	}

	options := make([]AnimeOption, 0, len(animes))
	for _, a := range animes {
		options = append(options, AnimeOption{ID: a.ID.String(), Title: a.Title})
	}

	utils.GetCache().Set(cacheKey, options, cacheOptions)
	return options, nil
}

// AvailableGenders 返回去重排序后的性别列表，可限定在指定动漫内
func (s *CharacterService) AvailableGenders(memo *utils.Memo, animeTitles []string) ([]string, error) {
	cacheKey := listCacheKey("genders:available", nil, animeTitles)
	if cached := utils.GetCache().Get(cacheKey); cached != nil {
		return cached.([]string), nil
	}
	if v, ok := memo.Get(cacheKey); ok {
		return v.([]string), nil
	}

	query := db.DB.Model(&models.Character{}).Distinct("gender").Where("gender <> ''")
	if len(animeTitles) > 0 {
		query = query.Where("anime_id IN (?)",
			db.DB.Model(&models.Anime{}).Select("id").Where("title IN ?", animeTitles))
	}

	var genders []string
	if err := query.Order("gender ASC").Pluck("gender", &genders).Error; err != nil {
		return nil, err
	}

	memo.Set(cacheKey, genders)
	utils.GetCache().Set(cacheKey, genders, cacheOptions)
	return genders, nil
}

// CountCharacters 返回过滤条件下的角色数量（设置页预览用）
func (s *CharacterService) CountCharacters(memo *utils.Memo, genders, animeTitles []string) (int64, error) {
	cacheKey := listCacheKey("characters:count", genders, animeTitles)
	if cached := utils.GetCache().Get(cacheKey); cached != nil {
		return cached.(int64), nil
	}
	if v, ok := memo.Get(cacheKey); ok {
		return v.(int64), nil
	}

	query := db.DB.Model(&models.Character{})
	if len(genders) > 0 {
		query = query.Where("gender IN ?", genders)
	}
	if len(animeTitles) > 0 {
		query = query.Where("anime_id IN (?)",
			db.DB.Model(&models.Anime{}).Select("id").Where("title IN ?", animeTitles))
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}

	memo.Set(cacheKey, count)
	utils.GetCache().Set(cacheKey, count, cacheListings)
	return count, nil
}

// catalogPool 取一批目录角色：给定动漫取其角色页，否则抽随机热门页。
// 目录故障降级为空池（记日志），不向调用方抛错。
func (s *CharacterService) catalogPool(ctx context.Context, animeID int) []anilist.Character {
	if animeID > 0 {
		cacheKey := fmt.Sprintf("anilist:anime-chars:%d", animeID)
		if cached := utils.GetCache().Get(cacheKey); cached != nil {
			return cached.([]anilist.Character)
		}
		characters, _, err := s.client.CharactersByAnime(ctx, animeID, 1)
		if err != nil {
			log.Printf("目录请求失败，按无角色处理: %v", err)
			return nil
		}
		utils.GetCache().Set(cacheKey, characters, cacheListings)
		return characters
	}

	// 只在收藏数最高的前 N 页里抽，抽中的页按页号缓存
	page := rand.Intn(anilist.MaxRandomPages) + 1
	cacheKey := fmt.Sprintf("anilist:page:%d", page)
	if cached := utils.GetCache().Get(cacheKey); cached != nil {
		return cached.([]anilist.Character)
	}
	characters, err := s.client.CharacterPage(ctx, page)
	if err != nil {
		log.Printf("目录请求失败，按无角色处理: %v", err)
		return nil
	}
	utils.GetCache().Set(cacheKey, characters, cacheListings)
	return characters
}

// RandomCatalogCharacter 目录路径的单角色抽取：
// 取候选池，客户端侧按性别过滤，再均匀抽一个。
// 空池返回 nil（"没有角色"是正常结果，不是错误）。
func (s *CharacterService) RandomCatalogCharacter(ctx context.Context, animeID int, gender string) *CatalogCharacter {
	pool := s.catalogPool(ctx, animeID)

	if gender != "" {
		target := strings.ToLower(gender)
		filtered := pool[:0:0]
		for _, ch := range pool {
			// AniList 的 gender 是自由文本，通常是 "Male"/"Female"
			if strings.ToLower(ch.Gender) == target {
				filtered = append(filtered, ch)
			}
		}
		pool = filtered
	}

	char, ok := utils.PickRandom(pool)
	if !ok {
		return nil
	}

	result := &CatalogCharacter{
		ExternalID:      char.ID,
		Name:            char.DisplayName(),
		Image:           char.Image.Large,
		Age:             char.Age,
		Gender:          char.Gender,
		AnimeExternalID: animeID,
		Anime:           "Unknown Anime",
		ReleaseDate:     "Unknown",
	}
	if result.Image == "" {
		result.Image = char.Image.Medium
	}
	if result.Age == "" {
		result.Age = "Unknown"
	}
	if result.Gender == "" {
		result.Gender = "Unknown"
	}

	// 随机页路径带动漫节点，按动漫查询路径没有
	if len(char.Media.Nodes) > 0 {
		media := char.Media.Nodes[0]
		result.AnimeExternalID = media.ID
		result.Anime = media.DisplayTitle()
		result.ReleaseDate = media.ReleaseYear()
	}

	return result
}

// SearchCatalogAnime 目录动漫搜索，结果缓存一小时
func (s *CharacterService) SearchCatalogAnime(ctx context.Context, query string) ([]anilist.Media, error) {
	cacheKey := "anilist:search:" + query
	if cached := utils.GetCache().Get(cacheKey); cached != nil {
		return cached.([]anilist.Media), nil
	}

	results, err := s.client.SearchAnime(ctx, query)
	if err != nil {
		return nil, err
	}

	utils.GetCache().Set(cacheKey, results, cacheListings)
	return results, nil
}

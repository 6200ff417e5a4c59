package anilist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"
)

const defaultAPIURL = "https://graphql.anilist.co"

// MaxRandomPages 随机抽页的上限：只在收藏数最高的前 50 页里抽，
// 保证抽到的大多是知名角色。
const MaxRandomPages = 50

// PerPage AniList 单页角色数
const PerPage = 50

// Client AniList GraphQL 客户端。所有松散类型的外部 JSON
// 都在这个包内解码成显式结构体，不向上层泄漏。
type Client struct {
	httpClient *http.Client
	apiURL     string
}

// NewClient 创建客户端，设置有界超时
func NewClient() *Client {
	apiURL := os.Getenv("ANILIST_API_URL")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second, // 超时与 HTTP 错误同样按"无结果"降级处理
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				MaxIdleConnsPerHost: 2,
			},
		},
		apiURL: apiURL,
	}
}

// --- Queries ---

const charactersQuery = `
query ($page: Int, $perPage: Int) {
  Page(page: $page, perPage: $perPage) {
    characters(sort: FAVOURITES_DESC) {
      id
      name { full native }
      image { large medium }
      age
      gender
      media(sort: POPULARITY_DESC, type: ANIME, perPage: 1) {
        nodes {
          id
          title { romaji english }
          startDate { year month day }
        }
      }
    }
  }
}
`

const animeSearchQuery = `
query ($search: String, $perPage: Int) {
  Page(page: 1, perPage: $perPage) {
    media(search: $search, type: ANIME, sort: POPULARITY_DESC) {
      id
      title { romaji english }
      coverImage { medium }
      startDate { year }
    }
  }
}
`

const bestMatchQuery = `
query ($search: String) {
  Media(search: $search, type: ANIME, sort: SEARCH_MATCH) {
    id
    title { romaji english }
    startDate { year }
  }
}
`

const animeCharactersQuery = `
query ($id: Int, $page: Int, $perPage: Int) {
  Media(id: $id) {
    characters(page: $page, perPage: $perPage, sort: ROLE) {
      pageInfo { hasNextPage }
      nodes {
        id
        name { full native }
        image { large medium }
        age
        gender
      }
    }
  }
}
`

// --- Typed response shapes ---

type CharacterName struct {
	Full   string `json:"full"`
	Native string `json:"native"`
}

type CharacterImage struct {
	Large  string `json:"large"`
	Medium string `json:"medium"`
}

type MediaTitle struct {
	Romaji  string `json:"romaji"`
	English string `json:"english"`
}

type FuzzyDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

type CoverImage struct {
	Medium string `json:"medium"`
}

type Media struct {
	ID         int        `json:"id"`
	Title      MediaTitle `json:"title"`
	CoverImage CoverImage `json:"coverImage"`
	StartDate  FuzzyDate  `json:"startDate"`
}

type Character struct {
	ID     int            `json:"id"`
	Name   CharacterName  `json:"name"`
	Image  CharacterImage `json:"image"`
	Age    string         `json:"age"`
	Gender string         `json:"gender"`
	Media  struct {
		Nodes []Media `json:"nodes"`
	} `json:"media"`
}

type PageInfo struct {
	HasNextPage bool `json:"hasNextPage"`
}

// DisplayName 优先英文全名，缺失时用原文名
func (c Character) DisplayName() string {
	if c.Name.Full != "" {
		return c.Name.Full
	}
	return c.Name.Native
}

// DisplayTitle 优先英文标题，缺失时用罗马字
func (m Media) DisplayTitle() string {
	if m.Title.English != "" {
		return m.Title.English
	}
	return m.Title.Romaji
}

// ReleaseYear 返回发行年份文本，未知时返回 "Unknown"
func (m Media) ReleaseYear() string {
	if m.StartDate.Year > 0 {
		return fmt.Sprintf("%d", m.StartDate.Year)
	}
	return "Unknown"
}

// graphQLError AniList 错误条目
type graphQLError struct {
	Message string `json:"message"`
}

// post 发送 GraphQL 请求并把 data 字段解码进 out
func (c *Client) post(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	payload, err := json.Marshal(map[string]interface{}{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("anilist: unexpected status %d", resp.StatusCode)
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphQLError  `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("anilist: decode response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("anilist: %s", envelope.Errors[0].Message)
	}
	if envelope.Data == nil {
		return fmt.Errorf("anilist: empty data")
	}

	return json.Unmarshal(envelope.Data, out)
}

// CharacterPage 获取指定页的热门角色
func (c *Client) CharacterPage(ctx context.Context, page int) ([]Character, error) {
	var data struct {
		Page struct {
			Characters []Character `json:"characters"`
		} `json:"Page"`
	}
	err := c.post(ctx, charactersQuery, map[string]interface{}{
		"page":    page,
		"perPage": PerPage,
	}, &data)
	if err != nil {
		return nil, err
	}
	return data.Page.Characters, nil
}

// SearchAnime 按热度搜索动漫，最多返回 10 条
func (c *Client) SearchAnime(ctx context.Context, query string) ([]Media, error) {
	var data struct {
		Page struct {
			Media []Media `json:"media"`
		} `json:"Page"`
	}
	err := c.post(ctx, animeSearchQuery, map[string]interface{}{
		"search":  query,
		"perPage": 10,
	}, &data)
	if err != nil {
		return nil, err
	}
	return data.Page.Media, nil
}

// BestAnimeMatch 返回与名称文本匹配度最高的一部动漫（Seeder 用）
func (c *Client) BestAnimeMatch(ctx context.Context, name string) (*Media, error) {
	var data struct {
		Media *Media `json:"Media"`
	}
	err := c.post(ctx, bestMatchQuery, map[string]interface{}{
		"search": name,
	}, &data)
	if err != nil {
		return nil, err
	}
	if data.Media == nil {
		return nil, fmt.Errorf("anilist: no match for %q", name)
	}
	return data.Media, nil
}

// CharactersByAnime 分页获取某部动漫的角色（按戏份排序）
func (c *Client) CharactersByAnime(ctx context.Context, animeID, page int) ([]Character, PageInfo, error) {
	var data struct {
		Media struct {
			Characters struct {
				PageInfo PageInfo    `json:"pageInfo"`
				Nodes    []Character `json:"nodes"`
			} `json:"characters"`
		} `json:"Media"`
	}
	err := c.post(ctx, animeCharactersQuery, map[string]interface{}{
		"id":      animeID,
		"page":    page,
		"perPage": PerPage,
	}, &data)
	if err != nil {
		return nil, PageInfo{}, err
	}
	return data.Media.Characters.Nodes, data.Media.Characters.PageInfo, nil
}

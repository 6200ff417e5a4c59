package services

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"smashpass/internal/db"
	"smashpass/internal/models"
	"smashpass/internal/utils"
)

// setupTestDB 给每个测试一个干净的内存 sqlite 库，
// 并清空全局缓存避免跨测试串数据
func setupTestDB(t *testing.T) {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// 内存库绑定单个连接，连接池扩容会拿到空库
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Migrate(conn); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db.DB = conn
	utils.GetCache().Purge()
}

// seedAnime 插入一部动漫及其角色，返回动漫行
func seedAnime(t *testing.T, externalID int, title string, characters ...models.Character) models.Anime {
	t.Helper()

	anime := models.Anime{ExternalID: externalID, Title: title, ReleaseDate: "2010"}
	if err := db.DB.Create(&anime).Error; err != nil {
		t.Fatalf("failed to seed anime: %v", err)
	}

	for i := range characters {
		characters[i].AnimeID = anime.ID
		if err := db.DB.Create(&characters[i]).Error; err != nil {
			t.Fatalf("failed to seed character: %v", err)
		}
	}
	return anime
}

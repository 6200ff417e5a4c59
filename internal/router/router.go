package router

import (
	"smashpass/internal/handlers"
	"smashpass/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	// Handlers
	authHandler := handlers.NewAuthHandler()
	gameHandler := handlers.NewGameHandler()
	voteHandler := handlers.NewVoteHandler()
	characterHandler := handlers.NewCharacterHandler()
	animeHandler := handlers.NewAnimeHandler()

	api := r.Group("/api")
	{
		// 目录直连接口 (Catalog-backed endpoints)
		api.GET("/character", characterHandler.Random) // 随机单角色，支持 anime_id/gender 过滤
		api.GET("/anime/search", animeHandler.Search)  // 动漫搜索

		// 游戏配置与卡组 (Game config & deck)
		api.POST("/game/config", gameHandler.SaveConfig)    // 保存配置 cookie
		api.GET("/game/config", gameHandler.LoadConfig)     // 读取配置
		api.DELETE("/game/config", gameHandler.ClearConfig) // 清除配置
		api.GET("/game/options", gameHandler.Options)       // 设置页可选项
		api.GET("/game/preview", gameHandler.Preview)       // 过滤条件预览
		api.GET("/game/deck", gameHandler.Deck)             // 本局卡组

		// 投票与排名 (Votes & rankings)
		api.POST("/votes", voteHandler.Submit)     // 提交投票 (smash/pass/skip)
		api.GET("/rankings", voteHandler.Rankings) // 角色排名
		api.GET("/stats", voteHandler.Stats)       // 全站统计

		// 账号 (Auth)
		api.POST("/auth/signup", authHandler.Signup)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/logout", authHandler.Logout)

		authorized := api.Group("/")
		authorized.Use(middleware.AuthRequired())
		{
			authorized.GET("/auth/me", authHandler.Me)
		}
	}
}

package main

import (
	"context"
	"log"
	"os"
	"smashpass/internal/db"
	"smashpass/internal/services"

	"github.com/joho/godotenv"
)

// defaultAnimes 默认灌库名单。命令行参数可覆盖：
//
//	go run ./cmd/seeder "Naruto" "One Piece"
var defaultAnimes = []string{
	"Naruto",
	"One Piece",
	"Bleach",
	"Attack on Titan",
	"Fullmetal Alchemist Brotherhood",
	"Death Note",
	"Demon Slayer Kimetsu no Yaiba",
	"Jujutsu Kaisen",
	"My Hero Academia",
	"Hunter x Hunter 2011",
	"Steins Gate",
	"Code Geass",
	"Neon Genesis Evangelion",
	"Cowboy Bebop",
	"One Punch Man",
	"Spy x Family",
	"Chainsaw Man",
	"Frieren Beyond Journey's End",
	"Dragon Ball Z",
	"JoJo's Bizarre Adventure",
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	db.Init()

	animes := defaultAnimes
	if len(os.Args) > 1 {
		animes = os.Args[1:]
	}

	seeder := services.NewSeeder()
	if err := seeder.Run(context.Background(), animes); err != nil {
		log.Fatalf("灌库失败: %v", err)
	}
}

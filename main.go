package main

import (
	"database/sql"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Ostapenko-Vasilii/TgBot-fork/internal/config"
	"github.com/Ostapenko-Vasilii/TgBot-fork/internal/handlers"
	"github.com/Ostapenko-Vasilii/TgBot-fork/internal/repository"
	"github.com/Ostapenko-Vasilii/TgBot-fork/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Configuration error: %v", err)
	}

	// Connect to database
	db, err := sql.Open("sqlite3", cfg.DatabasePath)
	if err != nil {
		log.Fatalf("❌ Database connection error: %v", err)
	}
	defer db.Close()

	if err = db.Ping(); err != nil {
		log.Fatalf("❌ Cannot ping database: %v", err)
	}

	// Initialize repository and service
	repo := repository.NewRepository(db)
	if err = repo.InitSchema(); err != nil {
		log.Fatalf("❌ Schema initialization error: %v", err)
	}
	log.Println("✅ Database initialized and connection established")

	svc := service.NewService(repo, cfg.AdminIDs)

	// Initialize bot
	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		log.Fatalf("❌ Bot initialization error: %v", err)
	}

	bot.Debug = false
	log.Printf("✅ Bot authorized as @%s", bot.Self.UserName)

	// Initialize handler
	handler := handlers.NewBotHandler(bot, svc)

	// Start receiving updates
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.AllowedUpdates = []string{"message", "callback_query"}

	updates := bot.GetUpdatesChan(u)

	log.Println("🚀 Bot is running...")

	// Handle updates
	for update := range updates {
		handler.HandleUpdate(update)
	}
}

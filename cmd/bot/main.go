package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/yourusername/plastic-advisor-bot/config"
	"github.com/yourusername/plastic-advisor-bot/internal/cache"
	"github.com/yourusername/plastic-advisor-bot/internal/delivery/telegram"
	"github.com/yourusername/plastic-advisor-bot/internal/domain/entity"
	"github.com/yourusername/plastic-advisor-bot/internal/infrastructure/gemini"
	"github.com/yourusername/plastic-advisor-bot/internal/infrastructure/storage"
	"github.com/yourusername/plastic-advisor-bot/internal/usage"
	"github.com/yourusername/plastic-advisor-bot/internal/usecase"
	"github.com/yourusername/plastic-advisor-bot/pkg/logger"
)

func main() {
	// Logger ni ishga tushirish
	logger.Init()
	logger.InfoLogger.Println("🚀 Ilova ishga tushmoqda...")

	// Konfiguratsiyani yuklash
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Konfiguratsiya yuklanmadi: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Dependencies ni yaratish (Dependency Injection)

	// 1. Token usage tracker
	usageTracker := usage.NewTracker()

	// 2. Gemini AI client
	aiRepo, err := gemini.NewGeminiClient(cfg.GeminiAPIKey, usageTracker)
	if err != nil {
		log.Fatalf("❌ Gemini client yaratilmadi: %v", err)
	}
	logger.InfoLogger.Println("✅ Gemini AI client tayyor")

	// 3. Katalog: XLSX fayl > Postgres > built-in default
	products := loadCatalog(ctx, cfg)
	productRepo := storage.NewMemoryProductRepository(products)
	logger.InfoLogger.Printf("✅ Katalog tayyor: %d mahsulot", len(products))

	// 4. Dialog store (Postgres yoki memory fallback)
	dialogStore := storage.NewDialogStoreFromEnv()

	// 5. Suhbat keshi: eviction paytida tarix dialog store ga yoziladi
	conversations := cache.NewConversationCache(cfg.ConversationCacheSize, cfg.ConversationTTL, dialogStore)
	go conversations.Sweep(ctx)

	responses := cache.NewResponseCache(0, 0)

	// 6. Use case
	chatUseCase := usecase.NewChatUseCase(aiRepo, productRepo, conversations, responses)
	logger.InfoLogger.Println("✅ Use case tayyor")

	// 7. Telegram bot handler
	botHandler, err := telegram.NewBotHandler(
		cfg.TelegramToken,
		chatUseCase,
		dialogStore,
		productRepo,
		usageTracker,
		cfg.AdminPassword,
		cfg.CatalogXLSX,
	)
	if err != nil {
		log.Fatalf("❌ Bot handler yaratilmadi: %v", err)
	}
	logger.InfoLogger.Printf("✅ Telegram bot tayyor: @%s", botHandler.GetBotUsername())

	// Botni alohida goroutine da ishga tushirish
	go func() {
		if err := botHandler.Start(ctx); err != nil && ctx.Err() == nil {
			logger.ErrorLogger.Printf("❌ Bot xatosi: %v", err)
		}
	}()

	logger.InfoLogger.Println("🤖 Bot ishlayapti. To'xtatish uchun Ctrl+C ni bosing.")

	// Signal kutish
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.InfoLogger.Println("⏳ To'xtatilmoqda: suhbat tarixi saqlanmoqda...")
	cancel()

	// Keshdagi barcha suhbatlarni bazaga yozib chiqamiz
	conversations.Close()
	logger.InfoLogger.Println("👋 Ilova to'xtadi")
}

// loadCatalog katalog manbasini tanlaydi: XLSX fayl, Postgres, yoki
// built-in default to'plam
func loadCatalog(ctx context.Context, cfg *config.Config) []entity.Product {
	if cfg.CatalogXLSX != "" {
		products, err := storage.LoadCatalogXLSX(cfg.CatalogXLSX)
		if err == nil {
			return products
		}
		log.Printf("⚠️ XLSX katalog yuklanmadi (%s): %v", cfg.CatalogXLSX, err)
	}

	if cfg.PostgresDSN != "" {
		products, err := storage.LoadCatalogPostgres(ctx, cfg.PostgresDSN)
		if err == nil && len(products) > 0 {
			return products
		}
		if err != nil {
			log.Printf("⚠️ Postgres katalog yuklanmadi: %v", err)
		}
	}

	log.Printf("ℹ️ Tashqi katalog topilmadi, default katalog ishlatiladi")
	return storage.DefaultCatalog()
}

package repository

import (
	"context"

	"github.com/yourusername/plastic-advisor-bot/internal/domain/entity"
)

// AIRepository AI bilan ishlash uchun interface
type AIRepository interface {
	// RecommendMaterials foydalanuvchi vazifasi uchun material ro'yxatini
	// "[PLA, PETG, ABS]" ko'rinishida qaytaradi (1-bosqich). chatID token
	// sarfini chat bo'yicha hisoblash uchun
	RecommendMaterials(ctx context.Context, chatID int64, userMessage string) (string, error)

	// GenerateAnswer topilgan mahsulotlarga asoslangan yakuniy javob (2-bosqich)
	GenerateAnswer(ctx context.Context, chatID int64, userMessage, materials string, products []entity.Product, history []entity.DialogMessage) (string, error)
}

// DialogStore suhbat tarixini doimiy saqlash uchun interface
type DialogStore interface {
	Save(ctx context.Context, rec entity.DialogRecord) error
	ListByChat(ctx context.Context, chatID int64, limit int) ([]entity.DialogRecord, error)
	ListByUsername(ctx context.Context, username string, limit int) ([]entity.DialogRecord, error)
}

// ProductRepository mahsulot katalogi bilan ishlash uchun interface
type ProductRepository interface {
	GetProducts(ctx context.Context) ([]entity.Product, error)
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	ReplaceAll(ctx context.Context, products []entity.Product) error
}

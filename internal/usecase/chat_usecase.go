package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/plastic-advisor-bot/internal/cache"
	"github.com/yourusername/plastic-advisor-bot/internal/domain/entity"
	"github.com/yourusername/plastic-advisor-bot/internal/domain/repository"
	"github.com/yourusername/plastic-advisor-bot/internal/search"
)

// Reply pipeline natijasi. NeedsClarification true bo'lsa delivery
// qatlami Candidates dan tanlov tugmalarini ko'rsatadi.
type Reply struct {
	Text               string
	NeedsClarification bool
	Candidates         []entity.Product
	Selected           []entity.Product
}

// ChatUseCase xabarlar pipeline'i uchun business logic
type ChatUseCase interface {
	ProcessMessage(ctx context.Context, chatID int64, username, text string) (*Reply, error)
	ResolveSelection(ctx context.Context, chatID int64, token string) (*Reply, error)
	ForceSave(chatID int64)
	CacheSize() int
	ResponseCacheStats() (hits, misses int64, size int)
}

type chatUseCase struct {
	aiRepo        repository.AIRepository
	productRepo   repository.ProductRepository
	conversations *cache.ConversationCache
	responses     *cache.ResponseCache
}

// NewChatUseCase yangi ChatUseCase yaratish
func NewChatUseCase(
	aiRepo repository.AIRepository,
	productRepo repository.ProductRepository,
	conversations *cache.ConversationCache,
	responses *cache.ResponseCache,
) ChatUseCase {
	return &chatUseCase{
		aiRepo:        aiRepo,
		productRepo:   productRepo,
		conversations: conversations,
		responses:     responses,
	}
}

// ProcessMessage ikki bosqichli pipeline: avval AI dan material ro'yxati,
// keyin katalogdan mahsulot tanlash, kerak bo'lsa aniqlashtirish,
// oxirida mahsulotlarga asoslangan yakuniy javob.
//
// Eslatma: kontekst o'qish -> AI chaqiruvi -> kontekst yozish oralig'ida
// xuddi shu chat uchun ikkinchi xabar kelsa lost update bo'lishi mumkin.
// Telegram bitta chatdan xabarlarni amalda ketma-ket yetkazgani uchun
// bu ma'lum va qabul qilingan race.
func (u *chatUseCase) ProcessMessage(ctx context.Context, chatID int64, username, text string) (*Reply, error) {
	chatCtx := u.conversations.GetOrCreate(chatID)
	if username != "" && chatCtx.Username == "" {
		chatCtx.Username = username
		u.conversations.Update(chatID, chatCtx)
	}

	u.conversations.AppendMessage(chatID, entity.DialogMessage{
		Role:    entity.RoleUser,
		Content: text,
	})

	// Katalog yo'q bo'lsa pipeline ishlamaydi - bu hard failure
	products, err := u.productRepo.GetProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}

	// 1-bosqich: material tavsiyasi. Past temperatura bilan olinadi,
	// shuning uchun bir xil so'rov uchun keshlash xavfsiz.
	aiRecommendation, err := u.recommendMaterials(ctx, chatID, text)
	if err != nil {
		return nil, fmt.Errorf("recommend materials: %w", err)
	}

	materials := search.ParseMaterialList(aiRecommendation)
	materialsString := strings.Join(materials, ", ")

	foundProducts := search.MatchByMaterials(materials, products)
	if len(foundProducts) == 0 {
		// Material bo'yicha topilmadi - erkin matn bo'yicha fallback
		log.Printf("🔍 Material bo'yicha mos kelmadi, fuzzy search (chat=%d)", chatID)
		foundProducts = search.MatchFuzzy(text, products)
	}

	if len(foundProducts) > 0 && !chatCtx.IsRelevant {
		chatCtx.IsRelevant = true
		u.conversations.Update(chatID, chatCtx)
	}

	// Bir nechta kandidat - foydalanuvchidan aniqlashtirish so'raymiz
	if len(foundProducts) > 1 {
		beginClarification(chatCtx, text, materialsString, foundProducts)
		u.conversations.Update(chatID, chatCtx)
		return &Reply{
			NeedsClarification: true,
			Candidates:         foundProducts,
		}, nil
	}

	return u.generateFinalReply(ctx, chatID, text, materialsString, foundProducts, chatCtx.History)
}

// ResolveSelection aniqlashtirish tugmasi bosilganda chaqiriladi.
// Holat har qanday branch'da tozalanadi - cancel, xato yoki
// muvaffaqiyatli tanlov bo'lsin.
func (u *chatUseCase) ResolveSelection(ctx context.Context, chatID int64, token string) (*Reply, error) {
	chatCtx := u.conversations.GetOrCreate(chatID)

	pendingMessage := chatCtx.PendingMessage
	aiRecommendation := chatCtx.AIRecommendation
	candidates := chatCtx.CandidateProducts

	completeClarification(chatCtx)
	u.conversations.Update(chatID, chatCtx)

	selected := SelectCandidates(candidates, token)
	if len(selected) == 0 {
		// Bekor qilindi yoki token notanish - bu oddiy natija, xato emas
		return &Reply{Selected: []entity.Product{}}, nil
	}

	reply, err := u.generateFinalReply(ctx, chatID, pendingMessage, aiRecommendation, selected, chatCtx.History)
	if err != nil {
		return nil, err
	}
	reply.Selected = selected
	return reply, nil
}

// ForceSave suhbat tarixini keshdan chiqarmasdan bazaga yozadi
func (u *chatUseCase) ForceSave(chatID int64) {
	u.conversations.ForceSave(chatID)
}

// CacheSize hozir keshda turgan suhbatlar soni
func (u *chatUseCase) CacheSize() int {
	return u.conversations.Size()
}

// ResponseCacheStats javob keshi statistikasi
func (u *chatUseCase) ResponseCacheStats() (hits, misses int64, size int) {
	return u.responses.Stats()
}

func (u *chatUseCase) recommendMaterials(ctx context.Context, chatID int64, text string) (string, error) {
	key := search.Normalize(text)
	if cached, ok := u.responses.Get(cache.CategorySearch, key); ok {
		return cached, nil
	}

	aiRecommendation, err := u.aiRepo.RecommendMaterials(ctx, chatID, text)
	if err != nil {
		return "", err
	}

	u.responses.Set(cache.CategorySearch, key, aiRecommendation)
	return aiRecommendation, nil
}

func (u *chatUseCase) generateFinalReply(ctx context.Context, chatID int64, userMessage, materials string, products []entity.Product, history []entity.DialogMessage) (*Reply, error) {
	answer, err := u.aiRepo.GenerateAnswer(ctx, chatID, userMessage, materials, products, history)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	fullMessage := answer + productLinks(products)

	u.conversations.AppendMessage(chatID, entity.DialogMessage{
		Role:     entity.RoleAssistant,
		Content:  fullMessage,
		Products: products,
	})

	return &Reply{Text: fullMessage}, nil
}

// productLinks javob oxiriga mahsulot havolalarini qo'shadi
func productLinks(products []entity.Product) string {
	var b strings.Builder
	for _, product := range products {
		if len(product.Links) == 0 {
			continue
		}
		if b.Len() == 0 {
			b.WriteString("\n\n🔗 Ссылки на продукты:")
		}
		fmt.Fprintf(&b, "\n• %s: %s", product.Title, product.Links[0])
	}
	return b.String()
}

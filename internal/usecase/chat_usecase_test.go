package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/yourusername/plastic-advisor-bot/internal/cache"
	"github.com/yourusername/plastic-advisor-bot/internal/domain/entity"
	"github.com/yourusername/plastic-advisor-bot/internal/search"
)

// stubAI AI chaqiruvlarini hisoblaydi va tayyor javoblar qaytaradi
type stubAI struct {
	recommendCalls int
	recommendText  string
	recommendErr   error

	answerCalls   int
	answerText    string
	answerErr     error
	lastChatID    int64
	lastMaterials string
	lastProducts  []entity.Product
}

func (s *stubAI) RecommendMaterials(_ context.Context, chatID int64, _ string) (string, error) {
	s.recommendCalls++
	s.lastChatID = chatID
	return s.recommendText, s.recommendErr
}

func (s *stubAI) GenerateAnswer(_ context.Context, chatID int64, _, materials string, products []entity.Product, _ []entity.DialogMessage) (string, error) {
	s.answerCalls++
	s.lastChatID = chatID
	s.lastMaterials = materials
	s.lastProducts = products
	return s.answerText, s.answerErr
}

// stubProducts statik katalog yoki xato
type stubProducts struct {
	products []entity.Product
	err      error
}

func (s *stubProducts) GetProducts(_ context.Context) ([]entity.Product, error) {
	return s.products, s.err
}

func (s *stubProducts) GetByID(_ context.Context, id string) (*entity.Product, error) {
	for i := range s.products {
		if s.products[i].ID == id {
			return &s.products[i], nil
		}
	}
	return nil, errors.New("product not found")
}

func (s *stubProducts) ReplaceAll(_ context.Context, products []entity.Product) error {
	s.products = products
	return nil
}

func usecaseCatalog() []entity.Product {
	products := []entity.Product{
		{ID: "pla-1", Title: "REC PLA", Material: "PLA", Links: []string{"https://rec3d.ru/pla"}},
		{ID: "petg-1", Title: "REC PET-G", Material: "PET-G", Links: []string{"https://rec3d.ru/petg"}},
	}
	for i := range products {
		products[i].SearchKeywords = search.BuildSearchKeywords(products[i].Title, products[i].Material)
	}
	return products
}

func newTestUseCase(ai *stubAI, repo *stubProducts) (ChatUseCase, *cache.ConversationCache) {
	conversations := cache.NewConversationCache(10, time.Hour, nil)
	responses := cache.NewResponseCache(time.Hour, 100)
	return NewChatUseCase(ai, repo, conversations, responses), conversations
}

func TestProcessMessageSingleMatch(t *testing.T) {
	ai := &stubAI{recommendText: "[PLA]", answerText: "PLA mos keladi"}
	u, conversations := newTestUseCase(ai, &stubProducts{products: usecaseCatalog()})

	reply, err := u.ProcessMessage(context.Background(), 1, "alice", "kerak prochnaya detal")
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}

	if reply.NeedsClarification {
		t.Errorf("bitta kandidat uchun aniqlashtirish so'raldi")
	}
	if !strings.Contains(reply.Text, "PLA mos keladi") || !strings.Contains(reply.Text, "https://rec3d.ru/pla") {
		t.Errorf("javobda matn yoki havola yo'q: %q", reply.Text)
	}
	if ai.answerCalls != 1 || len(ai.lastProducts) != 1 || ai.lastProducts[0].ID != "pla-1" {
		t.Errorf("GenerateAnswer noto'g'ri mahsulotlar bilan chaqirildi: %v", ai.lastProducts)
	}

	// Tarixda user + assistant xabarlari, kontekst relevant
	chatCtx := conversations.GetOrCreate(1)
	if len(chatCtx.History) != 2 || chatCtx.History[1].Role != entity.RoleAssistant {
		t.Errorf("tarix noto'g'ri: %+v", chatCtx.History)
	}
	if !chatCtx.IsRelevant || chatCtx.Username != "alice" {
		t.Errorf("kontekst holati: relevant=%v username=%q", chatCtx.IsRelevant, chatCtx.Username)
	}
}

func TestProcessMessageMultiMatchAsksClarification(t *testing.T) {
	ai := &stubAI{recommendText: "[PLA, PET]", answerText: "javob"}
	u, conversations := newTestUseCase(ai, &stubProducts{products: usecaseCatalog()})

	reply, err := u.ProcessMessage(context.Background(), 2, "", "universal plastik kerak")
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}

	if !reply.NeedsClarification || len(reply.Candidates) != 2 {
		t.Fatalf("aniqlashtirish kutilgan edi: %+v", reply)
	}
	if ai.answerCalls != 0 {
		t.Errorf("aniqlashtirishgacha GenerateAnswer chaqirildi")
	}

	chatCtx := conversations.GetOrCreate(2)
	if !chatCtx.WaitingForSelection || len(chatCtx.CandidateProducts) != 2 {
		t.Errorf("tanlov holati o'rnatilmadi: %+v", chatCtx)
	}
	if chatCtx.PendingMessage != "universal plastik kerak" {
		t.Errorf("PendingMessage = %q", chatCtx.PendingMessage)
	}
}

func TestResolveSelectionAll(t *testing.T) {
	ai := &stubAI{recommendText: "[PLA, PET]", answerText: "ikkalasi ham yaxshi"}
	u, conversations := newTestUseCase(ai, &stubProducts{products: usecaseCatalog()})

	if _, err := u.ProcessMessage(context.Background(), 3, "", "plastik kerak"); err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}

	reply, err := u.ResolveSelection(context.Background(), 3, SelectionAll)
	if err != nil {
		t.Fatalf("ResolveSelection: %v", err)
	}

	if len(reply.Selected) != 2 || !strings.Contains(reply.Text, "ikkalasi ham yaxshi") {
		t.Errorf("tanlov natijasi: %+v", reply)
	}
	if ai.lastMaterials != "PLA, PET" {
		t.Errorf("GenerateAnswer materiallari = %q", ai.lastMaterials)
	}

	chatCtx := conversations.GetOrCreate(3)
	if chatCtx.WaitingForSelection || chatCtx.CandidateProducts != nil {
		t.Errorf("tanlovdan keyin holat tozalanmadi: %+v", chatCtx)
	}
}

func TestResolveSelectionCancelClearsState(t *testing.T) {
	ai := &stubAI{recommendText: "[PLA, PET]", answerText: "javob"}
	u, conversations := newTestUseCase(ai, &stubProducts{products: usecaseCatalog()})

	if _, err := u.ProcessMessage(context.Background(), 4, "", "plastik kerak"); err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	answersBefore := ai.answerCalls

	reply, err := u.ResolveSelection(context.Background(), 4, SelectionCancel)
	if err != nil {
		t.Fatalf("ResolveSelection: %v", err)
	}

	if len(reply.Selected) != 0 || reply.Text != "" {
		t.Errorf("cancel uchun bo'sh natija kutilgan edi: %+v", reply)
	}
	if ai.answerCalls != answersBefore {
		t.Errorf("cancel da GenerateAnswer chaqirildi")
	}

	chatCtx := conversations.GetOrCreate(4)
	if chatCtx.WaitingForSelection || chatCtx.PendingMessage != "" {
		t.Errorf("cancel dan keyin holat qoldi: %+v", chatCtx)
	}
}

func TestResolveSelectionUnknownTokenClearsState(t *testing.T) {
	ai := &stubAI{recommendText: "[PLA, PET]", answerText: "javob"}
	u, conversations := newTestUseCase(ai, &stubProducts{products: usecaseCatalog()})

	if _, err := u.ProcessMessage(context.Background(), 5, "", "plastik kerak"); err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}

	reply, err := u.ResolveSelection(context.Background(), 5, "mavjud-emas")
	if err != nil {
		t.Fatalf("ResolveSelection: %v", err)
	}
	if len(reply.Selected) != 0 {
		t.Errorf("notanish token uchun %d ta mahsulot", len(reply.Selected))
	}
	if conversations.GetOrCreate(5).WaitingForSelection {
		t.Errorf("notanish tokendan keyin holat qoldi")
	}
}

func TestAICallsCarryChatID(t *testing.T) {
	// chatID AI qatlamigacha yetib boradi - token sarfi chat bo'yicha
	// hisoblanishi uchun
	ai := &stubAI{recommendText: "[PLA]", answerText: "javob"}
	u, _ := newTestUseCase(ai, &stubProducts{products: usecaseCatalog()})

	if _, err := u.ProcessMessage(context.Background(), 77, "", "pla kerak"); err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}

	if ai.lastChatID != 77 {
		t.Errorf("AI ga chatID = %d yetib bordi, want 77", ai.lastChatID)
	}
}

func TestUsernameFirstWins(t *testing.T) {
	ai := &stubAI{recommendText: "[PLA]", answerText: "javob"}
	u, conversations := newTestUseCase(ai, &stubProducts{products: usecaseCatalog()})

	if _, err := u.ProcessMessage(context.Background(), 6, "alice", "pla kerak"); err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	if _, err := u.ProcessMessage(context.Background(), 6, "bob", "yana pla"); err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}

	if got := conversations.GetOrCreate(6).Username; got != "alice" {
		t.Errorf("Username = %q, want alice (birinchi qiymat qoladi)", got)
	}
}

func TestRecommendationCached(t *testing.T) {
	ai := &stubAI{recommendText: "[PLA]", answerText: "javob"}
	u, _ := newTestUseCase(ai, &stubProducts{products: usecaseCatalog()})

	if _, err := u.ProcessMessage(context.Background(), 7, "", "Прочная деталь PLA"); err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}
	// Registr farqi normalizatsiyada yo'qoladi - kesh ishlashi kerak
	if _, err := u.ProcessMessage(context.Background(), 8, "", "прочная деталь pla"); err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}

	if ai.recommendCalls != 1 {
		t.Errorf("RecommendMaterials %d marta chaqirildi, want 1", ai.recommendCalls)
	}

	hits, _, _ := u.ResponseCacheStats()
	if hits != 1 {
		t.Errorf("kesh hits = %d, want 1", hits)
	}
}

func TestCatalogErrorIsHardFailure(t *testing.T) {
	ai := &stubAI{recommendText: "[PLA]"}
	u, _ := newTestUseCase(ai, &stubProducts{err: errors.New("katalog bo'sh")})

	if _, err := u.ProcessMessage(context.Background(), 9, "", "pla kerak"); err == nil {
		t.Fatalf("katalog xatosi yutilib ketdi")
	}
	if ai.recommendCalls != 0 {
		t.Errorf("katalogsiz AI chaqirildi")
	}
}

func TestRecommendErrorPropagates(t *testing.T) {
	ai := &stubAI{recommendErr: errors.New("api limit")}
	u, _ := newTestUseCase(ai, &stubProducts{products: usecaseCatalog()})

	if _, err := u.ProcessMessage(context.Background(), 10, "", "pla kerak"); err == nil {
		t.Fatalf("AI xatosi yutilib ketdi")
	}
}

func TestFuzzyFallbackWhenMaterialsMiss(t *testing.T) {
	// AI katalogda yo'q material tavsiya qildi - erkin matn bo'yicha qidiruv
	ai := &stubAI{recommendText: "[UNOBTANIUM]", answerText: "topildi"}
	u, _ := newTestUseCase(ai, &stubProducts{products: usecaseCatalog()})

	reply, err := u.ProcessMessage(context.Background(), 11, "", "пластик pla")
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}

	if reply.NeedsClarification {
		t.Fatalf("fuzzy fallback bitta mahsulot topishi kerak edi: %+v", reply)
	}
	if len(ai.lastProducts) != 1 || ai.lastProducts[0].ID != "pla-1" {
		t.Errorf("fuzzy fallback mahsulotlari: %v", ai.lastProducts)
	}
}

func TestNoMatchStillAnswers(t *testing.T) {
	// Hech narsa topilmasa ham javob generatsiya qilinadi, mahsulotsiz
	ai := &stubAI{recommendText: "[UNOBTANIUM]", answerText: "aniqroq yozing"}
	u, conversations := newTestUseCase(ai, &stubProducts{products: usecaseCatalog()})

	reply, err := u.ProcessMessage(context.Background(), 12, "", "qwertyzxcv")
	if err != nil {
		t.Fatalf("ProcessMessage: %v", err)
	}

	if reply.NeedsClarification || reply.Text != "aniqroq yozing" {
		t.Errorf("natija: %+v", reply)
	}
	if len(ai.lastProducts) != 0 {
		t.Errorf("mahsulotsiz javobda mahsulotlar: %v", ai.lastProducts)
	}
	// Mos kelmagan suhbat relevant deb belgilanmaydi
	if conversations.GetOrCreate(12).IsRelevant {
		t.Errorf("mos kelmagan suhbat relevant bo'ldi")
	}
}

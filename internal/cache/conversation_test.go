package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/yourusername/plastic-advisor-bot/internal/domain/constants"
	"github.com/yourusername/plastic-advisor-bot/internal/domain/entity"
)

// stubDialogStore saqlangan yozuvlarni chat bo'yicha hisoblaydi
type stubDialogStore struct {
	mu      sync.Mutex
	records []entity.DialogRecord
}

func (s *stubDialogStore) Save(_ context.Context, rec entity.DialogRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

func (s *stubDialogStore) ListByChat(_ context.Context, chatID int64, _ int) ([]entity.DialogRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res []entity.DialogRecord
	for _, rec := range s.records {
		if rec.ChatID == chatID {
			res = append(res, rec)
		}
	}
	return res, nil
}

func (s *stubDialogStore) ListByUsername(_ context.Context, _ string, _ int) ([]entity.DialogRecord, error) {
	return nil, nil
}

func (s *stubDialogStore) countByChat(chatID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, rec := range s.records {
		if rec.ChatID == chatID {
			n++
		}
	}
	return n
}

func (s *stubDialogStore) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

func userMsg(text string) entity.DialogMessage {
	return entity.DialogMessage{Role: entity.RoleUser, Content: text}
}

func TestGetOrCreateIdempotent(t *testing.T) {
	c := NewConversationCache(10, time.Hour, &stubDialogStore{})

	first := c.GetOrCreate(42)
	second := c.GetOrCreate(42)

	if first != second {
		t.Errorf("GetOrCreate ikki marta har xil kontekst qaytardi")
	}
	if len(first.History) != 0 || first.IsRelevant {
		t.Errorf("yangi kontekst bo'sh emas: %+v", first)
	}
	if c.Size() != 1 {
		t.Errorf("Size = %d, want 1", c.Size())
	}
}

func TestAppendMessageHistoryBound(t *testing.T) {
	c := NewConversationCache(10, time.Hour, &stubDialogStore{})
	maxLen := constants.MaxHistoryPairs * 2

	var last *entity.ChatContext
	for i := 0; i < maxLen+4; i++ {
		last = c.AppendMessage(1, userMsg(string(rune('a'+i))))
	}

	if len(last.History) != maxLen {
		t.Fatalf("history uzunligi %d, want %d", len(last.History), maxLen)
	}
	// Eng eski xabarlar tashlangan, oxirgilari tartib bilan qolgan
	for i, msg := range last.History {
		want := string(rune('a' + 4 + i))
		if msg.Content != want {
			t.Errorf("history[%d] = %q, want %q", i, msg.Content, want)
		}
	}
}

func TestCapacityEvictionPersistsHistory(t *testing.T) {
	store := &stubDialogStore{}
	c := NewConversationCache(2, time.Hour, store)

	c.AppendMessage(1, userMsg("salom"))
	c.AppendMessage(1, userMsg("menga pla kerak"))
	time.Sleep(5 * time.Millisecond)
	c.AppendMessage(2, userMsg("ikkinchi chat"))
	time.Sleep(5 * time.Millisecond)

	// Uchinchi chat - eng eski (chat 1) evict bo'ladi
	c.AppendMessage(3, userMsg("uchinchi chat"))

	if c.Size() != 2 {
		t.Errorf("Size = %d, want 2", c.Size())
	}

	// Fondagi saqlash tugashini kutamiz
	c.Close()

	if got := store.countByChat(1); got != 2 {
		t.Errorf("chat 1 uchun %d yozuv saqlangan, want 2", got)
	}
}

func TestExpiryEvictsAndPersists(t *testing.T) {
	store := &stubDialogStore{}
	c := NewConversationCache(10, 30*time.Millisecond, store)

	ctx := c.AppendMessage(7, userMsg("eski xabar"))
	ctx.IsRelevant = true

	time.Sleep(60 * time.Millisecond)

	// Muddati o'tgan - keyingi murojaat yangi bo'sh kontekst beradi
	fresh := c.GetOrCreate(7)
	if len(fresh.History) != 0 || fresh.IsRelevant {
		t.Errorf("eskirgan kontekst qayta ishlatildi: %+v", fresh)
	}

	c.Close()
	if got := store.countByChat(7); got != 1 {
		t.Errorf("chat 7 uchun %d yozuv saqlangan, want 1", got)
	}
}

func TestActivityRefreshesTTL(t *testing.T) {
	c := NewConversationCache(10, 50*time.Millisecond, &stubDialogStore{})

	ctx := c.AppendMessage(5, userMsg("birinchi"))

	// Muntazam o'qish yozuvni tirik saqlaydi
	for i := 0; i < 4; i++ {
		time.Sleep(20 * time.Millisecond)
		c.GetOrCreate(5)
	}

	if got := c.GetOrCreate(5); got != ctx {
		t.Errorf("faol suhbat evict bo'lib ketdi")
	}
}

func TestForceSaveNonDestructive(t *testing.T) {
	store := &stubDialogStore{}
	c := NewConversationCache(10, time.Hour, store)

	c.AppendMessage(9, userMsg("savol"))
	c.AppendMessage(9, entity.DialogMessage{Role: entity.RoleAssistant, Content: "javob"})
	before := c.GetOrCreate(9)

	c.ForceSave(9)

	if got := store.countByChat(9); got != 2 {
		t.Errorf("ForceSave %d yozuv saqladi, want 2", got)
	}
	if c.Size() != 1 {
		t.Errorf("ForceSave yozuvni o'chirib yubordi")
	}
	after := c.GetOrCreate(9)
	if after != before || len(after.History) != 2 {
		t.Errorf("ForceSave dan keyin kontekst o'zgardi")
	}
}

func TestForceSaveUnknownChatNoop(t *testing.T) {
	store := &stubDialogStore{}
	c := NewConversationCache(10, time.Hour, store)

	// Panic yoki xato bo'lmasligi kerak
	c.ForceSave(12345)

	if store.total() != 0 {
		t.Errorf("noma'lum chat uchun %d yozuv saqlandi", store.total())
	}
}

func TestAllEvictionsEventuallyPersist(t *testing.T) {
	// Saqlashlar orasida tartib kafolati yo'q, lekin har bir xabar
	// oxir-oqibat bazaga yetib borishi shart
	store := &stubDialogStore{}
	c := NewConversationCache(1, time.Hour, store)

	for chatID := int64(1); chatID <= 5; chatID++ {
		c.AppendMessage(chatID, userMsg("xabar"))
	}
	c.Close()

	if got := store.total(); got != 5 {
		t.Errorf("%d yozuv saqlangan, want 5", got)
	}
}

func TestCloseFlushesLiveEntries(t *testing.T) {
	store := &stubDialogStore{}
	c := NewConversationCache(10, time.Hour, store)

	c.AppendMessage(1, userMsg("a"))
	c.AppendMessage(2, userMsg("b"))
	c.Close()

	if got := store.total(); got != 2 {
		t.Errorf("Close dan keyin %d yozuv, want 2", got)
	}
	if c.Size() != 0 {
		t.Errorf("Close dan keyin Size = %d, want 0", c.Size())
	}
}

func TestSweepRemovesExpired(t *testing.T) {
	store := &stubDialogStore{}
	c := NewConversationCache(10, 20*time.Millisecond, store)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Sweep(ctx)

	c.AppendMessage(1, userMsg("eski"))

	// Sweep intervali minimal 1 minut, shuning uchun lazy expiry orqali
	// tekshiramiz: boshqa chatga murojaat eski yozuvni o'chirmaydi,
	// lekin o'z yozuviga murojaat o'chiradi
	time.Sleep(40 * time.Millisecond)
	c.GetOrCreate(2)
	if c.Size() != 2 {
		t.Errorf("Size = %d, want 2 (lazy expiry faqat o'z kalitida)", c.Size())
	}
}

func TestPersistAttachesUsername(t *testing.T) {
	store := &stubDialogStore{}
	c := NewConversationCache(10, time.Hour, store)

	ctx := c.AppendMessage(3, userMsg("salom"))
	ctx.Username = "alice"
	c.Update(3, ctx)

	c.ForceSave(3)

	recs, _ := store.ListByChat(context.Background(), 3, 0)
	if len(recs) != 1 || recs[0].Username != "alice" {
		t.Errorf("saqlangan yozuvda username yo'q: %+v", recs)
	}
}

package cache

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/plastic-advisor-bot/internal/domain/constants"
	"github.com/yourusername/plastic-advisor-bot/internal/domain/entity"
	"github.com/yourusername/plastic-advisor-bot/internal/domain/repository"
)

// convEntry kesh ichidagi yozuv. lastUsed oxirgi murojaat vaqti -
// o'qish ham faollik hisoblanadi, shuning uchun faol suhbatlar tirik qoladi.
type convEntry struct {
	ctx      *entity.ChatContext
	lastUsed time.Time
}

// ConversationCache chegaralangan (hajm + idle TTL) suhbat holati keshi.
// Hajmdan oshganda eng uzoq ishlatilmagan yozuv evict qilinadi, TTL dan
// oshgan yozuvlar sweep paytida yoki keyingi murojaatda chiqariladi.
// Evict qilingan yozuvning history xabarlari DialogStore ga fonda
// yoziladi; saqlash xatosi log qilinadi, eviction baribir tugaydi.
// Fondagi saqlashlar orasida tartib kafolati yo'q.
type ConversationCache struct {
	mu         sync.Mutex
	entries    map[int64]*convEntry
	maxEntries int
	ttl        time.Duration
	store      repository.DialogStore

	// Fonda ketayotgan saqlashlarni Close() da kutish uchun
	saves sync.WaitGroup
}

// NewConversationCache yangi suhbat keshi yaratish
func NewConversationCache(maxEntries int, ttl time.Duration, store repository.DialogStore) *ConversationCache {
	if maxEntries <= 0 {
		maxEntries = constants.ConversationCacheSize
	}
	if ttl <= 0 {
		ttl = constants.ConversationTTL
	}
	return &ConversationCache{
		entries:    make(map[int64]*convEntry),
		maxEntries: maxEntries,
		ttl:        ttl,
		store:      store,
	}
}

// GetOrCreate mavjud kontekstni qaytaradi yoki bo'shini yaratadi.
// Hech qachon xato qaytarmaydi; murojaat TTL ni yangilaydi.
func (c *ConversationCache) GetOrCreate(chatID int64) *entity.ChatContext {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.getOrCreateLocked(chatID)
}

func (c *ConversationCache) getOrCreateLocked(chatID int64) *entity.ChatContext {
	now := time.Now()

	if entry, ok := c.entries[chatID]; ok {
		if now.Sub(entry.lastUsed) <= c.ttl {
			entry.lastUsed = now
			return entry.ctx
		}
		// Muddati o'tgan yozuv - avval saqlashga jo'natamiz
		c.evictLocked(chatID, entry)
	}

	if len(c.entries) >= c.maxEntries {
		c.evictOldestLocked()
	}

	entry := &convEntry{
		ctx: &entity.ChatContext{
			History: []entity.DialogMessage{},
		},
		lastUsed: now,
	}
	c.entries[chatID] = entry
	return entry.ctx
}

// Update kontekstni to'liq almashtiradi va TTL ni yangilaydi
func (c *ConversationCache) Update(chatID int64, chatCtx *entity.ChatContext) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) >= c.maxEntries {
		if _, ok := c.entries[chatID]; !ok {
			c.evictOldestLocked()
		}
	}
	c.entries[chatID] = &convEntry{ctx: chatCtx, lastUsed: time.Now()}
}

// AppendMessage get-or-create + history ga qo'shish + FIFO truncate.
// Yangilangan kontekstni qaytaradi, ikkinchi lookup kerak emas.
func (c *ConversationCache) AppendMessage(chatID int64, msg entity.DialogMessage) *entity.ChatContext {
	c.mu.Lock()
	defer c.mu.Unlock()

	chatCtx := c.getOrCreateLocked(chatID)
	chatCtx.History = append(chatCtx.History, msg)
	maxLen := constants.MaxHistoryPairs * 2
	if len(chatCtx.History) > maxLen {
		chatCtx.History = chatCtx.History[len(chatCtx.History)-maxLen:]
	}
	return chatCtx
}

// ForceSave yozuvni keshdan chiqarmasdan tarixini DialogStore ga yozadi.
// Noma'lum chatID uchun no-op (xato emas). Saqlash sinxron bajariladi,
// admin "saqlandi" javobini olgach yozuvlar bazada bo'ladi.
func (c *ConversationCache) ForceSave(chatID int64) {
	c.mu.Lock()
	entry, ok := c.entries[chatID]
	if !ok {
		c.mu.Unlock()
		return
	}
	snapshot := snapshotContext(entry.ctx)
	c.mu.Unlock()

	c.persist(chatID, snapshot)
}

// Size hozir keshda turgan suhbatlar soni
func (c *ConversationCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Sweep muddati o'tgan yozuvlarni davriy tozalaydi; alohida goroutine
// da ishga tushiriladi
func (c *ConversationCache) Sweep(ctx context.Context) {
	interval := c.ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			expired := 0
			for chatID, entry := range c.entries {
				if now.Sub(entry.lastUsed) > c.ttl {
					c.evictLocked(chatID, entry)
					expired++
				}
			}
			c.mu.Unlock()
			if expired > 0 {
				log.Printf("🧹 %d ta eskirgan suhbat keshdan chiqarildi", expired)
			}
		}
	}
}

// Close barcha tirik suhbatlarni saqlaydi va fondagi saqlashlarni kutadi.
// Graceful shutdown paytida chaqiriladi.
func (c *ConversationCache) Close() {
	c.mu.Lock()
	snapshots := make(map[int64]entity.ChatContext, len(c.entries))
	for chatID, entry := range c.entries {
		snapshots[chatID] = snapshotContext(entry.ctx)
	}
	c.entries = make(map[int64]*convEntry)
	c.mu.Unlock()

	for chatID, snapshot := range snapshots {
		c.persist(chatID, snapshot)
	}
	c.saves.Wait()
}

// evictLocked yozuvni chiqaradi va saqlashni fonda boshlaydi.
// Yozuv saqlash natijasidan qat'i nazar darhol o'chadi.
func (c *ConversationCache) evictLocked(chatID int64, entry *convEntry) {
	snapshot := snapshotContext(entry.ctx)
	delete(c.entries, chatID)

	c.saves.Add(1)
	go func() {
		defer c.saves.Done()
		c.persist(chatID, snapshot)
	}()
}

// evictOldestLocked eng uzoq ishlatilmagan yozuvni chiqaradi
func (c *ConversationCache) evictOldestLocked() {
	var oldestID int64
	var oldestEntry *convEntry
	for chatID, entry := range c.entries {
		if oldestEntry == nil || entry.lastUsed.Before(oldestEntry.lastUsed) {
			oldestID = chatID
			oldestEntry = entry
		}
	}
	if oldestEntry != nil {
		c.evictLocked(oldestID, oldestEntry)
	}
}

// persist snapshot tarixidagi har bir xabarni alohida yozuv sifatida
// saqlaydi. Har bir xabar uchun kamida bitta urinish bo'ladi; store
// xatosi log qilinadi, qaytarilmaydi.
func (c *ConversationCache) persist(chatID int64, snapshot entity.ChatContext) {
	if c.store == nil || len(snapshot.History) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.PersistTimeout)
	defer cancel()

	for _, msg := range snapshot.History {
		rec := entity.DialogRecord{
			ID:        uuid.New().String(),
			ChatID:    chatID,
			Username:  snapshot.Username,
			Role:      msg.Role,
			Message:   msg.Content,
			Products:  msg.Products,
			CreatedAt: time.Now(),
		}
		if err := c.store.Save(ctx, rec); err != nil {
			log.Printf("❌ Dialog saqlashda xatolik (chat=%d): %v", chatID, err)
		}
	}
}

// snapshotContext kontekst nusxasini lock ostida oladi, saqlash esa
// lock tashqarisida yuradi
func snapshotContext(chatCtx *entity.ChatContext) entity.ChatContext {
	snapshot := *chatCtx
	snapshot.History = make([]entity.DialogMessage, len(chatCtx.History))
	copy(snapshot.History, chatCtx.History)
	return snapshot
}

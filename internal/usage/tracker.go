package usage

import (
	"sync"
	"time"
)

// Tracker AI token sarfini hisoblab boradi. Pipeline tomonidan
// yaratilib kerakli joylarga uzatiladi, global singleton emas.
type Tracker struct {
	mu          sync.Mutex
	totalTokens int64
	byDay       map[string]int64
	byChat      map[int64]int64
}

// Stats tracker holatining nusxasi
type Stats struct {
	TotalTokens int64
	ByDay       map[string]int64
	ByChat      map[int64]int64
}

// NewTracker yangi tracker yaratish
func NewTracker() *Tracker {
	return &Tracker{
		byDay:  make(map[string]int64),
		byChat: make(map[int64]int64),
	}
}

// Track bitta AI so'rovining token sarfini qo'shish
func (t *Tracker) Track(chatID int64, promptTokens, completionTokens int32) {
	total := int64(promptTokens) + int64(completionTokens)
	day := time.Now().Format("2006-01-02")

	t.mu.Lock()
	defer t.mu.Unlock()

	t.totalTokens += total
	t.byDay[day] += total
	if chatID != 0 {
		t.byChat[chatID] += total
	}
}

// Snapshot joriy statistikaning nusxasini qaytaradi
func (t *Tracker) Snapshot() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats := Stats{
		TotalTokens: t.totalTokens,
		ByDay:       make(map[string]int64, len(t.byDay)),
		ByChat:      make(map[int64]int64, len(t.byChat)),
	}
	for k, v := range t.byDay {
		stats.ByDay[k] = v
	}
	for k, v := range t.byChat {
		stats.ByChat[k] = v
	}
	return stats
}

// Reset statistikani nolga tushirish
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.totalTokens = 0
	t.byDay = make(map[string]int64)
	t.byChat = make(map[int64]int64)
}

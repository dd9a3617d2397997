package cache

import (
	"crypto/md5"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/yourusername/plastic-advisor-bot/internal/domain/constants"
)

// Category javob keshi turlari. To'plam yopiq va oldindan ma'lum,
// shuning uchun string kalit emas, enum ishlatiladi.
type Category int

const (
	CategoryFAQ Category = iota
	CategorySearch
	CategoryGeneral
)

func (c Category) String() string {
	switch c {
	case CategoryFAQ:
		return "faq"
	case CategorySearch:
		return "search"
	case CategoryGeneral:
		return "general"
	default:
		return "unknown"
	}
}

// cachedResponse keshdagi bitta javob
type cachedResponse struct {
	response  string
	timestamp time.Time
}

// ResponseCache savol bo'yicha tayyor javoblar keshi (TTL + max hajm)
type ResponseCache struct {
	mu      sync.Mutex
	cache   map[string]cachedResponse
	ttl     time.Duration
	maxSize int

	// Statistika
	hits   int64
	misses int64
}

// NewResponseCache yangi javob keshi yaratish
func NewResponseCache(ttl time.Duration, maxSize int) *ResponseCache {
	if ttl <= 0 {
		ttl = constants.ResponseCacheTTL
	}
	if maxSize <= 0 {
		maxSize = constants.ResponseCacheMaxSize
	}
	return &ResponseCache{
		cache:   make(map[string]cachedResponse),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get keshdan javob olish
func (rc *ResponseCache) Get(category Category, question string) (string, bool) {
	key := responseKey(category, question)

	rc.mu.Lock()
	defer rc.mu.Unlock()

	cached, exists := rc.cache[key]
	if !exists {
		rc.misses++
		return "", false
	}
	if time.Since(cached.timestamp) > rc.ttl {
		delete(rc.cache, key)
		rc.misses++
		return "", false
	}

	rc.hits++
	return cached.response, true
}

// Set javobni keshga yozish
func (rc *ResponseCache) Set(category Category, question, response string) {
	key := responseKey(category, question)

	rc.mu.Lock()
	defer rc.mu.Unlock()

	// Overwrite kesh hajmini oshirmaydi - eviction faqat yangi kalitda
	_, exists := rc.cache[key]
	if !exists && len(rc.cache) >= rc.maxSize {
		// Eng eski yozuvni chiqarish
		var oldestKey string
		var oldestTime time.Time
		first := true
		for k, v := range rc.cache {
			if first || v.timestamp.Before(oldestTime) {
				oldestKey = k
				oldestTime = v.timestamp
				first = false
			}
		}
		if oldestKey != "" {
			delete(rc.cache, oldestKey)
		}
	}

	rc.cache[key] = cachedResponse{
		response:  response,
		timestamp: time.Now(),
	}
}

// Stats kesh statistikasi
func (rc *ResponseCache) Stats() (hits, misses int64, size int) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.hits, rc.misses, len(rc.cache)
}

// Clear barcha yozuvlarni tozalash
func (rc *ResponseCache) Clear() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.cache = make(map[string]cachedResponse)
}

func responseKey(category Category, question string) string {
	hash := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(question))))
	return fmt.Sprintf("%s:%x", category, hash)
}

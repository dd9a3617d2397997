package constants

import "time"

// Chat va Context konstantalari
const (
	// MaxHistoryPairs tarixda saqlanadigan savol-javob juftliklari soni.
	// History uzunligi hech qachon 2*MaxHistoryPairs dan oshmaydi.
	MaxHistoryPairs = 3

	// ConversationCacheSize bir vaqtda xotirada turadigan max suhbatlar soni
	ConversationCacheSize = 1000

	// ConversationTTL suhbat faolsiz qolganda qancha vaqtdan keyin evict bo'lishi
	ConversationTTL = time.Hour

	// PersistTimeout eviction paytidagi saqlash so'rovi uchun timeout
	PersistTimeout = 10 * time.Second
)

// Response cache konstantalari
const (
	ResponseCacheTTL     = time.Hour
	ResponseCacheMaxSize = 100
)

// AI Model konstantalari
const (
	// GeminiModelName Gemini AI model nomi
	GeminiModelName = "gemini-2.5-flash"

	// RecommendTemperature material tavsiyasi uchun (deterministik list kerak)
	RecommendTemperature = 0.1

	// AnswerTemperature yakuniy javob uchun
	AnswerTemperature = 0.4

	// MaxRetries AI ga so'rov yuborish uchun max urinishlar
	MaxRetries = 3

	// RetryDelay har bir urinish o'rtasidagi kutish vaqti (soniya)
	RetryDelay = 10

	// MaxRecommendedMaterials AI javobidan olinadigan max materiallar soni
	MaxRecommendedMaterials = 3
)

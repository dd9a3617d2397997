package entity

import "time"

// Dialog rollari
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// DialogMessage chat tarixidagi bitta xabar
type DialogMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`

	// Products assistant javobiga bog'langan mahsulotlar (ixtiyoriy)
	Products []Product `json:"products,omitempty"`
}

// ChatContext bitta chat uchun suhbat holati
type ChatContext struct {
	History []DialogMessage

	// IsRelevant bir marta true bo'lgach qayta false qilinmaydi
	IsRelevant bool

	// Mahsulot aniqlashtirish (clarification) holati
	WaitingForSelection bool
	PendingMessage      string
	CandidateProducts   []Product
	AIRecommendation    string

	// Username birinchi bo'sh bo'lmagan qiymat bilan o'rnatiladi
	Username string
}

// DialogRecord doimiy saqlash uchun bitta yozuv
type DialogRecord struct {
	ID        string
	ChatID    int64
	Username  string
	Role      string
	Message   string
	Products  []Product
	CreatedAt time.Time
}

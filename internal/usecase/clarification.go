package usecase

import (
	"strconv"

	"github.com/yourusername/plastic-advisor-bot/internal/domain/entity"
)

// Aniqlashtirish tanlovi uchun maxsus tokenlar
const (
	SelectionAll    = "all"
	SelectionCancel = "cancel"
)

// SelectCandidates foydalanuvchi tanlovini kandidatlar ro'yxatiga
// qo'llaydi. "all" - hammasi, "cancel" yoki notanish token - bo'sh
// ro'yxat (nil emas xato emas, oddiy natija), mahsulot ID yoki 1 dan
// boshlanuvchi pozitsiya - bitta mahsulot. Hech qachon panic bo'lmaydi.
func SelectCandidates(candidates []entity.Product, token string) []entity.Product {
	if len(candidates) == 0 {
		return []entity.Product{}
	}

	switch token {
	case SelectionAll:
		out := make([]entity.Product, len(candidates))
		copy(out, candidates)
		return out
	case SelectionCancel:
		return []entity.Product{}
	}

	for _, p := range candidates {
		if p.ID == token {
			return []entity.Product{p}
		}
	}

	if idx, err := strconv.Atoi(token); err == nil && idx >= 1 && idx <= len(candidates) {
		return []entity.Product{candidates[idx-1]}
	}

	return []entity.Product{}
}

// beginClarification kandidatlarni va kutilayotgan xabarni kontekstga
// yozib, tanlov kutish holatiga o'tkazadi
func beginClarification(chatCtx *entity.ChatContext, userMessage, aiRecommendation string, candidates []entity.Product) {
	chatCtx.WaitingForSelection = true
	chatCtx.PendingMessage = userMessage
	chatCtx.CandidateProducts = candidates
	chatCtx.AIRecommendation = aiRecommendation
}

// completeClarification tanlov holatini har qanday yo'nalishda tozalaydi.
// Har bir javob branch'ida chaqirilishi shart - kontekst awaiting
// holatida qolib ketmasligi kerak.
func completeClarification(chatCtx *entity.ChatContext) {
	chatCtx.WaitingForSelection = false
	chatCtx.PendingMessage = ""
	chatCtx.CandidateProducts = nil
	chatCtx.AIRecommendation = ""
}

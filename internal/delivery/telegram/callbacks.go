package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yourusername/plastic-advisor-bot/internal/usecase"
)

const productCallbackPrefix = "product:"

// sendClarification kandidat mahsulotlar uchun inline tugmalar yuboradi
func (h *BotHandler) sendClarification(chatID int64, placeholder *tgbotapi.Message, reply *usecase.Reply) {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, product := range reply.Candidates {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(product.Title, productCallbackPrefix+product.ID),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Все продукты", productCallbackPrefix+usecase.SelectionAll),
		tgbotapi.NewInlineKeyboardButtonData("Отмена уточнения", productCallbackPrefix+usecase.SelectionCancel),
	))

	if placeholder != nil {
		h.deleteMessage(chatID, placeholder.MessageID)
	}

	msg := tgbotapi.NewMessage(chatID, "Уточните, какой именно продукт вас интересует:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := h.bot.Send(msg); err != nil {
		log.Printf("❌ Aniqlashtirish tugmalari yuborilmadi (chat=%d): %v", chatID, err)
	}
}

// handleCallback mahsulot tanlovi. Qaysi branch bo'lmasin aniqlashtirish
// holati usecase ichida tozalanadi.
func (h *BotHandler) handleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	data := callback.Data
	if !strings.HasPrefix(data, productCallbackPrefix) {
		return
	}
	token := strings.TrimPrefix(data, productCallbackPrefix)

	if callback.Message == nil {
		h.answerCallback(callback.ID, "")
		return
	}
	chatID := callback.Message.Chat.ID

	h.deleteMessage(chatID, callback.Message.MessageID)

	reqCtx, cancel := context.WithTimeout(ctx, aiRequestTimeout)
	defer cancel()

	reply, err := h.chatUseCase.ResolveSelection(reqCtx, chatID, token)
	if err != nil {
		log.Printf("❌ Tanlov qayta ishlanmadi (chat=%d): %v", chatID, err)
		h.answerCallback(callback.ID, "Ошибка обработки выбора")
		h.sendMessage(chatID, fallbackErrorText)
		return
	}

	if len(reply.Selected) == 0 {
		h.answerCallback(callback.ID, "Уточнение отменено")
		return
	}

	names := make([]string, len(reply.Selected))
	for i, p := range reply.Selected {
		names[i] = p.Title
	}
	h.answerCallback(callback.ID, fmt.Sprintf("Выбрано: %s", strings.Join(names, ", ")))
	h.editOrSend(chatID, nil, reply.Text)
}

func (h *BotHandler) answerCallback(callbackID, text string) {
	answer := tgbotapi.NewCallback(callbackID, text)
	if _, err := h.bot.Request(answer); err != nil {
		log.Printf("⚠️ Callback javobi yuborilmadi: %v", err)
	}
}

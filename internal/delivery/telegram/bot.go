package telegram

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yourusername/plastic-advisor-bot/internal/domain/repository"
	"github.com/yourusername/plastic-advisor-bot/internal/usage"
	"github.com/yourusername/plastic-advisor-bot/internal/usecase"
)

const (
	aiRequestTimeout = 45 * time.Second

	fallbackErrorText = "Извините, произошла ошибка при обработке запроса. Попробуйте ещё раз."
)

// BotHandler Telegram bot handler
type BotHandler struct {
	bot           *tgbotapi.BotAPI
	chatUseCase   usecase.ChatUseCase
	dialogStore   repository.DialogStore
	productRepo   repository.ProductRepository
	usageTracker  *usage.Tracker
	adminPassword string
	catalogPath   string

	// Admin login holati
	adminMu          sync.RWMutex
	adminAuthorized  map[int64]bool
	awaitingPassword map[int64]bool

	// Bitta chatdan parallel so'rovlarni bosish
	processingMu sync.Mutex
	processing   map[int64]bool
}

// NewBotHandler yangi bot handler yaratish
func NewBotHandler(
	token string,
	chatUseCase usecase.ChatUseCase,
	dialogStore repository.DialogStore,
	productRepo repository.ProductRepository,
	usageTracker *usage.Tracker,
	adminPassword string,
	catalogPath string,
) (*BotHandler, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &BotHandler{
		bot:              bot,
		chatUseCase:      chatUseCase,
		dialogStore:      dialogStore,
		productRepo:      productRepo,
		usageTracker:     usageTracker,
		adminPassword:    adminPassword,
		catalogPath:      catalogPath,
		adminAuthorized:  make(map[int64]bool),
		awaitingPassword: make(map[int64]bool),
		processing:       make(map[int64]bool),
	}, nil
}

// GetBotUsername bot username'ini qaytaradi
func (h *BotHandler) GetBotUsername() string {
	return h.bot.Self.UserName
}

// Start long-polling loop
func (h *BotHandler) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30

	updates := h.bot.GetUpdatesChan(u)
	log.Printf("🤖 Update loop boshlandi: @%s", h.bot.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			h.bot.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go h.handleUpdate(ctx, update)
		}
	}
}

func (h *BotHandler) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Update panicda yiqildi: %v", r)
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		h.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		h.handleCommand(ctx, update.Message)
	case update.Message != nil && update.Message.Text != "":
		h.handleText(ctx, update.Message)
	}
}

// handleText oddiy matnli xabar - asosiy pipeline
func (h *BotHandler) handleText(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	if h.consumePasswordAttempt(message) {
		return
	}

	if !h.beginProcessing(chatID) {
		h.sendMessage(chatID, "⏳ Предыдущий запрос ещё обрабатывается, подождите немного.")
		return
	}
	defer h.endProcessing(chatID)

	placeholder, err := h.sendMessageWithResp(chatID, "🔍 Анализирую задачу...")
	if err != nil {
		log.Printf("❌ Placeholder yuborilmadi (chat=%d): %v", chatID, err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, aiRequestTimeout)
	defer cancel()

	username := ""
	if message.From != nil {
		username = message.From.UserName
	}

	reply, err := h.chatUseCase.ProcessMessage(reqCtx, chatID, username, message.Text)
	if err != nil {
		log.Printf("❌ Pipeline xatosi (chat=%d): %v", chatID, err)
		h.editOrSend(chatID, placeholder, fallbackErrorText)
		return
	}

	if reply.NeedsClarification {
		h.sendClarification(chatID, placeholder, reply)
		return
	}

	h.editOrSend(chatID, placeholder, reply.Text)
}

func (h *BotHandler) beginProcessing(chatID int64) bool {
	h.processingMu.Lock()
	defer h.processingMu.Unlock()
	if h.processing[chatID] {
		return false
	}
	h.processing[chatID] = true
	return true
}

func (h *BotHandler) endProcessing(chatID int64) {
	h.processingMu.Lock()
	defer h.processingMu.Unlock()
	delete(h.processing, chatID)
}

func (h *BotHandler) sendMessage(chatID int64, text string) {
	if _, err := h.sendMessageWithResp(chatID, text); err != nil {
		log.Printf("❌ Xabar yuborilmadi (chat=%d): %v", chatID, err)
	}
}

func (h *BotHandler) sendMessageWithResp(chatID int64, text string) (*tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	sent, err := h.bot.Send(msg)
	if err != nil {
		return nil, err
	}
	return &sent, nil
}

// editOrSend placeholder xabarni tahrirlaydi, bo'lmasa yangi yuboradi.
// Telegram 4096 belgidan uzun xabarni qabul qilmaydi, bo'laklaymiz.
func (h *BotHandler) editOrSend(chatID int64, placeholder *tgbotapi.Message, text string) {
	const maxLen = 4000

	chunks := splitIntoChunks(text, maxLen)

	if len(chunks) == 1 && placeholder != nil {
		edit := tgbotapi.NewEditMessageText(chatID, placeholder.MessageID, text)
		if _, err := h.bot.Send(edit); err == nil {
			return
		}
	}

	if placeholder != nil {
		h.deleteMessage(chatID, placeholder.MessageID)
	}
	for _, part := range chunks {
		h.sendMessage(chatID, part)
	}
}

// splitIntoChunks matnni limit baytdan oshmaydigan bo'laklarga bo'ladi.
// Bo'linish rune chegarasida yuradi - kirillcha matn bayt o'rtasidan
// kesilsa Telegram xabarni rad etadi.
func splitIntoChunks(s string, limit int) []string {
	if limit <= 0 || len(s) <= limit {
		return []string{s}
	}

	var chunks []string
	var current strings.Builder
	for _, r := range s {
		if current.Len()+utf8.RuneLen(r) > limit {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

func (h *BotHandler) deleteMessage(chatID int64, messageID int) {
	del := tgbotapi.NewDeleteMessage(chatID, messageID)
	if _, err := h.bot.Request(del); err != nil {
		log.Printf("⚠️ Xabar o'chirilmadi (chat=%d msg=%d): %v", chatID, messageID, err)
	}
}

func trimCommandArgs(message *tgbotapi.Message) string {
	return strings.TrimSpace(message.CommandArguments())
}

package telegram

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yourusername/plastic-advisor-bot/internal/domain/entity"
	"github.com/yourusername/plastic-advisor-bot/internal/infrastructure/storage"
)

const startText = `Здравствуйте! Я помогу подобрать пластик для 3D-печати.

Опишите, что вы хотите напечатать, и я порекомендую подходящие материалы и конкретные продукты из каталога.

Например: "нужна деталь для улицы, стойкая к солнцу" или "гибкий чехол для телефона".`

const helpText = `Просто напишите, что собираетесь печатать - я подберу материал и продукты.

Команды:
/start - начать сначала
/help - эта справка`

func (h *BotHandler) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	switch message.Command() {
	case "start":
		h.sendMessage(chatID, startText)
	case "help":
		h.sendMessage(chatID, helpText)
	case "admin":
		h.handleAdminLogin(message)
	case "stats":
		h.requireAdmin(message, h.handleStats)
	case "savehistory":
		h.requireAdmin(message, h.handleSaveHistory)
	case "history":
		h.requireAdmin(message, func(m *tgbotapi.Message) { h.handleHistory(ctx, m) })
	case "reload":
		h.requireAdmin(message, func(m *tgbotapi.Message) { h.handleReload(ctx, m) })
	default:
		h.sendMessage(chatID, "Неизвестная команда. /help - список команд.")
	}
}

// handleAdminLogin parol so'rash yoki sessiyani tasdiqlash
func (h *BotHandler) handleAdminLogin(message *tgbotapi.Message) {
	userID := message.From.ID

	h.adminMu.Lock()
	defer h.adminMu.Unlock()

	if h.adminAuthorized[userID] {
		h.sendMessage(message.Chat.ID, "✅ Вы уже авторизованы как администратор.")
		return
	}
	h.awaitingPassword[userID] = true
	h.sendMessage(message.Chat.ID, "Введите пароль администратора:")
}

// consumePasswordAttempt agar user paroldan kutilayotgan bo'lsa matnni
// parol sifatida qabul qiladi; true - xabar iste'mol qilindi
func (h *BotHandler) consumePasswordAttempt(message *tgbotapi.Message) bool {
	if message.From == nil {
		return false
	}
	userID := message.From.ID

	h.adminMu.Lock()
	defer h.adminMu.Unlock()

	if !h.awaitingPassword[userID] {
		return false
	}
	delete(h.awaitingPassword, userID)

	if h.adminPassword != "" && message.Text == h.adminPassword {
		h.adminAuthorized[userID] = true
		h.sendMessage(message.Chat.ID, "✅ Доступ администратора открыт.")
	} else {
		h.sendMessage(message.Chat.ID, "❌ Неверный пароль.")
	}
	return true
}

func (h *BotHandler) requireAdmin(message *tgbotapi.Message, handler func(*tgbotapi.Message)) {
	if message.From == nil {
		return
	}
	h.adminMu.RLock()
	authorized := h.adminAuthorized[message.From.ID]
	h.adminMu.RUnlock()

	if !authorized {
		h.sendMessage(message.Chat.ID, "❌ Команда доступна только администраторам. /admin - вход.")
		return
	}
	handler(message)
}

// handleStats kesh va token statistikasi
func (h *BotHandler) handleStats(message *tgbotapi.Message) {
	hits, misses, respSize := h.chatUseCase.ResponseCacheStats()

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Статистика\n\nЖивых диалогов в кэше: %d\n", h.chatUseCase.CacheSize())
	fmt.Fprintf(&b, "Кэш ответов: %d записей, hits=%d, misses=%d\n", respSize, hits, misses)

	if h.usageTracker != nil {
		stats := h.usageTracker.Snapshot()
		fmt.Fprintf(&b, "\nТокены AI всего: %d\n", stats.TotalTokens)

		days := make([]string, 0, len(stats.ByDay))
		for day := range stats.ByDay {
			days = append(days, day)
		}
		sort.Strings(days)
		if len(days) > 7 {
			days = days[len(days)-7:]
		}
		for _, day := range days {
			fmt.Fprintf(&b, "  %s: %d\n", day, stats.ByDay[day])
		}

		if len(stats.ByChat) > 0 {
			type chatUsage struct {
				id     int64
				tokens int64
			}
			chats := make([]chatUsage, 0, len(stats.ByChat))
			for id, tokens := range stats.ByChat {
				chats = append(chats, chatUsage{id, tokens})
			}
			sort.Slice(chats, func(i, j int) bool { return chats[i].tokens > chats[j].tokens })
			if len(chats) > 5 {
				chats = chats[:5]
			}
			b.WriteString("\nТоп чатов по токенам:\n")
			for _, c := range chats {
				fmt.Fprintf(&b, "  %d: %d\n", c.id, c.tokens)
			}
		}
	}

	h.sendMessage(message.Chat.ID, b.String())
}

// handleSaveHistory suhbatni keshdan chiqarmasdan bazaga yozish
func (h *BotHandler) handleSaveHistory(message *tgbotapi.Message) {
	arg := trimCommandArgs(message)
	if arg == "" {
		h.sendMessage(message.Chat.ID, "❌ Укажите ID чата: /savehistory <chatID>")
		return
	}
	chatID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		h.sendMessage(message.Chat.ID, "❌ ID чата должен быть числом.")
		return
	}

	h.chatUseCase.ForceSave(chatID)
	h.sendMessage(message.Chat.ID, "✅ История диалога сохранена в БД.")
}

// handleHistory saqlangan dialog tarixini ko'rsatish
func (h *BotHandler) handleHistory(ctx context.Context, message *tgbotapi.Message) {
	arg := trimCommandArgs(message)
	if arg == "" {
		h.sendMessage(message.Chat.ID, "❌ Укажите ID чата или @username: /history <chatID|@username>")
		return
	}

	var records []entity.DialogRecord
	var err error
	if strings.HasPrefix(arg, "@") {
		records, err = h.dialogStore.ListByUsername(ctx, strings.TrimPrefix(arg, "@"), 20)
	} else {
		var chatID int64
		chatID, err = strconv.ParseInt(arg, 10, 64)
		if err == nil {
			records, err = h.dialogStore.ListByChat(ctx, chatID, 20)
		}
	}
	if err != nil {
		log.Printf("❌ Tarix o'qilmadi (%s): %v", arg, err)
		h.sendMessage(message.Chat.ID, "❌ Ошибка получения истории.")
		return
	}
	if len(records) == 0 {
		h.sendMessage(message.Chat.ID, "История не найдена.")
		return
	}

	var b strings.Builder
	for _, rec := range records {
		role := "👤"
		if rec.Role == entity.RoleAssistant {
			role = "🤖"
		}
		fmt.Fprintf(&b, "%s [%s] %s\n", role, rec.CreatedAt.Format("02.01 15:04"), rec.Message)
	}
	h.editOrSend(message.Chat.ID, nil, b.String())
}

// handleReload katalogni qayta yuklash
func (h *BotHandler) handleReload(ctx context.Context, message *tgbotapi.Message) {
	if h.catalogPath == "" {
		h.sendMessage(message.Chat.ID, "❌ Путь к файлу каталога не настроен (CATALOG_XLSX).")
		return
	}

	products, err := storage.LoadCatalogXLSX(h.catalogPath)
	if err != nil {
		log.Printf("❌ Katalog qayta yuklanmadi: %v", err)
		h.sendMessage(message.Chat.ID, fmt.Sprintf("❌ Ошибка загрузки каталога: %v", err))
		return
	}
	if err := h.productRepo.ReplaceAll(ctx, products); err != nil {
		h.sendMessage(message.Chat.ID, fmt.Sprintf("❌ Ошибка обновления каталога: %v", err))
		return
	}

	h.sendMessage(message.Chat.ID, fmt.Sprintf("✅ Каталог обновлён: %d продуктов.", len(products)))
}

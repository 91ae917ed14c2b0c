package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/domain/entity"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/pkg/errs"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/pkg/logx"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/usecase"
)

// BotAPI *tgbotapi.BotAPI ning handler ishlatadigan qismi
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// BotHandler Telegram bot handler
type BotHandler struct {
	bot          BotAPI
	gatekeeper   usecase.GatekeeperUseCase
	adminUseCase usecase.AdminUseCase
	httpClient   *http.Client
	now          func() time.Time
	wg           sync.WaitGroup
}

// NewBotHandler yangi bot handler yaratish
func NewBotHandler(
	bot BotAPI,
	gatekeeper usecase.GatekeeperUseCase,
	adminUseCase usecase.AdminUseCase,
) *BotHandler {
	return &BotHandler{
		bot:          bot,
		gatekeeper:   gatekeeper,
		adminUseCase: adminUseCase,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		now:          time.Now,
	}
}

// Start polling rejimida botni ishga tushirish. ctx tugaganda barcha
// ishlayotgan update lar tugashini kutadi.
func (h *BotHandler) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)
	logx.Info("polling started")

	for {
		select {
		case <-ctx.Done():
			logx.Info("bot to'xtatilmoqda")
			h.bot.StopReceivingUpdates()
			h.Wait()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				h.Wait()
				return nil
			}
			h.Dispatch(ctx, update)
		}
	}
}

// Dispatch update ni alohida goroutine da qayta ishlash
func (h *BotHandler) Dispatch(ctx context.Context, update tgbotapi.Update) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.HandleUpdate(ctx, update)
	}()
}

// Wait ishlayotgan update lar tugashini kutish
func (h *BotHandler) Wait() {
	h.wg.Wait()
}

// HandleUpdate bitta update ni sinxron qayta ishlash
func (h *BotHandler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			logx.Error(fmt.Errorf("panic: %v", r), "update handler panicked", "update_id", update.UpdateID)
		}
	}()

	if update.Message == nil {
		return
	}
	h.handleMessage(ctx, update.Message)
}

// handleMessage xabarni qayta ishlash
func (h *BotHandler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From == nil || message.Chat == nil || message.From.IsBot {
		return
	}
	userID := strconv.FormatInt(message.From.ID, 10)

	// Fayl yuborilgan bo'lsa
	if message.Document != nil && h.adminUseCase.IsAdmin(userID) {
		h.handleDocumentMessage(ctx, message)
		return
	}

	// Komandalarni qayta ishlash
	if message.IsCommand() && h.handleCommand(ctx, message) {
		return
	}

	if message.Text == "" {
		// Bloklangan yoki ro'yxatda yo'q foydalanuvchiga faqat rad javobi
		if res, ok := h.gatekeeper.Admit(ctx, h.inbound(message)); !ok {
			h.deliver(message, res)
			return
		}
		h.sendMessage(message.Chat.ID, msgTextOnly)
		return
	}

	h.handleTextMessage(ctx, message)
}

// handleTextMessage matnni gatekeeper orqali o'tkazish
func (h *BotHandler) handleTextMessage(ctx context.Context, message *tgbotapi.Message) {
	result := h.gatekeeper.Handle(ctx, h.inbound(message))
	h.deliver(message, result)
}

func (h *BotHandler) inbound(message *tgbotapi.Message) entity.InboundMessage {
	return entity.InboundMessage{
		UserID:    strconv.FormatInt(message.From.ID, 10),
		Username:  message.From.UserName,
		ChatID:    message.Chat.ID,
		Text:      message.Text,
		Timestamp: h.now(),
	}
}

// deliver natijani foydalanuvchiga yetkazish
func (h *BotHandler) deliver(message *tgbotapi.Message, result entity.Result) {
	logx.Debug("message handled",
		"user_id", message.From.ID,
		"outcome", result.Outcome.String(),
	)

	if result.DeleteMessage {
		h.deleteMessage(message.Chat.ID, message.MessageID)
	}
	if result.Outcome == entity.OutcomeDropped || result.Reply == "" {
		return
	}
	h.sendMessage(message.Chat.ID, result.Reply)
}

// handleDocumentMessage admin Excel yuklashi: denylist ni almashtirish
func (h *BotHandler) handleDocumentMessage(ctx context.Context, message *tgbotapi.Message) {
	userID := strconv.FormatInt(message.From.ID, 10)
	doc := message.Document

	// Fayl hajmini tekshirish (5MB)
	if doc.FileSize > maxUploadSize {
		h.sendMessage(message.Chat.ID, msgFileTooLarge)
		return
	}
	if !isXLSX(doc.FileName) {
		h.sendMessage(message.Chat.ID, msgOnlyXLSX)
		return
	}

	fileBytes, err := h.downloadFile(ctx, doc.FileID)
	if err != nil {
		logx.Error(err, "file download failed", "user_id", userID, "file_name", doc.FileName)
		h.sendMessage(message.Chat.ID, msgDownloadFailed)
		return
	}

	count, err := h.adminUseCase.ImportDenylist(ctx, userID, fileBytes)
	if err != nil {
		logx.Error(err, "denylist import failed", "user_id", userID, "file_name", doc.FileName)
		h.sendMessage(message.Chat.ID, fmt.Sprintf("❌ Ro'yxatni yangilashda xatolik: %v", err))
		return
	}

	h.sendMessage(message.Chat.ID, fmt.Sprintf("✅ Taqiqlangan so'zlar yangilandi: %d ta\n📄 Fayl: %s", count, doc.FileName))
}

// downloadFile Telegram dan faylni yuklash
func (h *BotHandler) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	fileURL, err := h.bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("file download status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxUploadSize+1))
}

// sendMessage xabar yuborish; xato TransportError sifatida loglanadi
func (h *BotHandler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		logx.Error(&errs.TransportError{ChatID: chatID, Op: "send", Err: err}, "xabar yuborilmadi")
	}
}

// sendDocument fayl yuborish
func (h *BotHandler) sendDocument(chatID int64, name string, data []byte) {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	if _, err := h.bot.Send(doc); err != nil {
		logx.Error(&errs.TransportError{ChatID: chatID, Op: "send_document", Err: err}, "fayl yuborilmadi")
	}
}

// deleteMessage qoidabuzar xabarni o'chirish (bot admin bo'lmasa muvaffaqiyatsiz bo'lishi mumkin)
func (h *BotHandler) deleteMessage(chatID int64, messageID int) {
	if _, err := h.bot.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		logx.Warn("offending message not deleted",
			"chat_id", chatID,
			"message_id", messageID,
			"error", (&errs.TransportError{ChatID: chatID, Op: "delete", Err: err}).Error(),
		)
	}
}

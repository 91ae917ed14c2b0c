package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/domain/entity"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/pkg/errs"
)

const defaultViolationsLimit = 10

// handleCommand komandalarni qayta ishlash. Noma'lum komanda bo'lsa false,
// xabar oddiy matn sifatida davom etadi.
func (h *BotHandler) handleCommand(ctx context.Context, message *tgbotapi.Message) bool {
	chatID := message.Chat.ID
	adminID := strconv.FormatInt(message.From.ID, 10)
	arg := strings.TrimSpace(message.CommandArguments())

	switch message.Command() {
	case "start":
		h.deliver(message, h.gatekeeper.Greet(ctx, h.inbound(message)))
	case "help":
		if !h.adminUseCase.IsAdmin(adminID) {
			if res, ok := h.gatekeeper.Admit(ctx, h.inbound(message)); !ok {
				h.deliver(message, res)
				return true
			}
			h.sendMessage(chatID, msgHelp)
			return true
		}
		h.sendMessage(chatID, msgHelp+"\n\n"+msgAdminHelp)
	case "ban":
		h.withTarget(chatID, arg, func(target string) {
			added, err := h.adminUseCase.Ban(ctx, adminID, target)
			if h.replyAdminError(chatID, err) {
				return
			}
			if added {
				h.sendMessage(chatID, fmt.Sprintf("⛔ %s bloklandi.", target))
			} else {
				h.sendMessage(chatID, fmt.Sprintf("%s allaqachon bloklangan.", target))
			}
		})
	case "unban":
		h.withTarget(chatID, arg, func(target string) {
			removed, err := h.adminUseCase.Unban(ctx, adminID, target)
			if h.replyAdminError(chatID, err) {
				return
			}
			if removed {
				h.sendMessage(chatID, fmt.Sprintf("✅ %s blokdan chiqarildi.", target))
			} else {
				h.sendMessage(chatID, fmt.Sprintf("%s bloklanmagan.", target))
			}
		})
	case "resetwarnings":
		h.withTarget(chatID, arg, func(target string) {
			err := h.adminUseCase.ResetWarnings(ctx, adminID, target)
			if h.replyAdminError(chatID, err) {
				return
			}
			h.sendMessage(chatID, fmt.Sprintf("✅ %s ogohlantirishlari tozalandi.", target))
		})
	case "forget":
		h.withTarget(chatID, arg, func(target string) {
			err := h.adminUseCase.Forget(ctx, adminID, target)
			if h.replyAdminError(chatID, err) {
				return
			}
			h.sendMessage(chatID, fmt.Sprintf("🗑 %s yozuvi o'chirildi.", target))
		})
	case "status":
		h.withTarget(chatID, arg, func(target string) {
			st, err := h.adminUseCase.Status(ctx, adminID, target)
			if h.replyAdminError(chatID, err) {
				return
			}
			h.sendMessage(chatID, formatStatus(target, st))
		})
	case "violations":
		limit := defaultViolationsLimit
		if arg != "" {
			n, err := strconv.Atoi(arg)
			if err != nil || n <= 0 {
				h.sendMessage(chatID, "Foydalanish: /violations [soni]")
				return true
			}
			limit = n
		}
		list, err := h.adminUseCase.RecentViolations(ctx, adminID, limit)
		if h.replyAdminError(chatID, err) {
			return true
		}
		h.sendMessage(chatID, formatViolations(list))
	case "export":
		data, err := h.adminUseCase.ExportReport(ctx, adminID)
		if h.replyAdminError(chatID, err) {
			return true
		}
		name := fmt.Sprintf("moderation_%s.xlsx", h.now().Format("20060102_150405"))
		h.sendDocument(chatID, name, data)
	default:
		return false
	}
	return true
}

// withTarget komanda argumentidan foydalanuvchi ID sini olish
func (h *BotHandler) withTarget(chatID int64, arg string, fn func(target string)) {
	fields := strings.Fields(arg)
	if len(fields) == 0 {
		h.sendMessage(chatID, msgTargetUsage)
		return
	}
	target := fields[0]
	if _, err := strconv.ParseInt(target, 10, 64); err != nil {
		h.sendMessage(chatID, msgTargetUsage)
		return
	}
	fn(target)
}

// replyAdminError xato bo'lsa javob yuboradi va true qaytaradi
func (h *BotHandler) replyAdminError(chatID int64, err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, errs.ErrUnauthorized):
		h.sendMessage(chatID, msgAdminOnly)
	case errors.Is(err, errs.ErrUserNotFound):
		h.sendMessage(chatID, "Bunday foydalanuvchi topilmadi.")
	default:
		h.sendMessage(chatID, fmt.Sprintf("❌ Xatolik: %v", err))
	}
	return true
}

func formatStatus(userID string, st entity.UserStatus) string {
	var b strings.Builder
	fmt.Fprintf(&b, "👤 %s\n", userID)
	fmt.Fprintf(&b, "Bosqich: %s\n", st.State)
	if st.Record != nil {
		name := st.Record.DisplayName()
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(&b, "Ism: %s\n", name)
		fmt.Fprintf(&b, "Ogohlantirishlar: %d\n", st.Record.Warnings)
	}
	if st.Banned {
		b.WriteString("Holat: bloklangan")
	} else {
		b.WriteString("Holat: faol")
	}
	if len(st.Recent) > 0 {
		b.WriteString("\n\nOxirgi qoidabuzarliklar:")
		for _, v := range st.Recent {
			fmt.Fprintf(&b, "\n%s  %s  %s", v.CreatedAt.Format(time.DateTime), v.Reason, truncate(v.Text, 60))
		}
	}
	return b.String()
}

func formatViolations(list []entity.Violation) string {
	if len(list) == 0 {
		return "Qoidabuzarliklar yo'q."
	}
	var b strings.Builder
	b.WriteString("🚨 Oxirgi qoidabuzarliklar:\n")
	for _, v := range list {
		mark := ""
		if v.Banned {
			mark = " ⛔"
		}
		fmt.Fprintf(&b, "\n%s  %s  %s (%d)%s\n%s\n",
			v.CreatedAt.Format(time.DateTime), v.UserID, v.Reason, v.Warnings, mark, truncate(v.Text, 80))
	}
	return b.String()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "…"
}

package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/yourusername/telegram-gatekeeper-bot/internal/domain/entity"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/domain/repository"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/pkg/errs"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/pkg/logx"
)

// RateLimiter foydalanuvchi bo'yicha tezlik cheklovi (limiter.UserRateLimiter)
type RateLimiter interface {
	Allow(userID string, now time.Time) bool
}

// GatekeeperUseCase kiruvchi xabar uchun to'liq zanjir:
// allowlist -> ban -> rate limit -> moderation -> session
type GatekeeperUseCase interface {
	Handle(ctx context.Context, msg entity.InboundMessage) entity.Result

	// Greet /start buyrug'i: xuddi shu tekshiruvlardan keyin salomlashish
	Greet(ctx context.Context, msg entity.InboundMessage) entity.Result

	// Admit faqat allowlist va ban tekshiruvi (rate limit tokeni sarflanmaydi).
	// Matnsiz xabarlar va /help shu orqali o'tadi.
	Admit(ctx context.Context, msg entity.InboundMessage) (entity.Result, bool)
}

type gatekeeperUseCase struct {
	userRepo   repository.UserRepository
	limiter    RateLimiter
	moderation ModerationUseCase
	session    SessionUseCase
	maxWarn    int
	allowed    map[string]struct{}
}

// NewGatekeeperUseCase allowedUsernames bo'sh bo'lsa hamma uchun ochiq
func NewGatekeeperUseCase(
	userRepo repository.UserRepository,
	limiter RateLimiter,
	moderation ModerationUseCase,
	session SessionUseCase,
	maxWarnings int,
	allowedUsernames []string,
) GatekeeperUseCase {
	if maxWarnings <= 0 {
		maxWarnings = DefaultMaxWarnings
	}
	allowed := make(map[string]struct{}, len(allowedUsernames))
	for _, name := range allowedUsernames {
		name = normalizeUsername(name)
		if name != "" {
			allowed[name] = struct{}{}
		}
	}
	return &gatekeeperUseCase{
		userRepo:   userRepo,
		limiter:    limiter,
		moderation: moderation,
		session:    session,
		maxWarn:    maxWarnings,
		allowed:    allowed,
	}
}

// Handle xabarni qayta ishlash. Barcha xatolar shu yerda javobga aylanadi.
func (u *gatekeeperUseCase) Handle(ctx context.Context, msg entity.InboundMessage) entity.Result {
	if res, ok := u.admit(ctx, msg); !ok {
		return res
	}

	// Yangi foydalanuvchi birinchi xabaridayoq qoidani buzsa, onboarding ham yuboriladi
	state, err := u.session.State(ctx, msg.UserID)
	if err != nil {
		return u.failure(msg.UserID, "state", err)
	}
	isNew := state == entity.StateNew

	verdict, err := u.moderation.Inspect(ctx, msg.UserID, msg.Text)
	if err != nil {
		return u.failure(msg.UserID, "inspect", err)
	}
	switch verdict.Kind {
	case entity.VerdictBanned:
		return entity.Result{Outcome: entity.OutcomeBanned, Reply: msgBanned, DeleteMessage: true}
	case entity.VerdictWarned:
		reply := msgWarned(verdict.Warnings, u.maxWarn)
		if isNew {
			reply += "\n\n" + msgOnboarding
		}
		return entity.Result{Outcome: entity.OutcomeWarned, Reply: reply, DeleteMessage: true}
	}

	result, err := u.session.Route(ctx, msg.UserID, msg.Text)
	if err != nil {
		return u.failure(msg.UserID, "route", err)
	}
	return result
}

// Greet /start
func (u *gatekeeperUseCase) Greet(ctx context.Context, msg entity.InboundMessage) entity.Result {
	if res, ok := u.admit(ctx, msg); !ok {
		return res
	}
	result, err := u.session.Greet(ctx, msg.UserID)
	if err != nil {
		return u.failure(msg.UserID, "greet", err)
	}
	return result
}

// Admit allowlist va ban; ok=false bo'lsa res javob sifatida qaytadi
func (u *gatekeeperUseCase) Admit(ctx context.Context, msg entity.InboundMessage) (entity.Result, bool) {
	if !u.isAllowed(msg.Username) {
		logx.Info("user not in allowlist", "user_id", msg.UserID, "username", msg.Username)
		return entity.Result{Outcome: entity.OutcomeNotAllowed, Reply: msgNotAllowed}, false
	}

	banned, err := u.userRepo.IsBanned(ctx, msg.UserID)
	if err != nil {
		return u.failure(msg.UserID, "ban check", err), false
	}
	if banned {
		logx.Debug("banned user rejected", "user_id", msg.UserID)
		return entity.Result{Outcome: entity.OutcomeBanned, Reply: msgBanned}, false
	}
	return entity.Result{}, true
}

// admit Admit + rate limit
func (u *gatekeeperUseCase) admit(ctx context.Context, msg entity.InboundMessage) (entity.Result, bool) {
	if res, ok := u.Admit(ctx, msg); !ok {
		return res, false
	}
	if !u.limiter.Allow(msg.UserID, msg.Timestamp) {
		logx.Debug("rate limited", "user_id", msg.UserID)
		return entity.Result{Outcome: entity.OutcomeRateLimited, Reply: msgSlowDown}, false
	}
	return entity.Result{}, true
}

func (u *gatekeeperUseCase) failure(userID, stage string, err error) entity.Result {
	logx.Error(err, "message handling failed", "user_id", userID, "stage", stage, "persistence", errs.IsPersistence(err))
	return entity.Result{Outcome: entity.OutcomeFailed, Reply: msgGenericError}
}

func (u *gatekeeperUseCase) isAllowed(username string) bool {
	if len(u.allowed) == 0 {
		return true
	}
	_, ok := u.allowed[normalizeUsername(username)]
	return ok
}

func normalizeUsername(name string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "@"))
}

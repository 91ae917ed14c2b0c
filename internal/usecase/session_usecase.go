package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yourusername/telegram-gatekeeper-bot/internal/domain/entity"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/domain/repository"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/pkg/errs"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/pkg/logx"
)

const (
	// DefaultResponderTimeout AI so'rovi uchun standart timeout
	DefaultResponderTimeout = 30 * time.Second

	maxNameLength = 64
)

// SessionUseCase foydalanuvchi bosqichlari: NEW -> AWAITING_NAME -> ACTIVE
type SessionUseCase interface {
	// Route ruxsat berilgan xabarni bosqichga qarab qayta ishlash
	Route(ctx context.Context, userID, text string) (entity.Result, error)

	// State foydalanuvchining joriy bosqichi
	State(ctx context.Context, userID string) (entity.SessionState, error)

	// Greet /start: bosqichga mos salomlashish, AI chaqirilmaydi
	Greet(ctx context.Context, userID string) (entity.Result, error)
}

// SessionOptions Session Router sozlamalari
type SessionOptions struct {
	ResponderTimeout time.Duration
	// PromptPrefix har bir promptning boshiga qo'shiladi (masalan, javob tili)
	PromptPrefix string
}

type sessionUseCase struct {
	userRepo repository.UserRepository
	aiRepo   repository.AIRepository
	opts     SessionOptions
}

// NewSessionUseCase yangi SessionUseCase yaratish
func NewSessionUseCase(userRepo repository.UserRepository, aiRepo repository.AIRepository, opts SessionOptions) SessionUseCase {
	if opts.ResponderTimeout <= 0 {
		opts.ResponderTimeout = DefaultResponderTimeout
	}
	return &sessionUseCase{
		userRepo: userRepo,
		aiRepo:   aiRepo,
		opts:     opts,
	}
}

// State joriy bosqich
func (u *sessionUseCase) State(ctx context.Context, userID string) (entity.SessionState, error) {
	rec, err := u.userRepo.Get(ctx, userID)
	if errors.Is(err, errs.ErrUserNotFound) {
		return entity.StateNew, nil
	}
	if err != nil {
		return entity.StateNew, err
	}
	return entity.StateOf(rec), nil
}

// Greet /start uchun javob
func (u *sessionUseCase) Greet(ctx context.Context, userID string) (entity.Result, error) {
	rec, err := u.userRepo.Get(ctx, userID)
	switch {
	case errors.Is(err, errs.ErrUserNotFound):
		return u.Route(ctx, userID, "")
	case err != nil:
		return entity.Result{}, err
	case !rec.HasName():
		return entity.Result{Outcome: entity.OutcomeOnboarding, Reply: msgOnboarding}, nil
	default:
		return entity.Result{Outcome: entity.OutcomeNamed, Reply: msgWelcomeBack(rec.DisplayName())}, nil
	}
}

// Route xabarni qayta ishlash
func (u *sessionUseCase) Route(ctx context.Context, userID, text string) (entity.Result, error) {
	rec, err := u.userRepo.Get(ctx, userID)
	if err != nil && !errors.Is(err, errs.ErrUserNotFound) {
		return entity.Result{}, err
	}
	if errors.Is(err, errs.ErrUserNotFound) {
		rec = nil
	}

	switch entity.StateOf(rec) {
	case entity.StateNew:
		if _, err := u.userRepo.Upsert(ctx, userID, func(*entity.UserRecord) error { return nil }); err != nil {
			return entity.Result{}, fmt.Errorf("yozuv yaratilmadi: %w", err)
		}
		return entity.Result{Outcome: entity.OutcomeOnboarding, Reply: msgOnboarding}, nil

	case entity.StateAwaitingName:
		name := cleanName(text)
		if name == "" {
			return entity.Result{Outcome: entity.OutcomeOnboarding, Reply: msgNameEmpty}, nil
		}
		if _, err := u.userRepo.Upsert(ctx, userID, func(r *entity.UserRecord) error {
			if r.HasName() {
				return nil
			}
			r.Name = &name
			return nil
		}); err != nil {
			return entity.Result{}, fmt.Errorf("ism saqlanmadi: %w", err)
		}
		return entity.Result{Outcome: entity.OutcomeNamed, Reply: msgNamed(name)}, nil

	default:
		return u.answer(ctx, userID, rec.DisplayName(), text)
	}
}

// answer AI ga yuborish va javobni qaytarish
func (u *sessionUseCase) answer(ctx context.Context, userID, name, text string) (entity.Result, error) {
	prompt := u.buildPrompt(name, text)

	response, err := u.generate(ctx, prompt)
	if err != nil {
		if ctx.Err() != nil {
			// Sessiya tugagan: javobni yetkazadigan joy yo'q
			logx.Info("responder reply dropped", "user_id", userID, "reason", ctx.Err().Error())
			return entity.Result{Outcome: entity.OutcomeDropped}, nil
		}
		logx.Error(err, "responder failed", "user_id", userID)
		return entity.Result{Outcome: entity.OutcomeFailed, Reply: responderErrorReply(err)}, nil
	}

	if strings.TrimSpace(response) == "" {
		return entity.Result{Outcome: entity.OutcomeFailed, Reply: msgEmptyAnswer}, nil
	}
	return entity.Result{Outcome: entity.OutcomeAnswered, Reply: response}, nil
}

// generate AI chaqiruvini alohida goroutine da bajaradi; natija kanal orqali keladi.
// Timeout ErrResponderTimeout ga aylanadi.
func (u *sessionUseCase) generate(ctx context.Context, prompt string) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, u.opts.ResponderTimeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := u.aiRepo.Generate(callCtx, prompt)
		done <- result{text: text, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			if _, ok := errs.AsResponderError(res.err); !ok {
				return "", errs.NewResponderError(errs.ResponderTimeout, 0, "responder deadline exceeded", res.err)
			}
		}
		return res.text, res.err
	case <-callCtx.Done():
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", errs.NewResponderError(errs.ResponderTimeout, 0,
			fmt.Sprintf("no reply within %s", u.opts.ResponderTimeout), callCtx.Err())
	}
}

func (u *sessionUseCase) buildPrompt(name, text string) string {
	var sb strings.Builder
	if prefix := strings.TrimSpace(u.opts.PromptPrefix); prefix != "" {
		sb.WriteString(prefix)
		sb.WriteString("\n")
	}
	if name != "" {
		sb.WriteString(fmt.Sprintf("Foydalanuvchi ismi: %s\n", name))
	}
	sb.WriteString("Foydalanuvchi so'rovi:\n")
	sb.WriteString(text)
	return sb.String()
}

// responderErrorReply xato turiga qarab qisqa javob; ichki xato matni chiqarilmaydi
func responderErrorReply(err error) string {
	re, ok := errs.AsResponderError(err)
	if !ok {
		return msgGenericError
	}
	switch re.Kind {
	case errs.ResponderQuota:
		return msgQuota
	case errs.ResponderTimeout:
		return msgTimeout
	}
	if re.Retryable() {
		return msgRetryLaterWithCode(re.Diagnostic())
	}
	return msgGenericErrorWithCode(re.Diagnostic())
}

func cleanName(text string) string {
	name := strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(name) > maxNameLength {
		name = string([]rune(name)[:maxNameLength])
	}
	return name
}

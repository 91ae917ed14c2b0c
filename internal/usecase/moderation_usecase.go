package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/domain/entity"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/domain/repository"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/pkg/errs"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/pkg/logx"
)

// DefaultMaxWarnings ban chegarasi
const DefaultMaxWarnings = 3

// ModerationUseCase xabarlarni qoidabuzarlikka tekshirish
type ModerationUseCase interface {
	// Inspect xabarni tekshirish; buzilish bo'lsa ogohlantirish yoki ban
	Inspect(ctx context.Context, userID, text string) (entity.Verdict, error)
}

type moderationUseCase struct {
	userRepo      repository.UserRepository
	violationRepo repository.ViolationRepository
	detectors     []Detector
	maxWarnings   int
	now           func() time.Time
}

// NewModerationUseCase yangi ModerationUseCase yaratish.
// Detectorlar tartib bilan tekshiriladi, birinchi mos kelgani sabab bo'ladi.
func NewModerationUseCase(
	userRepo repository.UserRepository,
	violationRepo repository.ViolationRepository,
	maxWarnings int,
	detectors ...Detector,
) ModerationUseCase {
	if maxWarnings <= 0 {
		maxWarnings = DefaultMaxWarnings
	}
	return &moderationUseCase{
		userRepo:      userRepo,
		violationRepo: violationRepo,
		detectors:     detectors,
		maxWarnings:   maxWarnings,
		now:           time.Now,
	}
}

// Inspect xabarni tekshirish
func (u *moderationUseCase) Inspect(ctx context.Context, userID, text string) (entity.Verdict, error) {
	banned, err := u.userRepo.IsBanned(ctx, userID)
	if err != nil {
		return entity.Verdict{}, err
	}
	if banned {
		return entity.Verdict{Kind: entity.VerdictBanned, Reason: "banlist"}, nil
	}

	// Oldingi ban yozuvi muvaffaqiyatsiz bo'lgan bo'lsa, chegaradagi foydalanuvchi shu yerda bloklanadi
	rec, err := u.userRepo.Get(ctx, userID)
	if err != nil && !errors.Is(err, errs.ErrUserNotFound) {
		return entity.Verdict{}, err
	}
	if rec != nil && rec.Warnings >= u.maxWarnings {
		if _, err := u.userRepo.Ban(ctx, userID); err != nil {
			return entity.Verdict{}, fmt.Errorf("ban saqlanmadi: %w", err)
		}
		logx.Warn("pending ban applied", "user_id", userID, "warnings", rec.Warnings)
		return entity.Verdict{Kind: entity.VerdictBanned, Warnings: rec.Warnings, Reason: "threshold"}, nil
	}

	reason, matched := u.detect(text)
	if !matched {
		return entity.Verdict{Kind: entity.VerdictClean}, nil
	}

	updated, err := u.userRepo.Upsert(ctx, userID, func(r *entity.UserRecord) error {
		r.Warnings++
		return nil
	})
	if err != nil {
		return entity.Verdict{}, fmt.Errorf("warning saqlanmadi: %w", err)
	}

	verdict := entity.Verdict{Kind: entity.VerdictWarned, Warnings: updated.Warnings, Reason: reason}
	if updated.Warnings >= u.maxWarnings {
		if _, err := u.userRepo.Ban(ctx, userID); err != nil {
			return entity.Verdict{}, fmt.Errorf("ban saqlanmadi: %w", err)
		}
		verdict.Kind = entity.VerdictBanned
		logx.Warn("user banned", "user_id", userID, "warnings", updated.Warnings, "reason", reason)
	} else {
		logx.Info("user warned", "user_id", userID, "warnings", updated.Warnings, "reason", reason)
	}

	u.record(ctx, userID, text, verdict)
	return verdict, nil
}

func (u *moderationUseCase) detect(text string) (string, bool) {
	for _, d := range u.detectors {
		if reason, ok := d.Detect(text); ok {
			return reason, true
		}
	}
	return "", false
}

// record audit logga yozish; xato log qilinadi, qayta ishlash davom etadi
func (u *moderationUseCase) record(ctx context.Context, userID, text string, verdict entity.Verdict) {
	if u.violationRepo == nil {
		return
	}
	v := entity.Violation{
		ID:        uuid.New().String(),
		UserID:    userID,
		Reason:    verdict.Reason,
		Text:      text,
		Warnings:  verdict.Warnings,
		Banned:    verdict.Kind == entity.VerdictBanned,
		CreatedAt: u.now(),
	}
	if err := u.violationRepo.Append(ctx, v); err != nil {
		logx.Error(err, "violation log append failed", "user_id", userID, "violation_id", v.ID)
	}
}

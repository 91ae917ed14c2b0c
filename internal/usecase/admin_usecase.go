package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/domain/entity"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/domain/repository"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/pkg/errs"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/pkg/logx"
)

// AdminUseCase admin bilan bog'liq business logic.
// Har bir metod avval adminID ni tekshiradi; ruxsat bo'lmasa errs.ErrUnauthorized.
type AdminUseCase interface {
	// IsAdmin admin ekanligini tekshirish
	IsAdmin(userID string) bool

	// Ban foydalanuvchini bloklash; yangi qo'shilgan bo'lsa true
	Ban(ctx context.Context, adminID, targetID string) (bool, error)

	// Unban blokdan chiqarish; olib tashlangan bo'lsa true
	Unban(ctx context.Context, adminID, targetID string) (bool, error)

	// ResetWarnings ogohlantirishlarni nolga tushirish
	ResetWarnings(ctx context.Context, adminID, targetID string) error

	// Forget foydalanuvchi yozuvini butunlay o'chirish
	Forget(ctx context.Context, adminID, targetID string) error

	// Status foydalanuvchi holati
	Status(ctx context.Context, adminID, targetID string) (entity.UserStatus, error)

	// RecentViolations oxirgi qoidabuzarliklar
	RecentViolations(ctx context.Context, adminID string, limit int) ([]entity.Violation, error)

	// ImportDenylist Excel fayldan taqiqlangan so'zlarni yuklash
	ImportDenylist(ctx context.Context, adminID string, fileData []byte) (int, error)

	// ExportReport Excel hisobot
	ExportReport(ctx context.Context, adminID string) ([]byte, error)
}

const statusViolationsLimit = 5

type adminUseCase struct {
	admins        map[string]struct{}
	userRepo      repository.UserRepository
	violationRepo repository.ViolationRepository
	parser        repository.DenylistParser
	reports       repository.ReportWriter
	denylist      *DenylistDetector
}

// NewAdminUseCase yangi AdminUseCase yaratish
func NewAdminUseCase(
	adminIDs []string,
	userRepo repository.UserRepository,
	violationRepo repository.ViolationRepository,
	parser repository.DenylistParser,
	reports repository.ReportWriter,
	denylist *DenylistDetector,
) AdminUseCase {
	admins := make(map[string]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		if id = strings.TrimSpace(id); id != "" {
			admins[id] = struct{}{}
		}
	}
	return &adminUseCase{
		admins:        admins,
		userRepo:      userRepo,
		violationRepo: violationRepo,
		parser:        parser,
		reports:       reports,
		denylist:      denylist,
	}
}

// IsAdmin admin ekanligini tekshirish
func (u *adminUseCase) IsAdmin(userID string) bool {
	_, ok := u.admins[userID]
	return ok
}

func (u *adminUseCase) authorize(adminID, action string) error {
	if !u.IsAdmin(adminID) {
		logx.Warn("unauthorized admin command", "user_id", adminID, "action", action)
		return errs.ErrUnauthorized
	}
	return nil
}

// Ban foydalanuvchini bloklash
func (u *adminUseCase) Ban(ctx context.Context, adminID, targetID string) (bool, error) {
	if err := u.authorize(adminID, "ban"); err != nil {
		return false, err
	}
	added, err := u.userRepo.Ban(ctx, targetID)
	if err != nil {
		return false, fmt.Errorf("failed to ban: %w", err)
	}
	u.logAction(adminID, "ban", targetID, fmt.Sprintf("added=%v", added))
	return added, nil
}

// Unban blokdan chiqarish
func (u *adminUseCase) Unban(ctx context.Context, adminID, targetID string) (bool, error) {
	if err := u.authorize(adminID, "unban"); err != nil {
		return false, err
	}
	removed, err := u.userRepo.Unban(ctx, targetID)
	if err != nil {
		return false, fmt.Errorf("failed to unban: %w", err)
	}
	// Chegaradagi ogohlantirishlar qolsa, keyingi xabarda yana bloklanadi
	if rec, err := u.userRepo.Get(ctx, targetID); err == nil && rec.Warnings > 0 {
		if _, err := u.userRepo.Upsert(ctx, targetID, func(r *entity.UserRecord) error {
			r.Warnings = 0
			return nil
		}); err != nil {
			return removed, fmt.Errorf("failed to reset warnings on unban: %w", err)
		}
	}
	u.logAction(adminID, "unban", targetID, fmt.Sprintf("removed=%v", removed))
	return removed, nil
}

// ResetWarnings ogohlantirishlarni tozalash
func (u *adminUseCase) ResetWarnings(ctx context.Context, adminID, targetID string) error {
	if err := u.authorize(adminID, "reset_warnings"); err != nil {
		return err
	}
	if _, err := u.userRepo.Get(ctx, targetID); err != nil {
		return err
	}
	if _, err := u.userRepo.Upsert(ctx, targetID, func(r *entity.UserRecord) error {
		r.Warnings = 0
		return nil
	}); err != nil {
		return fmt.Errorf("failed to reset warnings: %w", err)
	}
	u.logAction(adminID, "reset_warnings", targetID, "")
	return nil
}

// Forget yozuvni o'chirish. Ban ro'yxatiga tegmaydi.
func (u *adminUseCase) Forget(ctx context.Context, adminID, targetID string) error {
	if err := u.authorize(adminID, "forget"); err != nil {
		return err
	}
	if err := u.userRepo.Delete(ctx, targetID); err != nil {
		return err
	}
	u.logAction(adminID, "forget", targetID, "")
	return nil
}

// Status foydalanuvchi holati
func (u *adminUseCase) Status(ctx context.Context, adminID, targetID string) (entity.UserStatus, error) {
	if err := u.authorize(adminID, "status"); err != nil {
		return entity.UserStatus{}, err
	}
	rec, err := u.userRepo.Get(ctx, targetID)
	if err != nil && !errors.Is(err, errs.ErrUserNotFound) {
		return entity.UserStatus{}, err
	}
	banned, err := u.userRepo.IsBanned(ctx, targetID)
	if err != nil {
		return entity.UserStatus{}, err
	}
	recent, err := u.violationRepo.ByUser(ctx, targetID, statusViolationsLimit)
	if err != nil {
		return entity.UserStatus{}, err
	}
	return entity.UserStatus{Record: rec, Banned: banned, State: entity.StateOf(rec), Recent: recent}, nil
}

// RecentViolations oxirgi qoidabuzarliklar
func (u *adminUseCase) RecentViolations(ctx context.Context, adminID string, limit int) ([]entity.Violation, error) {
	if err := u.authorize(adminID, "violations"); err != nil {
		return nil, err
	}
	return u.violationRepo.Recent(ctx, limit)
}

// ImportDenylist Excel fayldan ro'yxatni almashtirish
func (u *adminUseCase) ImportDenylist(ctx context.Context, adminID string, fileData []byte) (int, error) {
	if err := u.authorize(adminID, "import_denylist"); err != nil {
		return 0, err
	}

	terms, err := u.parser.ParseTermsFromBytes(ctx, fileData)
	if err != nil {
		return 0, fmt.Errorf("failed to parse excel: %w", err)
	}
	if len(NormalizeTerms(terms)) == 0 {
		return 0, fmt.Errorf("no terms found in excel file")
	}

	count := u.denylist.Replace(terms)
	u.logAction(adminID, "import_denylist", "", fmt.Sprintf("terms=%d", count))
	return count, nil
}

// ExportReport foydalanuvchilar, ban ro'yxati va qoidabuzarliklar
func (u *adminUseCase) ExportReport(ctx context.Context, adminID string) ([]byte, error) {
	if err := u.authorize(adminID, "export"); err != nil {
		return nil, err
	}

	users, err := u.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	banned, err := u.userRepo.BannedIDs(ctx)
	if err != nil {
		return nil, err
	}
	violations, err := u.violationRepo.Recent(ctx, 0)
	if err != nil {
		return nil, err
	}

	data, err := u.reports.WriteReport(ctx, repository.ModerationReport{
		Users:      users,
		Banned:     banned,
		Violations: violations,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build report: %w", err)
	}
	u.logAction(adminID, "export", "", fmt.Sprintf("users=%d banned=%d violations=%d", len(users), len(banned), len(violations)))
	return data, nil
}

// logAction admin harakatini loglash
func (u *adminUseCase) logAction(adminID, action, targetID, details string) {
	a := entity.AdminAction{
		ID:        uuid.New().String(),
		AdminID:   adminID,
		Action:    action,
		TargetID:  targetID,
		Details:   details,
		Timestamp: time.Now(),
	}
	logx.Info("admin action",
		"action_id", a.ID,
		"admin_id", a.AdminID,
		"action", a.Action,
		"target_id", a.TargetID,
		"details", a.Details,
	)
}

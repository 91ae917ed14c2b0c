package repository

import (
	"context"

	"github.com/yourusername/telegram-gatekeeper-bot/internal/domain/entity"
)

// DenylistParser Excel fayldan taqiqlangan so'zlarni o'qish
type DenylistParser interface {
	// ParseTerms fayl yo'lidan o'qish
	ParseTerms(ctx context.Context, filePath string) ([]string, error)

	// ParseTermsFromBytes byte array dan parse qilish
	ParseTermsFromBytes(ctx context.Context, data []byte) ([]string, error)
}

// ModerationReport eksport uchun ma'lumotlar
type ModerationReport struct {
	Users      []entity.UserRecord
	Banned     []string
	Violations []entity.Violation
}

// ReportWriter hisobotni Excel formatida yozish
type ReportWriter interface {
	WriteReport(ctx context.Context, report ModerationReport) ([]byte, error)
}

package repository

import (
	"context"

	"github.com/yourusername/telegram-gatekeeper-bot/internal/domain/entity"
)

// ViolationRepository faqat qo'shiladigan audit log
type ViolationRepository interface {
	// Append qoidabuzarlikni yozish
	Append(ctx context.Context, v entity.Violation) error

	// Recent oxirgi limit ta yozuv, yangilari birinchi
	Recent(ctx context.Context, limit int) ([]entity.Violation, error)

	// ByUser foydalanuvchi bo'yicha yozuvlar, yangilari birinchi
	ByUser(ctx context.Context, userID string, limit int) ([]entity.Violation, error)
}

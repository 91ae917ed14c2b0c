package repository

import (
	"context"

	"github.com/yourusername/telegram-gatekeeper-bot/internal/domain/entity"
)

// UserRepository foydalanuvchi yozuvlari va ban ro'yxatining yagona egasi.
// Barcha o'zgarishlar shu interfeys orqali o'tadi.
type UserRepository interface {
	// Get yozuvni olish; yo'q bo'lsa errs.ErrUserNotFound
	Get(ctx context.Context, userID string) (*entity.UserRecord, error)

	// Upsert yozuvni (yoki yangi bo'sh yozuvni) o'zgartirib, diskka yozish
	Upsert(ctx context.Context, userID string, mutate func(*entity.UserRecord) error) (entity.UserRecord, error)

	// Delete yozuvni o'chirish (admin reset)
	Delete(ctx context.Context, userID string) error

	// List barcha yozuvlar, UserID bo'yicha tartiblangan
	List(ctx context.Context) ([]entity.UserRecord, error)

	// IsBanned ban ro'yxatida bormi
	IsBanned(ctx context.Context, userID string) (bool, error)

	// Ban ro'yxatga qo'shish; yangi qo'shilgan bo'lsa true
	Ban(ctx context.Context, userID string) (bool, error)

	// Unban ro'yxatdan olish; olib tashlangan bo'lsa true
	Unban(ctx context.Context, userID string) (bool, error)

	// BannedIDs ban ro'yxati, tartiblangan
	BannedIDs(ctx context.Context) ([]string, error)
}

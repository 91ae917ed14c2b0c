package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/yourusername/telegram-gatekeeper-bot/internal/domain/entity"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/domain/repository"
)

type memoryViolationRepository struct {
	mu      sync.RWMutex
	entries []entity.Violation
	maxSize int
}

// NewMemoryViolationRepository in-memory audit log; maxSize <= 0 cheklanmagan
func NewMemoryViolationRepository(maxSize int) repository.ViolationRepository {
	return &memoryViolationRepository{maxSize: maxSize}
}

// Append yozuv qo'shish
func (m *memoryViolationRepository) Append(ctx context.Context, v entity.Violation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, v)

	// Maksimal hajmni nazorat qilish
	if m.maxSize > 0 && len(m.entries) > m.maxSize {
		m.entries = m.entries[len(m.entries)-m.maxSize:]
	}
	return nil
}

// Recent oxirgi yozuvlar
func (m *memoryViolationRepository) Recent(ctx context.Context, limit int) ([]entity.Violation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return newestFirst(m.entries, limit, func(entity.Violation) bool { return true }), nil
}

// ByUser foydalanuvchi yozuvlari
func (m *memoryViolationRepository) ByUser(ctx context.Context, userID string, limit int) ([]entity.Violation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return newestFirst(m.entries, limit, func(v entity.Violation) bool { return v.UserID == userID }), nil
}

func newestFirst(entries []entity.Violation, limit int, keep func(entity.Violation) bool) []entity.Violation {
	out := []entity.Violation{}
	for _, v := range entries {
		if keep(v) {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

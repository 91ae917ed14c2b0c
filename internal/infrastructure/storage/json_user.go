package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/yourusername/telegram-gatekeeper-bot/internal/domain/entity"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/domain/repository"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/pkg/errs"
)

const (
	UsersFile   = "users.json"
	BanlistFile = "banlist.json"
)

// JSONUserStore ikki JSON fayl bilan ishlaydigan UserRepository:
// users.json  {"<id>": {"name": string|null, "warnings": int}}
// banlist.json ["<id>", ...]
//
// Har bir o'zgarish to'liq snapshot sifatida vaqtinchalik faylga yoziladi va
// rename qilinadi. Xotiradagi holat faqat yozuv muvaffaqiyatli bo'lgandan keyin yangilanadi.
type JSONUserStore struct {
	mu        sync.RWMutex
	users     map[string]entity.UserRecord
	banned    map[string]struct{}
	usersPath string
	banPath   string

	write func(path string, data []byte) error
}

// NewJSONUserStore dataDir ichidagi fayllarni o'qib store yaratish
func NewJSONUserStore(dataDir string) (*JSONUserStore, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("data dir bo'sh bo'lmasligi kerak")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("data papkasini yaratib bo'lmadi: %w", err)
	}

	s := &JSONUserStore{
		users:     make(map[string]entity.UserRecord),
		banned:    make(map[string]struct{}),
		usersPath: filepath.Join(dataDir, UsersFile),
		banPath:   filepath.Join(dataDir, BanlistFile),
		write:     writeFileAtomic,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

var _ repository.UserRepository = (*JSONUserStore)(nil)

func (s *JSONUserStore) load() error {
	var users map[string]entity.UserRecord
	if err := readJSON(s.usersPath, &users); err != nil {
		return err
	}
	for id, rec := range users {
		rec.UserID = id
		if rec.Warnings < 0 {
			rec.Warnings = 0
		}
		s.users[id] = rec
	}

	var banned []string
	if err := readJSON(s.banPath, &banned); err != nil {
		return err
	}
	for _, id := range banned {
		s.banned[id] = struct{}{}
	}
	return nil
}

// readJSON fayl yo'q bo'lsa xato emas
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &errs.PersistenceError{Op: "read", Path: path, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &errs.PersistenceError{Op: "decode", Path: path, Err: err}
	}
	return nil
}

// Get yozuvni olish
func (s *JSONUserStore) Get(ctx context.Context, userID string) (*entity.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, exists := s.users[userID]
	if !exists {
		return nil, errs.ErrUserNotFound
	}
	out := rec.Clone()
	return &out, nil
}

// Upsert yozuvni o'zgartirish va diskka yozish
func (s *JSONUserStore) Upsert(ctx context.Context, userID string, mutate func(*entity.UserRecord) error) (entity.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, exists := s.users[userID]
	if !exists {
		rec = entity.NewUserRecord(userID)
	}
	next := rec.Clone()
	if err := mutate(&next); err != nil {
		return entity.UserRecord{}, err
	}
	next.UserID = userID
	if next.Warnings < 0 {
		next.Warnings = 0
	}

	snapshot := make(map[string]entity.UserRecord, len(s.users)+1)
	for id, r := range s.users {
		snapshot[id] = r
	}
	snapshot[userID] = next

	if err := s.persistUsers(snapshot); err != nil {
		return entity.UserRecord{}, err
	}
	s.users[userID] = next
	return next.Clone(), nil
}

// Delete yozuvni o'chirish
func (s *JSONUserStore) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[userID]; !exists {
		return errs.ErrUserNotFound
	}
	snapshot := make(map[string]entity.UserRecord, len(s.users))
	for id, r := range s.users {
		if id != userID {
			snapshot[id] = r
		}
	}
	if err := s.persistUsers(snapshot); err != nil {
		return err
	}
	delete(s.users, userID)
	return nil
}

// List barcha yozuvlar
func (s *JSONUserStore) List(ctx context.Context) ([]entity.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.UserRecord, 0, len(s.users))
	for _, rec := range s.users {
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// IsBanned ban ro'yxatini tekshirish
func (s *JSONUserStore) IsBanned(ctx context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, banned := s.banned[userID]
	return banned, nil
}

// Ban ro'yxatga qo'shish
func (s *JSONUserStore) Ban(ctx context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, banned := s.banned[userID]; banned {
		return false, nil
	}
	ids := append(s.sortedBannedLocked(), userID)
	sort.Strings(ids)
	if err := s.persistBanlist(ids); err != nil {
		return false, err
	}
	s.banned[userID] = struct{}{}
	return true, nil
}

// Unban ro'yxatdan olib tashlash
func (s *JSONUserStore) Unban(ctx context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, banned := s.banned[userID]; !banned {
		return false, nil
	}
	ids := make([]string, 0, len(s.banned))
	for _, id := range s.sortedBannedLocked() {
		if id != userID {
			ids = append(ids, id)
		}
	}
	if err := s.persistBanlist(ids); err != nil {
		return false, err
	}
	delete(s.banned, userID)
	return true, nil
}

// BannedIDs tartiblangan ban ro'yxati
func (s *JSONUserStore) BannedIDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortedBannedLocked(), nil
}

func (s *JSONUserStore) sortedBannedLocked() []string {
	ids := make([]string, 0, len(s.banned))
	for id := range s.banned {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *JSONUserStore) persistUsers(users map[string]entity.UserRecord) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return &errs.PersistenceError{Op: "encode", Path: s.usersPath, Err: err}
	}
	if err := s.write(s.usersPath, data); err != nil {
		return &errs.PersistenceError{Op: "write", Path: s.usersPath, Err: err}
	}
	return nil
}

func (s *JSONUserStore) persistBanlist(ids []string) error {
	data, err := json.MarshalIndent(ids, "", "  ")
	if err != nil {
		return &errs.PersistenceError{Op: "encode", Path: s.banPath, Err: err}
	}
	if err := s.write(s.banPath, data); err != nil {
		return &errs.PersistenceError{Op: "write", Path: s.banPath, Err: err}
	}
	return nil
}

// writeFileAtomic vaqtinchalik faylga yozib, rename qilish
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp: %w", err)
	}
	return nil
}

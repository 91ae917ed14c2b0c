package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/yourusername/telegram-gatekeeper-bot/internal/domain/entity"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/domain/repository"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/infrastructure/storage"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/pkg/errs"
)

func newStore(t *testing.T) *storage.JSONUserStore {
	t.Helper()
	s, err := storage.NewJSONUserStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewJSONUserStore: %v", err)
	}
	return s
}

// fakeResponder promptlarni yozib boradi
type fakeResponder struct {
	mu      sync.Mutex
	prompts []string
	reply   string
	err     error
	block   bool // ctx tugaguncha kutadi
}

func (f *fakeResponder) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.reply, f.err
}

func (f *fakeResponder) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

// failingUpsertRepo Upsert va Ban da PersistenceError qaytaradi
type failingUpsertRepo struct {
	repository.UserRepository
}

var errDisk = errors.New("simulated disk failure")

func (f failingUpsertRepo) Upsert(context.Context, string, func(*entity.UserRecord) error) (entity.UserRecord, error) {
	return entity.UserRecord{}, &errs.PersistenceError{Op: "write", Path: "users.json", Err: errDisk}
}

func (f failingUpsertRepo) Ban(context.Context, string) (bool, error) {
	return false, &errs.PersistenceError{Op: "write", Path: "banlist.json", Err: errDisk}
}

// failingViolationRepo Append doim xato
type failingViolationRepo struct{}

func (failingViolationRepo) Append(context.Context, entity.Violation) error {
	return errors.New("audit log unavailable")
}

func (failingViolationRepo) Recent(context.Context, int) ([]entity.Violation, error) {
	return nil, nil
}

func (failingViolationRepo) ByUser(context.Context, string, int) ([]entity.Violation, error) {
	return nil, nil
}

func defaultDetectors(t *testing.T, terms ...string) []Detector {
	t.Helper()
	link, err := NewLinkDetector("")
	if err != nil {
		t.Fatal(err)
	}
	return []Detector{link, NewDenylistDetector(terms)}
}

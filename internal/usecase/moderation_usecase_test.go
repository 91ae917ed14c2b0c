package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/domain/entity"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/infrastructure/storage"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/pkg/errs"
)

func TestInspectEscalatesToBan(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	audit := storage.NewMemoryViolationRepository(0)
	m := NewModerationUseCase(store, audit, 3, defaultDetectors(t)...)

	want := []entity.Verdict{
		{Kind: entity.VerdictWarned, Warnings: 1, Reason: "link"},
		{Kind: entity.VerdictWarned, Warnings: 2, Reason: "link"},
		{Kind: entity.VerdictBanned, Warnings: 3, Reason: "link"},
	}
	for i, w := range want {
		got, err := m.Inspect(ctx, "7", "look at http://spam.example")
		if err != nil {
			t.Fatalf("Inspect #%d: %v", i+1, err)
		}
		if diff := cmp.Diff(w, got); diff != "" {
			t.Errorf("Inspect #%d mismatch (-want +got):\n%s", i+1, diff)
		}
	}

	if banned, _ := store.IsBanned(ctx, "7"); !banned {
		t.Fatal("user 7 not in banlist after 3 warnings")
	}

	// Keyingi tekshiruv ogohlantirishni oshirmaydi.
	got, err := m.Inspect(ctx, "7", "innocent text")
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != entity.VerdictBanned {
		t.Errorf("Inspect after ban = %v, want banned", got.Kind)
	}
	rec, _ := store.Get(ctx, "7")
	if rec.Warnings != 3 {
		t.Errorf("warnings after ban = %d, want 3", rec.Warnings)
	}

	logged, _ := audit.ByUser(ctx, "7", 0)
	if len(logged) != 3 {
		t.Fatalf("violation log has %d entries, want 3", len(logged))
	}
	if !logged[0].Banned || logged[0].Text != "look at http://spam.example" || logged[0].ID == "" {
		t.Errorf("latest violation = %+v", logged[0])
	}
}

func TestInspectCleanDoesNotMutate(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	m := NewModerationUseCase(store, storage.NewMemoryViolationRepository(0), 3, defaultDetectors(t, "casino")...)

	got, err := m.Inspect(ctx, "1", "What is the weather?")
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != entity.VerdictClean {
		t.Errorf("Inspect = %v, want clean", got.Kind)
	}
	if _, err := store.Get(ctx, "1"); !errors.Is(err, errs.ErrUserNotFound) {
		t.Errorf("clean message created a record: %v", err)
	}
}

func TestInspectDenylist(t *testing.T) {
	ctx := context.Background()
	m := NewModerationUseCase(newStore(t), nil, 3, defaultDetectors(t, "casino")...)

	got, err := m.Inspect(ctx, "1", "Best CASINO bonus")
	if err != nil {
		t.Fatal(err)
	}
	if got.Kind != entity.VerdictWarned || got.Reason != "denylist:casino" {
		t.Errorf("Inspect = %+v", got)
	}
}

func TestInspectAuditFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()
	m := NewModerationUseCase(newStore(t), failingViolationRepo{}, 3, defaultDetectors(t)...)

	got, err := m.Inspect(ctx, "1", "www.spam.example")
	if err != nil {
		t.Fatalf("Inspect returned error on audit failure: %v", err)
	}
	if got.Kind != entity.VerdictWarned || got.Warnings != 1 {
		t.Errorf("Inspect = %+v", got)
	}
}

func TestInspectPersistenceFailure(t *testing.T) {
	ctx := context.Background()
	m := NewModerationUseCase(failingUpsertRepo{newStore(t)}, nil, 3, defaultDetectors(t)...)

	_, err := m.Inspect(ctx, "1", "http://spam.example")
	if !errs.IsPersistence(err) {
		t.Fatalf("Inspect error = %v, want PersistenceError", err)
	}
}

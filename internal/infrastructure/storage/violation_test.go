package storage

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/domain/entity"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/domain/repository"
)

func sampleViolations() []entity.Violation {
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return []entity.Violation{
		{ID: "a", UserID: "7", Reason: "link", Text: "http://spam.example", Warnings: 1, CreatedAt: base},
		{ID: "b", UserID: "8", Reason: "denylist:casino", Text: "casino", Warnings: 1, CreatedAt: base.Add(time.Minute)},
		{ID: "c", UserID: "7", Reason: "link", Text: "www.spam.example", Warnings: 2, Banned: true, CreatedAt: base.Add(2 * time.Minute)},
	}
}

func exerciseViolationRepository(t *testing.T, repo repository.ViolationRepository) {
	t.Helper()
	ctx := context.Background()
	all := sampleViolations()
	for _, v := range all {
		if err := repo.Append(ctx, v); err != nil {
			t.Fatalf("Append(%s): %v", v.ID, err)
		}
	}

	recent, err := repo.Recent(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	ids := func(vs []entity.Violation) []string {
		var out []string
		for _, v := range vs {
			out = append(out, v.ID)
		}
		return out
	}
	if diff := cmp.Diff([]string{"c", "b"}, ids(recent)); diff != "" {
		t.Errorf("Recent(2) mismatch (-want +got):\n%s", diff)
	}

	byUser, err := repo.ByUser(ctx, "7", 0)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"c", "a"}, ids(byUser)); diff != "" {
		t.Errorf("ByUser(7) mismatch (-want +got):\n%s", diff)
	}
	if !byUser[0].Banned || byUser[0].Warnings != 2 || byUser[0].Text != "www.spam.example" {
		t.Errorf("ByUser(7)[0] = %+v", byUser[0])
	}
	if !byUser[0].CreatedAt.Equal(all[2].CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", byUser[0].CreatedAt, all[2].CreatedAt)
	}
}

func TestMemoryViolationRepository(t *testing.T) {
	exerciseViolationRepository(t, NewMemoryViolationRepository(0))
}

func TestMemoryViolationRepositoryMaxSize(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryViolationRepository(2)
	for _, v := range sampleViolations() {
		_ = repo.Append(ctx, v)
	}
	got, _ := repo.Recent(ctx, 0)
	if len(got) != 2 || got[1].ID != "b" {
		t.Errorf("Recent after trim = %+v, want [c b]", got)
	}
}

func TestSQLiteViolationRepository(t *testing.T) {
	repo, err := NewSQLiteViolationRepository(filepath.Join(t.TempDir(), "audit", "violations.db"))
	if err != nil {
		if strings.Contains(err.Error(), "CGO_ENABLED") {
			t.Skip("sqlite3 requires cgo")
		}
		t.Fatal(err)
	}
	t.Cleanup(func() { repo.Close() })

	exerciseViolationRepository(t, repo)
}

package usecase

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yourusername/telegram-gatekeeper-bot/internal/domain/entity"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/domain/repository"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/infrastructure/storage"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/pkg/errs"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/pkg/limiter"
)

type gatekeeperFixture struct {
	store repository.UserRepository
	ai    *fakeResponder
	gk    GatekeeperUseCase
	clock time.Time
}

func newGatekeeperFixture(t *testing.T, store repository.UserRepository, allowed ...string) *gatekeeperFixture {
	t.Helper()
	ai := &fakeResponder{reply: "answer"}
	mod := NewModerationUseCase(store, storage.NewMemoryViolationRepository(0), 3, defaultDetectors(t, "casino")...)
	sess := NewSessionUseCase(store, ai, SessionOptions{})
	return &gatekeeperFixture{
		store: store,
		ai:    ai,
		gk:    NewGatekeeperUseCase(store, limiter.NewUserRateLimiter(3*time.Second), mod, sess, 3, allowed),
		clock: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

// send xabarni 10 soniya oraliq bilan yuboradi (rate limitdan o'tadi)
func (f *gatekeeperFixture) send(userID, text string) entity.Result {
	f.clock = f.clock.Add(10 * time.Second)
	return f.gk.Handle(context.Background(), entity.InboundMessage{
		UserID:    userID,
		Username:  "user" + userID,
		Text:      text,
		Timestamp: f.clock,
	})
}

func TestGatekeeperBanScenario(t *testing.T) {
	f := newGatekeeperFixture(t, newStore(t))

	f.send("7", "hi")
	f.send("7", "Bob")

	for i, want := range []entity.Outcome{entity.OutcomeWarned, entity.OutcomeWarned, entity.OutcomeBanned} {
		res := f.send("7", "buy now http://spam.example")
		if res.Outcome != want {
			t.Fatalf("message %d outcome = %v, want %v", i+1, res.Outcome, want)
		}
		if !res.DeleteMessage {
			t.Errorf("message %d: offending message not marked for deletion", i+1)
		}
	}

	if banned, _ := f.store.IsBanned(context.Background(), "7"); !banned {
		t.Fatal("user 7 not banned")
	}

	res := f.send("7", "What is the weather?")
	if res.Outcome != entity.OutcomeBanned || res.Reply != msgBanned {
		t.Errorf("fourth message = %+v, want banned rejection", res)
	}
	if n := len(f.ai.calls()); n != 0 {
		t.Errorf("responder called %d times for a banned/violating user", n)
	}
}

func TestGatekeeperRateLimitDoesNotMutate(t *testing.T) {
	ctx := context.Background()
	f := newGatekeeperFixture(t, newStore(t))

	f.send("5", "hi")

	// Ikkinchi xabar darhol: rad etiladi, ism saqlanmaydi
	res := f.gk.Handle(ctx, entity.InboundMessage{UserID: "5", Text: "Zed", Timestamp: f.clock.Add(time.Second)})
	if res.Outcome != entity.OutcomeRateLimited || res.Reply != msgSlowDown {
		t.Fatalf("fast message = %+v, want rate limited", res)
	}
	rec, err := f.store.Get(ctx, "5")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Name != nil || rec.Warnings != 0 {
		t.Errorf("rate-limited message mutated record: %+v", rec)
	}

	// Tez kelgan qoidabuzar xabar ham ogohlantirish bermaydi
	res = f.gk.Handle(ctx, entity.InboundMessage{UserID: "5", Text: "http://spam.example", Timestamp: f.clock.Add(2 * time.Second)})
	if res.Outcome != entity.OutcomeRateLimited {
		t.Fatalf("fast violating message = %+v", res)
	}
	rec, _ = f.store.Get(ctx, "5")
	if rec.Warnings != 0 {
		t.Errorf("warnings = %d, want 0", rec.Warnings)
	}
}

func TestGatekeeperFullConversation(t *testing.T) {
	f := newGatekeeperFixture(t, newStore(t))

	if res := f.send("42", "Hello"); res.Outcome != entity.OutcomeOnboarding {
		t.Fatalf("Hello = %+v", res)
	}
	if res := f.send("42", "Alex"); res.Outcome != entity.OutcomeNamed {
		t.Fatalf("Alex = %+v", res)
	}
	res := f.send("42", "What is the weather?")
	if res.Outcome != entity.OutcomeAnswered || res.Reply != "answer" {
		t.Fatalf("question = %+v", res)
	}
	if calls := f.ai.calls(); len(calls) != 1 || !strings.Contains(calls[0], "Alex") {
		t.Errorf("responder prompts = %q", calls)
	}
}

func TestGatekeeperNewUserViolationGetsOnboarding(t *testing.T) {
	ctx := context.Background()
	f := newGatekeeperFixture(t, newStore(t))

	res := f.send("9", "casino www.spam.example")
	if res.Outcome != entity.OutcomeWarned {
		t.Fatalf("outcome = %v, want warned", res.Outcome)
	}
	if !strings.Contains(res.Reply, msgOnboarding) {
		t.Errorf("reply %q does not include onboarding prompt", res.Reply)
	}

	// Keyingi toza xabar ism sifatida qabul qilinadi
	if res := f.send("9", "Nina"); res.Outcome != entity.OutcomeNamed {
		t.Errorf("next message = %+v, want named", res)
	}
	rec, _ := f.store.Get(ctx, "9")
	if rec.Warnings != 1 || rec.DisplayName() != "Nina" {
		t.Errorf("record = %+v (%q)", rec, rec.DisplayName())
	}
}

func TestGatekeeperAllowlist(t *testing.T) {
	f := newGatekeeperFixture(t, newStore(t), "@User1", "vaizmolld")

	if res := f.send("2", "hi"); res.Outcome != entity.OutcomeNotAllowed || res.Reply != msgNotAllowed {
		t.Errorf("unlisted user = %+v", res)
	}
	if res := f.send("1", "hi"); res.Outcome != entity.OutcomeOnboarding {
		t.Errorf("listed user = %+v", res)
	}
}

func TestGatekeeperPersistenceFailure(t *testing.T) {
	f := newGatekeeperFixture(t, failingUpsertRepo{newStore(t)})

	res := f.send("1", "hi")
	if res.Outcome != entity.OutcomeFailed || res.Reply != msgGenericError {
		t.Errorf("result = %+v, want generic failure", res)
	}
}

func TestGatekeeperGreet(t *testing.T) {
	f := newGatekeeperFixture(t, newStore(t))
	greet := func(userID string) entity.Result {
		f.clock = f.clock.Add(10 * time.Second)
		return f.gk.Greet(context.Background(), entity.InboundMessage{UserID: userID, Text: "/start", Timestamp: f.clock})
	}

	if res := greet("3"); res.Outcome != entity.OutcomeOnboarding || res.Reply != msgOnboarding {
		t.Fatalf("first /start = %+v", res)
	}
	if res := greet("3"); res.Reply != msgOnboarding {
		t.Errorf("/start while awaiting name = %+v", res)
	}
	f.send("3", "Lola")
	if res := greet("3"); res.Reply != msgWelcomeBack("Lola") {
		t.Errorf("/start for active user = %+v", res)
	}
	if n := len(f.ai.calls()); n != 0 {
		t.Errorf("greeting called responder %d times", n)
	}
}

// banFailsOnce birinchi Ban chaqirig'ida yozuv xatosi qaytaradi
type banFailsOnce struct {
	repository.UserRepository
	mu     sync.Mutex
	failed bool
}

func (b *banFailsOnce) Ban(ctx context.Context, userID string) (bool, error) {
	b.mu.Lock()
	first := !b.failed
	b.failed = true
	b.mu.Unlock()
	if first {
		return false, &errs.PersistenceError{Op: "write", Path: "banlist.json", Err: errDisk}
	}
	return b.UserRepository.Ban(ctx, userID)
}

func TestGatekeeperRetriesFailedBan(t *testing.T) {
	ctx := context.Background()
	store := &banFailsOnce{UserRepository: newStore(t)}
	f := newGatekeeperFixture(t, store)

	f.send("7", "hi")
	f.send("7", "Bob")
	f.send("7", "http://spam.example")
	f.send("7", "http://spam.example")

	if res := f.send("7", "http://spam.example"); res.Outcome != entity.OutcomeFailed {
		t.Fatalf("third violation with failing ban write = %v, want failed", res.Outcome)
	}
	if banned, _ := store.IsBanned(ctx, "7"); banned {
		t.Fatal("ban committed despite write failure")
	}

	// Toza xabar ham chegarada qolgan foydalanuvchini AI ga o'tkazmaydi
	res := f.send("7", "What is the weather?")
	if res.Outcome != entity.OutcomeBanned || res.Reply != msgBanned {
		t.Errorf("clean message after threshold = %+v, want banned", res)
	}
	if banned, _ := store.IsBanned(ctx, "7"); !banned {
		t.Error("ban not retried")
	}
	if n := len(f.ai.calls()); n != 0 {
		t.Errorf("responder called %d times for a user at the warning threshold", n)
	}
}

// stateFailingRepo Get da o'qish xatosi
type stateFailingRepo struct {
	repository.UserRepository
}

func (stateFailingRepo) Get(context.Context, string) (*entity.UserRecord, error) {
	return nil, &errs.PersistenceError{Op: "read", Path: "users.json", Err: errDisk}
}

func TestGatekeeperStateReadFailure(t *testing.T) {
	f := newGatekeeperFixture(t, stateFailingRepo{newStore(t)})

	res := f.send("1", "hello")
	if res.Outcome != entity.OutcomeFailed || res.Reply != msgGenericError {
		t.Errorf("result = %+v, want generic failure", res)
	}
	if n := len(f.ai.calls()); n != 0 {
		t.Errorf("responder called %d times", n)
	}
}

func TestGatekeeperAdmit(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	f := newGatekeeperFixture(t, store, "alice")

	if _, ok := f.gk.Admit(ctx, entity.InboundMessage{UserID: "1", Username: "mallory"}); ok {
		t.Error("non-allowlisted user admitted")
	}
	store.Ban(ctx, "2")
	if res, ok := f.gk.Admit(ctx, entity.InboundMessage{UserID: "2", Username: "alice"}); ok || res.Reply != msgBanned {
		t.Errorf("banned user Admit = %+v, %v", res, ok)
	}

	// Admit rate limit tokenini sarflamaydi
	msg := entity.InboundMessage{UserID: "3", Username: "alice", Text: "hi", Timestamp: f.clock}
	if _, ok := f.gk.Admit(ctx, msg); !ok {
		t.Fatal("allowed user rejected")
	}
	if res := f.gk.Handle(ctx, msg); res.Outcome != entity.OutcomeOnboarding {
		t.Errorf("Handle after Admit = %+v, want onboarding", res)
	}
}

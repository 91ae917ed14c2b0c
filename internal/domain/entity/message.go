package entity

import "time"

// InboundMessage transportdan kelgan foydalanuvchi xabari
type InboundMessage struct {
	UserID    string
	Username  string
	ChatID    int64
	Text      string
	Timestamp time.Time
}

// Outcome xabar qayta ishlanishining natijasi
type Outcome int

const (
	OutcomeAnswered    Outcome = iota // AI javobi qaytdi
	OutcomeOnboarding                 // ism so'raldi
	OutcomeNamed                      // ism saqlandi
	OutcomeNotAllowed                 // taklif ro'yxatida yo'q
	OutcomeBanned                     // ban ro'yxatida
	OutcomeRateLimited                // juda tez yozmoqda
	OutcomeWarned                     // ogohlantirish berildi
	OutcomeFailed                     // xatolik, fallback javob
	OutcomeDropped                    // sessiya tugadi, javob yuborilmaydi
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAnswered:
		return "answered"
	case OutcomeOnboarding:
		return "onboarding"
	case OutcomeNamed:
		return "named"
	case OutcomeNotAllowed:
		return "not_allowed"
	case OutcomeBanned:
		return "banned"
	case OutcomeRateLimited:
		return "rate_limited"
	case OutcomeWarned:
		return "warned"
	case OutcomeFailed:
		return "failed"
	case OutcomeDropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// Result foydalanuvchiga qaytariladigan javob
type Result struct {
	Outcome Outcome
	Reply   string
	// DeleteMessage qoidabuzar xabarni o'chirishga urinish kerakmi
	DeleteMessage bool
}

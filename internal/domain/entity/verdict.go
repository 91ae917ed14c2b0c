package entity

import "time"

// VerdictKind xabarni tekshirish natijasi
type VerdictKind int

const (
	VerdictClean VerdictKind = iota
	VerdictWarned
	VerdictBanned
)

func (k VerdictKind) String() string {
	switch k {
	case VerdictClean:
		return "clean"
	case VerdictWarned:
		return "warned"
	case VerdictBanned:
		return "banned"
	default:
		return "unknown"
	}
}

// Verdict Warned bo'lsa Warnings yangi ogohlantirishlar soni
type Verdict struct {
	Kind     VerdictKind
	Warnings int
	Reason   string
}

// Violation audit log yozuvi
type Violation struct {
	ID        string
	UserID    string
	Reason    string
	Text      string
	Warnings  int
	Banned    bool
	CreatedAt time.Time
}

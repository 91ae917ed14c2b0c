package entity

import "time"

// AdminAction admin harakatlari
type AdminAction struct {
	ID        string
	AdminID   string
	Action    string // "ban", "unban", "reset_warnings", "forget", "import_denylist", "export"
	TargetID  string
	Details   string
	Timestamp time.Time
}

// UserStatus admin uchun foydalanuvchi holati
type UserStatus struct {
	Record *UserRecord
	Banned bool
	State  SessionState
	// Recent foydalanuvchining oxirgi qoidabuzarliklari (yangilari birinchi)
	Recent []Violation
}

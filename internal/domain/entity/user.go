package entity

// UserRecord foydalanuvchi haqidagi doimiy yozuv
type UserRecord struct {
	UserID string `json:"-"`
	// Name onboarding paytida bir marta o'rnatiladi
	Name     *string `json:"name"`
	Warnings int     `json:"warnings"`
}

// NewUserRecord bo'sh yozuv
func NewUserRecord(userID string) UserRecord {
	return UserRecord{UserID: userID}
}

// HasName ism saqlanganmi
func (r UserRecord) HasName() bool {
	return r.Name != nil && *r.Name != ""
}

// DisplayName ism yoki bo'sh satr
func (r UserRecord) DisplayName() string {
	if r.Name == nil {
		return ""
	}
	return *r.Name
}

// Clone pointer maydonlari bilan birga nusxa
func (r UserRecord) Clone() UserRecord {
	if r.Name != nil {
		name := *r.Name
		r.Name = &name
	}
	return r
}

// SessionState suhbat bosqichi
type SessionState int

const (
	StateNew SessionState = iota
	StateAwaitingName
	StateActive
)

func (s SessionState) String() string {
	switch s {
	case StateNew:
		return "NEW"
	case StateAwaitingName:
		return "AWAITING_NAME"
	case StateActive:
		return "ACTIVE"
	default:
		return "UNKNOWN"
	}
}

// StateOf yozuvdan bosqichni aniqlash; nil yozuv NEW
func StateOf(rec *UserRecord) SessionState {
	switch {
	case rec == nil:
		return StateNew
	case !rec.HasName():
		return StateAwaitingName
	default:
		return StateActive
	}
}

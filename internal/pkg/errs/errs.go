// Package errs ilova bo'ylab ishlatiladigan xato turlari.
//
// Policy buzilishi xato emas (entity.Verdict orqali qaytadi); bu yerda faqat
// transport, AI xizmati va saqlash qatlamidagi nosozliklar.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized admin bo'lmagan foydalanuvchi admin komandasini yubordi
	ErrUnauthorized = errors.New("unauthorized: admin only")

	// ErrUserNotFound foydalanuvchi yozuvi mavjud emas
	ErrUserNotFound = errors.New("user record not found")

	// ErrResponderTimeout AI javobi belgilangan vaqtda kelmadi
	ErrResponderTimeout = errors.New("responder timeout")
)

// TransportError javobni yetkazib bo'lmadi. Log qilinadi va tashlab yuboriladi.
type TransportError struct {
	ChatID int64
	Op     string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s (chat %d): %v", e.Op, e.ChatID, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// PersistenceError store faylga yozilmadi; xotiradagi holat commit qilinmagan.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ResponderKind AI xizmati xatosining turi
type ResponderKind int

const (
	ResponderUnknown ResponderKind = iota
	ResponderQuota
	ResponderTimeout
	ResponderMalformed
	ResponderUnavailable
)

func (k ResponderKind) String() string {
	switch k {
	case ResponderQuota:
		return "quota"
	case ResponderTimeout:
		return "timeout"
	case ResponderMalformed:
		return "malformed"
	case ResponderUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// ResponderError tashqi AI xizmatining tasniflangan xatosi.
// Status HTTP yoki gRPC kodi (noma'lum bo'lsa 0).
type ResponderError struct {
	Kind    ResponderKind
	Status  int
	Message string
	Err     error
}

// NewResponderError yangi ResponderError yaratish
func NewResponderError(kind ResponderKind, status int, message string, err error) *ResponderError {
	return &ResponderError{Kind: kind, Status: status, Message: message, Err: err}
}

func (e *ResponderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("responder %s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("responder %s: %s", e.Kind, e.Message)
}

func (e *ResponderError) Unwrap() error { return e.Err }

// Is timeout turidagi xatolarni ErrResponderTimeout bilan moslashtiradi
func (e *ResponderError) Is(target error) bool {
	return target == ErrResponderTimeout && e.Kind == ResponderTimeout
}

// Retryable foydalanuvchi keyinroq qayta urinishi mumkinmi
func (e *ResponderError) Retryable() bool {
	switch e.Kind {
	case ResponderQuota, ResponderTimeout, ResponderUnavailable:
		return true
	}
	return false
}

// Diagnostic foydalanuvchiga ko'rsatish mumkin bo'lgan qisqa kod, masalan "unavailable/503"
func (e *ResponderError) Diagnostic() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s/%d", e.Kind, e.Status)
	}
	return e.Kind.String()
}

// AsResponderError err ichidan ResponderError ni ajratib olish
func AsResponderError(err error) (*ResponderError, bool) {
	var re *ResponderError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// IsPersistence err saqlash xatosimi
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}

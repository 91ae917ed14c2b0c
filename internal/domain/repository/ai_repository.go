package repository

import "context"

// AIRepository tashqi AI xizmati (responder).
// Xatolar *errs.ResponderError sifatida tasniflangan holda qaytadi.
type AIRepository interface {
	// Generate prompt bo'yicha javob yaratish
	Generate(ctx context.Context, prompt string) (string, error)
}

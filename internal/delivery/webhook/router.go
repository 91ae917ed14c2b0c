// Package webhook Telegram webhook va health check uchun HTTP router.
package webhook

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/pkg/logx"
)

const maxBodySize = 1 << 20

// Dispatcher update ni fonda qayta ishlaydi (telegram.BotHandler)
type Dispatcher interface {
	Dispatch(ctx context.Context, update tgbotapi.Update)
}

// Deps router bog'liqliklari
type Deps struct {
	// Secret webhook yo'lidagi maxfiy segment
	Secret string
	// BaseContext update lar shu kontekstda ishlaydi (so'rov konteksti emas)
	BaseContext context.Context
	Dispatcher  Dispatcher
}

// Router POST /webhook/{secret} va GET /healthz
func Router(deps Deps) http.Handler {
	if deps.BaseContext == nil {
		deps.BaseContext = context.Background()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Post("/webhook/{secret}", HandleWebhook(deps))

	return r
}

// HandleWebhook update ni qabul qilib darhol 200 qaytaradi
func HandleWebhook(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		secret := chi.URLParam(r, "secret")
		if deps.Secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(deps.Secret)) != 1 {
			logx.Warn("webhook secret mismatch")
			http.NotFound(w, r)
			return
		}

		var update tgbotapi.Update
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&update); err != nil {
			logx.Warn("webhook body decode failed", "error", err.Error())
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		deps.Dispatcher.Dispatch(deps.BaseContext, update)
		w.WriteHeader(http.StatusOK)
	}
}

package gemini

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/domain/repository"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/pkg/errs"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/pkg/logx"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
)

const (
	DefaultModel       = "gemini-1.5-flash"
	DefaultConcurrency = 3
	minDelay           = 350 * time.Millisecond
)

// Options Gemini client sozlamalari
type Options struct {
	APIKey       string
	Model        string
	SystemPrompt string
	Concurrency  int
}

// Client Gemini asosidagi responder
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
	sem    chan struct{}
	mu     sync.Mutex
	last   time.Time
	delay  time.Duration
}

var _ repository.AIRepository = (*Client)(nil)

// NewGeminiClient yangi Gemini AI client yaratish
func NewGeminiClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("gemini api key bo'sh")
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(opts.Model)
	model.SetTemperature(0.7)
	model.SetTopK(40)
	model.SetTopP(0.95)
	model.SetMaxOutputTokens(2048)

	if prompt := strings.TrimSpace(opts.SystemPrompt); prompt != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(prompt)},
		}
	}

	return &Client{
		client: client,
		model:  model,
		sem:    make(chan struct{}, opts.Concurrency),
		delay:  minDelay,
	}, nil
}

// Generate bitta so'rov, tarixsiz. Xatolar *errs.ResponderError ko'rinishida.
func (g *Client) Generate(ctx context.Context, prompt string) (string, error) {
	release, err := g.acquire(ctx)
	if err != nil {
		return "", classifyError(err)
	}
	defer release()

	started := time.Now()
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		rerr := classifyError(err)
		logx.Warn("gemini request failed", "kind", rerr.Kind.String(), "status", rerr.Status, "elapsed", time.Since(started).String())
		return "", rerr
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", errs.NewResponderError(errs.ResponderMalformed, 0, "no response candidates", nil)
	}
	text := extractText(resp)
	if strings.TrimSpace(text) == "" {
		return "", errs.NewResponderError(errs.ResponderMalformed, 0, "empty response text", nil)
	}

	logx.Debug("gemini response", "elapsed", time.Since(started).String(), "chars", len(text))
	return text, nil
}

// extractText javobdan textni ajratib olish
func extractText(resp *genai.GenerateContentResponse) string {
	var result strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				result.WriteString(string(t))
			}
		}
	}
	return result.String()
}

// classifyError xatoni ResponderError turiga ajratish
func classifyError(err error) *errs.ResponderError {
	if rerr, ok := errs.AsResponderError(err); ok {
		return rerr
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return errs.NewResponderError(errs.ResponderTimeout, 0, "deadline exceeded", err)
	case errors.Is(err, context.Canceled):
		return errs.NewResponderError(errs.ResponderUnknown, 0, "request canceled", err)
	}

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return errs.NewResponderError(errs.ResponderMalformed, 0, blocked.Error(), err)
	}

	if ae, ok := apierror.FromError(err); ok {
		if code := ae.HTTPCode(); code > 0 {
			return errs.NewResponderError(kindForHTTP(code), code, err.Error(), err)
		}
		if st := ae.GRPCStatus(); st != nil {
			return errs.NewResponderError(kindForCode(st.Code()), httpStatusFor(st.Code()), st.Message(), err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return errs.NewResponderError(errs.ResponderTimeout, 0, netErr.Error(), err)
		}
		return errs.NewResponderError(errs.ResponderUnavailable, 0, netErr.Error(), err)
	}

	// REST transportidan kelgan ba'zi xatolar faqat matn ko'rinishida
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "quota") || strings.Contains(msg, "resource_exhausted") || strings.Contains(msg, "429"):
		return errs.NewResponderError(errs.ResponderQuota, 429, err.Error(), err)
	case strings.Contains(msg, "unavailable") || strings.Contains(msg, "503"):
		return errs.NewResponderError(errs.ResponderUnavailable, 503, err.Error(), err)
	}
	return errs.NewResponderError(errs.ResponderUnknown, 0, err.Error(), err)
}

func kindForCode(code codes.Code) errs.ResponderKind {
	switch code {
	case codes.ResourceExhausted:
		return errs.ResponderQuota
	case codes.DeadlineExceeded:
		return errs.ResponderTimeout
	case codes.InvalidArgument, codes.FailedPrecondition, codes.OutOfRange:
		return errs.ResponderMalformed
	case codes.Unavailable, codes.Internal, codes.Aborted:
		return errs.ResponderUnavailable
	default:
		return errs.ResponderUnknown
	}
}

func kindForHTTP(code int) errs.ResponderKind {
	switch {
	case code == 429:
		return errs.ResponderQuota
	case code == 408 || code == 504:
		return errs.ResponderTimeout
	case code == 400:
		return errs.ResponderMalformed
	case code >= 500:
		return errs.ResponderUnavailable
	default:
		return errs.ResponderUnknown
	}
}

func httpStatusFor(code codes.Code) int {
	switch code {
	case codes.ResourceExhausted:
		return 429
	case codes.InvalidArgument:
		return 400
	case codes.DeadlineExceeded:
		return 504
	case codes.Unavailable:
		return 503
	case codes.Internal:
		return 500
	default:
		return 0
	}
}

// acquire semafor va minimal interval; ctx bekor bo'lsa kutish to'xtaydi
func (g *Client) acquire(ctx context.Context) (func(), error) {
	select {
	case g.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	release := func() { <-g.sem }

	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	if !g.last.IsZero() {
		if sleep := g.delay - now.Sub(g.last); sleep > 0 {
			timer := time.NewTimer(sleep)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				release()
				return nil, ctx.Err()
			}
			now = time.Now()
		}
	}
	g.last = now

	return release, nil
}

// Close client ni yopish
func (g *Client) Close() error {
	return g.client.Close()
}

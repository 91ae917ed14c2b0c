package usecase

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
)

// DefaultLinkPattern URL ga o'xshash tokenlar: sxema, www. yoki t.me havolalari
const DefaultLinkPattern = `(?i)(\b[a-z][a-z0-9+.\-]*://\S+|\bwww\.\S+|\bt\.me/\S+|@[a-z0-9_]{5,}bot\b)`

// Detector bitta qoidani tekshiruvchi. Mos kelsa sabab qaytaradi.
type Detector interface {
	Detect(text string) (reason string, matched bool)
}

// LinkDetector havolalarni regexp orqali aniqlaydi
type LinkDetector struct {
	re *regexp.Regexp
}

// NewLinkDetector pattern bo'sh bo'lsa DefaultLinkPattern; har doim case-insensitive
func NewLinkDetector(pattern string) (*LinkDetector, error) {
	if strings.TrimSpace(pattern) == "" {
		pattern = DefaultLinkPattern
	}
	if !strings.HasPrefix(pattern, "(?i)") {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("link pattern noto'g'ri: %w", err)
	}
	return &LinkDetector{re: re}, nil
}

// Detect havola topilsa "link"
func (d *LinkDetector) Detect(text string) (string, bool) {
	if d.re.MatchString(text) {
		return "link", true
	}
	return "", false
}

// DenylistDetector taqiqlangan so'zlarni case-insensitive qidiradi.
// Ro'yxat ish vaqtida almashtirilishi mumkin (admin Excel yuklaganda).
type DenylistDetector struct {
	mu    sync.RWMutex
	terms []string
}

// NewDenylistDetector yangi detector
func NewDenylistDetector(terms []string) *DenylistDetector {
	d := &DenylistDetector{}
	d.Replace(terms)
	return d
}

// Replace ro'yxatni almashtirish; takrorlar va bo'sh qatorlar tashlanadi. Yangi hajmni qaytaradi.
func (d *DenylistDetector) Replace(terms []string) int {
	normalized := NormalizeTerms(terms)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.terms = normalized
	return len(normalized)
}

// Terms joriy ro'yxat nusxasi
func (d *DenylistDetector) Terms() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.terms...)
}

// Detect birinchi topilgan so'z bilan "denylist:<so'z>"
func (d *DenylistDetector) Detect(text string) (string, bool) {
	lower := strings.ToLower(text)

	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, term := range d.terms {
		if strings.Contains(lower, term) {
			return "denylist:" + term, true
		}
	}
	return "", false
}

// NormalizeTerms kichik harf, trim, takrorsiz, tartiblangan
func NormalizeTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

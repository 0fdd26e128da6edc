package deck

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"slidegen-backend/internal/config"
)

// Rand is the randomness source used for palette and fallback font picks.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

type ThemeSelector struct {
	palette       []RGB
	fonts         map[string]string
	fallbackFonts []string
	footers       map[string]string
	defaultFooter string
	rtlLanguage   string

	mu  sync.Mutex
	rnd Rand
}

// NewThemeSelector builds a selector from the configured tables. A nil rnd uses
// the process-wide generator.
func NewThemeSelector(cfg config.ThemeConfig, rnd Rand) (*ThemeSelector, error) {
	if len(cfg.Palette) == 0 {
		return nil, fmt.Errorf("theme palette is empty")
	}
	if len(cfg.FallbackFonts) == 0 {
		return nil, fmt.Errorf("fallback font list is empty")
	}

	palette := make([]RGB, 0, len(cfg.Palette))
	for _, h := range cfg.Palette {
		c, err := ParseHex(h)
		if err != nil {
			return nil, fmt.Errorf("palette: %w", err)
		}
		palette = append(palette, c)
	}

	if rnd == nil {
		rnd = globalRand{}
	}

	return &ThemeSelector{
		palette:       palette,
		fonts:         foldKeys(cfg.Fonts),
		fallbackFonts: append([]string(nil), cfg.FallbackFonts...),
		footers:       foldKeys(cfg.Footers),
		defaultFooter: cfg.DefaultFooter,
		rtlLanguage:   LanguageKey(cfg.RTLLanguage),
		rnd:           rnd,
	}, nil
}

// Select picks a background at random, a font by language (random fallback),
// and a contrasting foreground.
func (s *ThemeSelector) Select(language string) Theme {
	key := LanguageKey(language)

	s.mu.Lock()
	bg := s.palette[s.rnd.IntN(len(s.palette))]
	font, ok := s.fonts[key]
	if !ok {
		font = s.fallbackFonts[s.rnd.IntN(len(s.fallbackFonts))]
	}
	s.mu.Unlock()

	align := AlignLeft
	if key != "" && key == s.rtlLanguage {
		align = AlignRight
	}

	return Theme{
		Background: bg,
		Foreground: ForegroundFor(bg),
		Font:       font,
		Align:      align,
		Language:   key,
	}
}

// Footer returns the localized footer line, falling back to the default.
func (s *ThemeSelector) Footer(language string) string {
	if f, ok := s.footers[LanguageKey(language)]; ok {
		return f
	}
	return s.defaultFooter
}

// Palette returns a copy of the configured background colours.
func (s *ThemeSelector) Palette() []RGB {
	return append([]RGB(nil), s.palette...)
}

// ForegroundFor returns white on dark backgrounds and black on light ones.
func ForegroundFor(bg RGB) RGB {
	if bg.Brightness() < 128 {
		return White
	}
	return Black
}

// LanguageKey normalizes a language name for table lookups.
func LanguageKey(language string) string {
	return cases.Fold().String(strings.TrimSpace(language))
}

func foldKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[LanguageKey(k)] = v
	}
	return out
}

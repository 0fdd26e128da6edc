package deck

import (
	"math/rand/v2"
	"testing"

	"slidegen-backend/internal/config"
)

type seqRand struct {
	vals []int
	i    int
}

func (s *seqRand) IntN(n int) int {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v % n
}

func testThemeConfig() config.ThemeConfig {
	return config.ThemeConfig{
		Palette: []string{"2ECC71", "3498DB", "9B59B6", "F1C40F", "E67E22", "E74C3C", "95A5A6", "34495E"},
		Fonts: map[string]string{
			"urdu":    "Jameel Noori Nastaleeq",
			"marathi": "Mangal",
			"hindi":   "Mangal",
			"english": "Calibri",
		},
		FallbackFonts: []string{"Georgia", "Garamond", "Trebuchet MS", "Segoe UI", "Calibri"},
		Footers: map[string]string{
			"english": "Generated by AI Slide Generator",
			"hindi":   "एआई स्लाइड जेनरेटर द्वारा निर्मित",
		},
		DefaultFooter: "Generated by AI Slide Generator",
		RTLLanguage:   "urdu",
	}
}

func TestForegroundFor_Palette(t *testing.T) {
	tests := []struct {
		hex      string
		expected RGB
	}{
		{"2ECC71", Black},
		{"3498DB", Black},
		{"9B59B6", White},
		{"F1C40F", Black},
		{"E67E22", Black},
		{"E74C3C", White},
		{"95A5A6", Black},
		{"34495E", White},
	}

	for _, tc := range tests {
		t.Run(tc.hex, func(t *testing.T) {
			bg, err := ParseHex(tc.hex)
			if err != nil {
				t.Fatal(err)
			}
			fg := ForegroundFor(bg)
			if fg != tc.expected {
				t.Errorf("Expected %s foreground, got %s (brightness %d)", tc.expected.Hex(), fg.Hex(), bg.Brightness())
			}
			dark := bg.Brightness() < 128
			if dark != (fg == White) {
				t.Errorf("Foreground %s does not contrast with %s", fg.Hex(), bg.Hex())
			}
		})
	}
}

func TestThemeSelector_Deterministic(t *testing.T) {
	sel, err := NewThemeSelector(testThemeConfig(), &seqRand{vals: []int{2, 3}})
	if err != nil {
		t.Fatal(err)
	}

	theme := sel.Select("Swahili")
	if theme.Background.Hex() != "9B59B6" {
		t.Errorf("Expected palette entry 2, got %s", theme.Background.Hex())
	}
	if theme.Font != "Segoe UI" {
		t.Errorf("Expected fallback font 3, got %q", theme.Font)
	}
	if theme.Foreground != White {
		t.Errorf("Expected white text, got %s", theme.Foreground.Hex())
	}
	if theme.Align != AlignLeft {
		t.Errorf("Expected left alignment, got %s", theme.Align)
	}
}

func TestThemeSelector_SeededRandIsRepeatable(t *testing.T) {
	a, _ := NewThemeSelector(testThemeConfig(), rand.New(rand.NewPCG(7, 11)))
	b, _ := NewThemeSelector(testThemeConfig(), rand.New(rand.NewPCG(7, 11)))

	for i := 0; i < 20; i++ {
		if x, y := a.Select("French"), b.Select("French"); x != y {
			t.Fatalf("Run %d diverged: %+v vs %+v", i, x, y)
		}
	}
}

func TestThemeSelector_FontLookup(t *testing.T) {
	sel, _ := NewThemeSelector(testThemeConfig(), &seqRand{vals: []int{0}})

	tests := []struct {
		language string
		font     string
		align    Align
	}{
		{"English", "Calibri", AlignLeft},
		{"  HINDI ", "Mangal", AlignLeft},
		{"marathi", "Mangal", AlignLeft},
		{"Urdu", "Jameel Noori Nastaleeq", AlignRight},
		{" urdu ", "Jameel Noori Nastaleeq", AlignRight},
	}

	for _, tc := range tests {
		theme := sel.Select(tc.language)
		if theme.Font != tc.font {
			t.Errorf("%q: expected font %q, got %q", tc.language, tc.font, theme.Font)
		}
		if theme.Align != tc.align {
			t.Errorf("%q: expected %s alignment, got %s", tc.language, tc.align, theme.Align)
		}
	}
}

func TestThemeSelector_Footer(t *testing.T) {
	sel, _ := NewThemeSelector(testThemeConfig(), nil)

	if got := sel.Footer("Hindi"); got != "एआई स्लाइड जेनरेटर द्वारा निर्मित" {
		t.Errorf("Expected hindi footer, got %q", got)
	}
	if got := sel.Footer("Klingon"); got != "Generated by AI Slide Generator" {
		t.Errorf("Expected default footer, got %q", got)
	}
}

func TestNewThemeSelector_InvalidPalette(t *testing.T) {
	cfg := testThemeConfig()
	cfg.Palette = []string{"not-a-colour"}

	if _, err := NewThemeSelector(cfg, nil); err == nil {
		t.Error("Expected error for invalid palette entry")
	}

	cfg.Palette = nil
	if _, err := NewThemeSelector(cfg, nil); err == nil {
		t.Error("Expected error for empty palette")
	}
}

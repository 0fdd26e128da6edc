package deck

import "testing"

func TestSplitIntoBullets(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		expected []Bullet
	}{
		{
			"sentence split",
			[]string{"Water boils at 100C. It freezes at 0C."},
			[]Bullet{"• Water boils at 100C.", "• It freezes at 0C."},
		},
		{
			"bulleted line kept whole",
			[]string{"• Plants need light. They also need water."},
			[]Bullet{"• Plants need light. They also need water."},
		},
		{
			"dash and repeated markers stripped",
			[]string{"- Evaporation", "--  Condensation", "•• Precipitation", "- • Collection"},
			[]Bullet{"• Evaporation", "• Condensation", "• Precipitation", "• Collection"},
		},
		{
			"empty lines and bare markers dropped",
			[]string{"", "   ", "-", "• ", "Rain falls."},
			[]Bullet{"• Rain falls."},
		},
		{
			"question and exclamation boundaries",
			[]string{"What is rain? It is water! Look up."},
			[]Bullet{"• What is rain?", "• It is water!", "• Look up."},
		},
		{
			"decimal point is not a boundary",
			[]string{"Pi is about 3.14 in value."},
			[]Bullet{"• Pi is about 3.14 in value."},
		},
		{
			"non-latin text without boundaries",
			[]string{"पानी का चक्र"},
			[]Bullet{"• पानी का चक्र"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SplitIntoBullets(tc.lines)
			if len(got) != len(tc.expected) {
				t.Fatalf("Expected %d bullets %q, got %d %q", len(tc.expected), tc.expected, len(got), got)
			}
			for i := range tc.expected {
				if got[i] != tc.expected[i] {
					t.Errorf("Bullet %d: expected %q, got %q", i, tc.expected[i], got[i])
				}
			}
		})
	}
}

func TestSplitIntoBullets_Idempotent(t *testing.T) {
	inputs := []string{
		"Water boils at 100C.",
		"The sun heats the ocean. Vapour rises!",
		"Clouds form",
	}

	for _, in := range inputs {
		for _, b := range SplitIntoBullets([]string{in}) {
			again := SplitIntoBullets([]string{BulletGlyph + " " + b.Text()})
			if len(again) != 1 || again[0] != b {
				t.Errorf("Re-segmenting %q gave %q", b, again)
			}
		}
	}
}

func TestSplitIntoBullets_NeverEmpty(t *testing.T) {
	got := SplitIntoBullets([]string{"A.  B.   ", " - ", "C!\tD?"})
	for _, b := range got {
		if b.Text() == "" {
			t.Errorf("Produced empty bullet in %q", got)
		}
	}
	if len(got) != 4 {
		t.Errorf("Expected 4 bullets, got %q", got)
	}
}

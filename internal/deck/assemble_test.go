package deck

import (
	"errors"
	"strings"
	"testing"
)

func testInput() AssembleInput {
	return AssembleInput{
		Grade:   5,
		Subject: "Science",
		Topic:   "Water Cycle",
		Theme:   Theme{Background: RGB{52, 73, 94}, Foreground: White, Font: "Calibri"},
		Footer:  "Generated by AI Slide Generator",
	}
}

func TestTitleSize(t *testing.T) {
	tests := []struct {
		length   int
		expected int
	}{
		{110, 24},
		{101, 24},
		{100, 28},
		{70, 28},
		{61, 28},
		{60, 36},
		{30, 36},
		{0, 36},
	}

	for _, tc := range tests {
		if got := TitleSize(strings.Repeat("x", tc.length)); got != tc.expected {
			t.Errorf("Length %d: expected %dpt, got %dpt", tc.length, tc.expected, got)
		}
	}

	// Rune count, not byte count.
	if got := TitleSize(strings.Repeat("ज", 40)); got != 36 {
		t.Errorf("Expected 40 runes to use the large tier, got %dpt", got)
	}
}

func TestBulletSize(t *testing.T) {
	tests := []struct {
		count    int
		expected int
	}{
		{0, 26}, {4, 26}, {5, 22}, {6, 22}, {7, 18}, {9, 18},
	}

	for _, tc := range tests {
		if got := BulletSize(tc.count); got != tc.expected {
			t.Errorf("%d bullets: expected %dpt, got %dpt", tc.count, tc.expected, got)
		}
	}
}

func TestAssemble_TitleSlide(t *testing.T) {
	slides := []RawSlide{{
		Title:   strings.Repeat("T", 70),
		Content: []string{strings.Repeat("s", 300)},
	}}

	d := Assemble(slides, nil, testInput())
	if len(d.Slides) != 1 {
		t.Fatalf("Expected 1 slide, got %d", len(d.Slides))
	}
	if d.Filename != "Class5_Science_Water_Cycle_presentation.pptx" {
		t.Errorf("Unexpected filename %q", d.Filename)
	}

	title, ok := d.Slides[0].Box(RoleTitle)
	if !ok {
		t.Fatal("Expected title box")
	}
	if p := title.Paragraphs[0]; p.Size != 28 || !p.Bold {
		t.Errorf("Expected bold 28pt title, got %+v", p)
	}

	sub, ok := d.Slides[0].Box(RoleSubtitle)
	if !ok {
		t.Fatal("Expected subtitle box")
	}
	if n := len([]rune(sub.Paragraphs[0].Text)); n != MaxSubtitleRunes {
		t.Errorf("Expected subtitle truncated to %d runes, got %d", MaxSubtitleRunes, n)
	}
	if sub.Paragraphs[0].Size != 22 {
		t.Errorf("Expected 22pt subtitle, got %d", sub.Paragraphs[0].Size)
	}
}

func TestAssemble_BulletCap(t *testing.T) {
	var content []string
	for i := 1; i <= 9; i++ {
		content = append(content, "• Point "+string(rune('0'+i)))
	}
	slides := []RawSlide{{Title: "Cover"}, {Title: "Facts", Content: content}}

	d := Assemble(slides, nil, testInput())
	body, ok := d.Slides[1].Box(RoleBody)
	if !ok {
		t.Fatal("Expected body box")
	}
	if len(body.Paragraphs) != MaxBullets {
		t.Fatalf("Expected %d bullets, got %d", MaxBullets, len(body.Paragraphs))
	}
	for i, p := range body.Paragraphs {
		want := "• Point " + string(rune('1'+i))
		if p.Text != want {
			t.Errorf("Bullet %d: expected %q, got %q", i, want, p.Text)
		}
		if p.Size != 18 || p.LineSpacing != 24 {
			t.Errorf("Bullet %d: expected 18pt with 24pt spacing, got %dpt/%dpt", i, p.Size, p.LineSpacing)
		}
	}
}

func TestAssemble_ContentSlide(t *testing.T) {
	slides := []RawSlide{
		{Title: "Cover"},
		{Title: "Evaporation", Content: []string{"The sun heats water. Vapour rises."}},
	}
	img := &Image{Data: []byte{0xff, 0xd8}, MimeType: "image/jpeg"}

	d := Assemble(slides, []ImageResult{ImagePresent(img)}, testInput())
	s := d.Slides[1]

	title, _ := s.Box(RoleTitle)
	if p := title.Paragraphs[0]; p.Text != "Evaporation" || p.Size != 32 || !p.Bold || !p.Underline {
		t.Errorf("Unexpected content title %+v", p)
	}

	body, _ := s.Box(RoleBody)
	if len(body.Paragraphs) != 2 || body.Paragraphs[0].Size != 26 || body.Paragraphs[0].LineSpacing != 32 {
		t.Errorf("Unexpected body %+v", body.Paragraphs)
	}

	footer, ok := s.Box(RoleFooter)
	if !ok || footer.Paragraphs[0].Text != "Generated by AI Slide Generator" || footer.Paragraphs[0].Size != 12 {
		t.Errorf("Unexpected footer %+v", footer)
	}

	if s.Picture == nil {
		t.Fatal("Expected picture")
	}
	if s.Picture.Rect.X != SlideWidth-int64(float64(SlideWidth)*0.35) {
		t.Errorf("Expected picture in right-hand column, got x=%d", s.Picture.Rect.X)
	}
	if s.Picture.Rect.X < body.Rect.X+body.Rect.W {
		t.Error("Picture overlaps the bullet column")
	}
}

func TestAssemble_ImageAbsent(t *testing.T) {
	reason := errors.New("unsplash returned 403")
	slides := []RawSlide{{Title: "Cover"}, {Title: "A"}, {Title: "B"}}

	d := Assemble(slides, []ImageResult{ImageAbsent(reason)}, testInput())

	if d.Slides[1].Picture != nil || !errors.Is(d.Slides[1].ImageReason, reason) {
		t.Errorf("Expected slide 1 without image and with reason, got %+v", d.Slides[1])
	}
	if d.Slides[2].Picture != nil || d.Slides[2].ImageReason == nil {
		t.Errorf("Expected slide 2 without image, got %+v", d.Slides[2])
	}
}

func TestAssemble_DegenerateRecord(t *testing.T) {
	d := Assemble(ParseSlides("no markers here"), nil, testInput())
	if len(d.Slides) != 1 {
		t.Fatalf("Expected 1 slide, got %d", len(d.Slides))
	}
	title, _ := d.Slides[0].Box(RoleTitle)
	if title.Paragraphs[0].Text != "" {
		t.Errorf("Expected blank title, got %q", title.Paragraphs[0].Text)
	}

	d = Assemble([]RawSlide{{}, {}}, nil, testInput())
	body, _ := d.Slides[1].Box(RoleBody)
	if len(body.Paragraphs) != 0 {
		t.Errorf("Expected zero bullets, got %d", len(body.Paragraphs))
	}

	d = Assemble(nil, nil, testInput())
	if len(d.Slides) != 1 {
		t.Errorf("Expected a blank cover for empty input, got %d slides", len(d.Slides))
	}
}

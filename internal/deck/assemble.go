package deck

import "unicode/utf8"

// Geometry is in EMU. The slide size matches GoPPT's default 16:9 layout.
const (
	EMUPerInch  int64 = 914400
	SlideWidth        = 10 * EMUPerInch
	SlideHeight       = EMUPerInch * 45 / 8
)

const (
	MaxBullets         = 6
	MaxSubtitleRunes   = 250
	lineSpacingOffset  = 6
	contentTitleSize   = 32
	subtitleSize       = 22
	footerSize         = 12
	textWidthFraction  = 0.60
	imageWidthFraction = 0.35
)

type BoxRole int

const (
	RoleTitle BoxRole = iota
	RoleSubtitle
	RoleBody
	RoleFooter
)

type Rect struct {
	X, Y, W, H int64
}

type Paragraph struct {
	Text        string
	Size        int
	Bold        bool
	Underline   bool
	LineSpacing int
}

type TextBox struct {
	Role       BoxRole
	Rect       Rect
	Paragraphs []Paragraph
}

type Picture struct {
	Rect  Rect
	Image *Image
}

type SlideLayout struct {
	Boxes   []TextBox
	Picture *Picture
	// ImageReason is set when a content slide was rendered without its image.
	ImageReason error
}

// Box returns the first text box with the given role.
func (s SlideLayout) Box(role BoxRole) (TextBox, bool) {
	for _, b := range s.Boxes {
		if b.Role == role {
			return b, true
		}
	}
	return TextBox{}, false
}

// Deck is the in-memory layout of one presentation.
type Deck struct {
	Filename string
	Title    string
	Theme    Theme
	Width    int64
	Height   int64
	Slides   []SlideLayout
}

type AssembleInput struct {
	Grade   int
	Subject string
	Topic   string
	Theme   Theme
	Footer  string
}

// TitleSize picks the cover title point size from the title length.
func TitleSize(title string) int {
	switch n := utf8.RuneCountInString(title); {
	case n > 100:
		return 24
	case n > 60:
		return 28
	default:
		return 36
	}
}

// BulletSize picks the body point size from the number of bullets produced,
// before the MaxBullets cap is applied.
func BulletSize(count int) int {
	switch {
	case count <= 4:
		return 26
	case count <= 6:
		return 22
	default:
		return 18
	}
}

// Assemble lays out a cover slide from slides[0] and one content slide for each
// remaining record. images[i] belongs to slides[i+1]; a missing entry means no image.
func Assemble(slides []RawSlide, images []ImageResult, in AssembleInput) *Deck {
	d := &Deck{
		Filename: Filename(in.Grade, in.Subject, in.Topic),
		Theme:    in.Theme,
		Width:    SlideWidth,
		Height:   SlideHeight,
	}
	if len(slides) == 0 {
		slides = []RawSlide{{}}
	}

	d.Title = slides[0].Title
	d.Slides = append(d.Slides, titleSlide(slides[0], d.Width))

	for i, s := range slides[1:] {
		var img ImageResult
		if i < len(images) {
			img = images[i]
		} else {
			img = ImageAbsent(errNotFetched)
		}
		d.Slides = append(d.Slides, contentSlide(s, img, in.Footer, d.Width, d.Height))
	}
	return d
}

func titleSlide(s RawSlide, width int64) SlideLayout {
	layout := SlideLayout{
		Boxes: []TextBox{{
			Role: RoleTitle,
			Rect: Rect{X: EMUPerInch, Y: inches(1.5), W: width - 2*EMUPerInch, H: 2 * EMUPerInch},
			Paragraphs: []Paragraph{{
				Text: s.Title,
				Size: TitleSize(s.Title),
				Bold: true,
			}},
		}},
	}

	if len(s.Content) > 0 {
		layout.Boxes = append(layout.Boxes, TextBox{
			Role:       RoleSubtitle,
			Rect:       Rect{X: EMUPerInch, Y: inches(3.5), W: width - 2*EMUPerInch, H: 2 * EMUPerInch},
			Paragraphs: []Paragraph{{Text: truncateRunes(s.Content[0], MaxSubtitleRunes), Size: subtitleSize}},
		})
	}
	return layout
}

func contentSlide(s RawSlide, img ImageResult, footer string, width, height int64) SlideLayout {
	margin := inches(0.4)
	textWidth := int64(float64(width) * textWidthFraction)
	imageWidth := int64(float64(width) * imageWidthFraction)

	bullets := SplitIntoBullets(s.Content)
	size := BulletSize(len(bullets))
	if len(bullets) > MaxBullets {
		bullets = bullets[:MaxBullets]
	}

	body := TextBox{
		Role: RoleBody,
		Rect: Rect{X: margin, Y: inches(1.2), W: textWidth - margin, H: height - inches(1.7)},
	}
	for _, b := range bullets {
		body.Paragraphs = append(body.Paragraphs, Paragraph{
			Text:        string(b),
			Size:        size,
			LineSpacing: size + lineSpacingOffset,
		})
	}

	layout := SlideLayout{
		Boxes: []TextBox{
			{
				Role: RoleTitle,
				Rect: Rect{X: margin, Y: inches(0.3), W: textWidth - margin, H: EMUPerInch},
				Paragraphs: []Paragraph{{
					Text:      s.Title,
					Size:      contentTitleSize,
					Bold:      true,
					Underline: true,
				}},
			},
			body,
			{
				Role:       RoleFooter,
				Rect:       Rect{X: margin, Y: height - inches(0.5), W: width - 2*margin, H: inches(0.5)},
				Paragraphs: []Paragraph{{Text: footer, Size: footerSize}},
			},
		},
	}

	if img.Present() {
		layout.Picture = &Picture{
			Rect:  Rect{X: width - imageWidth, Y: inches(1.2), W: imageWidth - margin, H: height - inches(1.7)},
			Image: img.Image,
		}
	} else {
		layout.ImageReason = img.Reason
	}
	return layout
}

func inches(n float64) int64 {
	return int64(n * float64(EMUPerInch))
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

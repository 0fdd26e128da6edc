package deck

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	ppt "github.com/VantageDataChat/GoPPT"
)

// GoPPT stores paragraph line spacing in hundredths of a point.
const hundredthsPerPoint = 100

// Renderer serializes a Deck layout to PPTX with GoPPT.
type Renderer struct {
	Creator string
}

func NewRenderer(creator string) *Renderer {
	return &Renderer{Creator: creator}
}

func (r *Renderer) Render(d *Deck, w io.Writer) error {
	p := ppt.New()
	p.GetDocumentProperties().Title = d.Title
	p.GetDocumentProperties().Creator = r.Creator

	for i, layout := range d.Slides {
		var slide *ppt.Slide
		if i == 0 {
			slide = p.GetActiveSlide()
		} else {
			slide = p.CreateSlide()
		}
		r.renderSlide(slide, layout, d)
	}

	writer, err := ppt.NewWriter(p, ppt.WriterPowerPoint2007)
	if err != nil {
		return fmt.Errorf("failed to create pptx writer: %w", err)
	}
	pw, ok := writer.(*ppt.PPTXWriter)
	if !ok {
		return fmt.Errorf("unexpected writer type %T", writer)
	}
	if err := pw.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write pptx: %w", err)
	}
	return nil
}

// WriteFile renders into a temporary file in dir and renames it to d.Filename,
// so a failed render never leaves a file at the final path.
func (r *Renderer) WriteFile(d *Deck, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".slidegen-*"+FileExtension)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	bw := bufio.NewWriter(tmp)
	if err := r.Render(d, bw); err != nil {
		tmp.Close()
		return "", err
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to flush %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}

	final := filepath.Join(dir, d.Filename)
	if err := os.Rename(tmpPath, final); err != nil {
		return "", fmt.Errorf("failed to move deck into place: %w", err)
	}
	return final, nil
}

func (r *Renderer) renderSlide(slide *ppt.Slide, layout SlideLayout, d *Deck) {
	slide.SetBackground(ppt.NewFill().SetSolid(ppt.NewColor(argb(d.Theme.Background))))

	for _, box := range layout.Boxes {
		renderTextBox(slide, box, d.Theme)
	}

	if pic := layout.Picture; pic != nil {
		img := slide.CreateDrawingShape()
		img.SetImageData(pic.Image.Data, pic.Image.MimeType)
		img.SetOffsetX(pic.Rect.X).SetOffsetY(pic.Rect.Y)
		img.SetWidth(pic.Rect.W).SetHeight(pic.Rect.H)
	}
}

func renderTextBox(slide *ppt.Slide, box TextBox, theme Theme) {
	shape := slide.CreateRichTextShape()
	shape.SetOffsetX(box.Rect.X).SetOffsetY(box.Rect.Y)
	shape.SetWidth(box.Rect.W).SetHeight(box.Rect.H)

	for i, para := range box.Paragraphs {
		if i > 0 {
			shape.CreateParagraph()
		}
		run := shape.CreateTextRun(para.Text)
		font := run.GetFont()
		font.SetSize(para.Size).SetBold(para.Bold).SetColor(ppt.NewColor(argb(theme.Foreground)))
		font.SetName(theme.Font)
		if para.Underline {
			font.SetUnderline(ppt.UnderlineSingle)
		}

		active := shape.GetActiveParagraph()
		alignParagraph(active, theme.Align)
		if para.LineSpacing > 0 {
			active.SetLineSpacing(para.LineSpacing * hundredthsPerPoint)
		}
	}
}

func alignParagraph(p *ppt.Paragraph, a Align) {
	if a == AlignRight {
		p.SetAlignment(ppt.NewAlignment().SetHorizontal(ppt.HorizontalRight))
		return
	}
	p.SetAlignment(ppt.NewAlignment().SetHorizontal(ppt.HorizontalLeft))
}

func argb(c RGB) string {
	return "FF" + c.Hex()
}

// SlideText is the visible text of one slide, read back from a PPTX file.
type SlideText struct {
	Lines []string
}

// ReadSlideTexts opens a PPTX file and returns the non-empty text of each slide.
func ReadSlideTexts(path string) ([]SlideText, error) {
	reader := &ppt.PPTXReader{}
	pres, err := reader.Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	var out []SlideText
	for _, slide := range pres.GetAllSlides() {
		var st SlideText
		for _, shape := range slide.GetShapes() {
			rts, ok := shape.(*ppt.RichTextShape)
			if !ok {
				continue
			}
			for _, para := range rts.GetParagraphs() {
				var text strings.Builder
				for _, elem := range para.GetElements() {
					if run, ok := elem.(*ppt.TextRun); ok {
						text.WriteString(run.GetText())
					}
				}
				if s := strings.TrimSpace(text.String()); s != "" {
					st.Lines = append(st.Lines, s)
				}
			}
		}
		out = append(out, st)
	}
	return out, nil
}

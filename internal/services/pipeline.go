package services

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"slidegen-backend/internal/config"
	"slidegen-backend/internal/deck"
	"slidegen-backend/internal/models"
	"slidegen-backend/internal/pkg/logger"
)

type SlideGenerator interface {
	GenerateSlides(ctx context.Context, req models.SlideContentRequest) (string, error)
}

type ImageFetcher interface {
	FetchImage(ctx context.Context, query, language string) deck.ImageResult
}

// ProgressFunc receives coarse pipeline steps, numbered from 1.
type ProgressFunc func(step int, name string)

const (
	StepGenerating = iota + 1
	StepParsing
	StepFetchingImages
	StepBuilding
)

type DeckResult struct {
	Filename   string
	Path       string
	SlideCount int
	Theme      deck.Theme
	Images     []deck.ImageResult
	Degenerate bool
}

// ImagesFound counts content slides that received a picture.
func (r *DeckResult) ImagesFound() int {
	n := 0
	for _, img := range r.Images {
		if img.Present() {
			n++
		}
	}
	return n
}

type DeckPipeline struct {
	cfg       *config.Config
	generator SlideGenerator
	images    ImageFetcher
	themes    *deck.ThemeSelector
	renderer  *deck.Renderer
	log       *logger.Logger
}

// NewDeckPipeline wires the generation steps. images may be nil to skip pictures.
func NewDeckPipeline(cfg *config.Config, generator SlideGenerator, images ImageFetcher, themes *deck.ThemeSelector, log *logger.Logger) *DeckPipeline {
	return &DeckPipeline{
		cfg:       cfg,
		generator: generator,
		images:    images,
		themes:    themes,
		renderer:  deck.NewRenderer("AI Slide Generator"),
		log:       log,
	}
}

// Validate normalizes req and checks it against the configured slide range.
func (p *DeckPipeline) Validate(req models.SlideContentRequest) (models.SlideContentRequest, error) {
	req = req.Normalized(p.cfg.DefaultSlides)
	if fields := req.Validate(p.cfg.MinSlides, p.cfg.MaxSlides); len(fields) > 0 {
		return req, &ValidationError{Fields: fields}
	}
	return req, nil
}

// Generate runs one request end to end and writes the deck into dir.
func (p *DeckPipeline) Generate(ctx context.Context, req models.SlideContentRequest, dir string, progress ProgressFunc) (*DeckResult, error) {
	if progress == nil {
		progress = func(int, string) {}
	}

	req, err := p.Validate(req)
	if err != nil {
		return nil, err
	}
	log := p.log.With("subject", req.Subject, "topic", req.Topic, "grade", req.Grade, "language", req.Language)

	progress(StepGenerating, "Generating slide content")
	raw, err := p.generator.GenerateSlides(ctx, req)
	if err != nil {
		log.Error("Slide generation failed", "error", err)
		return nil, err
	}

	progress(StepParsing, "Parsing slides")
	slides := deck.ParseSlides(raw)
	degenerate := deck.IsDegenerate(raw)
	if degenerate {
		log.Warn("Generated text has no slide markers, building a single-slide deck")
	}

	theme := p.themes.Select(req.Language)

	progress(StepFetchingImages, "Fetching images")
	images := p.fetchImages(ctx, slides, req.Subject, req.Language, log)

	progress(StepBuilding, "Building presentation")
	d := deck.Assemble(slides, images, deck.AssembleInput{
		Grade:   req.Grade,
		Subject: req.Subject,
		Topic:   req.Topic,
		Theme:   theme,
		Footer:  p.themes.Footer(req.Language),
	})

	path, err := p.renderer.WriteFile(d, dir)
	if err != nil {
		log.Error("Failed to write presentation", "error", err)
		return nil, fmt.Errorf("failed to save presentation: %w", err)
	}

	result := &DeckResult{
		Filename:   d.Filename,
		Path:       path,
		SlideCount: len(d.Slides),
		Theme:      theme,
		Images:     images,
		Degenerate: degenerate,
	}
	log.Info("Presentation generated", "file", path, "slides", result.SlideCount, "images", result.ImagesFound())
	return result, nil
}

// fetchImages looks up one picture per content slide on a bounded pool. Result i
// belongs to slides[i+1] regardless of completion order.
func (p *DeckPipeline) fetchImages(ctx context.Context, slides []deck.RawSlide, subject, language string, log *logger.Logger) []deck.ImageResult {
	if len(slides) < 2 {
		return nil
	}
	results := make([]deck.ImageResult, len(slides)-1)
	if p.images == nil {
		for i := range results {
			results[i] = deck.ImageAbsent(ErrImagesDisabled)
		}
		return results
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, p.cfg.ImageWorkers))

	for i, s := range slides[1:] {
		query := strings.TrimSpace(subject + " " + s.Title)
		g.Go(func() error {
			results[i] = p.images.FetchImage(gctx, query, language)
			return nil
		})
	}
	g.Wait()

	for i, r := range results {
		if !r.Present() {
			log.Warn("Slide rendered without image", "slide", i+2, "reason", r.Reason)
		}
	}
	return results
}

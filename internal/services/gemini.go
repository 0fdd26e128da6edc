package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"slidegen-backend/internal/config"
	"slidegen-backend/internal/models"
	"slidegen-backend/internal/pkg/logger"
)

// textModel is the subset of *genai.GenerativeModel used here.
type textModel interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type GeminiService struct {
	client    *genai.Client
	model     textModel
	modelName string
	log       *logger.Logger
	rateChan  chan struct{} // Token bucket
}

func NewGeminiService(ctx context.Context, cfg *config.Config, log *logger.Logger) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.GeminiModel)
	model.SetTemperature(float32(cfg.GeminiTemperature))

	s := newGeminiService(model, cfg.GeminiConcurrentReqs, log)
	s.client = client
	s.modelName = cfg.GeminiModel
	return s, nil
}

func newGeminiService(model textModel, concurrentReqs int, log *logger.Logger) *GeminiService {
	if concurrentReqs < 1 {
		concurrentReqs = 1
	}
	// Token bucket for rate limiting
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}
	return &GeminiService{model: model, log: log, rateChan: rateChan}
}

func (s *GeminiService) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// acquireRate blocks until a rate slot is available
func (s *GeminiService) acquireRate(ctx context.Context) error {
	select {
	case <-s.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (s *GeminiService) releaseRate() {
	s.rateChan <- struct{}{}
}

// GenerateSlides asks the model for slide text in the "SLIDE n: Title" format.
// Any failure is returned as *GenerationError.
func (s *GeminiService) GenerateSlides(ctx context.Context, req models.SlideContentRequest) (string, error) {
	text, err := s.complete(ctx, buildSlidesPrompt(req))
	if err != nil {
		return "", &GenerationError{Err: err}
	}
	return text, nil
}

// Translate renders text from sourceLanguage into English for image search.
func (s *GeminiService) Translate(ctx context.Context, text, sourceLanguage string) (string, error) {
	out, err := s.complete(ctx, buildTranslatePrompt(text, sourceLanguage))
	if err != nil {
		return "", err
	}
	out = strings.Trim(strings.TrimSpace(out), `"'`)
	if out == "" {
		return "", errors.New("empty translation")
	}
	return out, nil
}

func (s *GeminiService) complete(ctx context.Context, prompt string) (string, error) {
	if err := s.acquireRate(ctx); err != nil {
		return "", err
	}
	defer s.releaseRate()

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop && cand.FinishReason != genai.FinishReasonUnspecified {
			s.log.Warn("Gemini stopped early", "candidate", i, "finish_reason", cand.FinishReason.String(), "model", s.modelName)
		}
	}

	text := extractText(resp)
	if strings.TrimSpace(text) == "" {
		return "", errors.New("Gemini returned an empty response")
	}
	return text, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

func buildSlidesPrompt(req models.SlideContentRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Create a %d-slide PowerPoint presentation for a %dth grade %s class on the topic \"%s\".\n",
		req.Pages, req.Grade, req.Subject, req.Topic)
	fmt.Fprintf(&b, "Use only formal, culturally accurate, and age-appropriate %s language.\n", req.Language)
	fmt.Fprintf(&b, "Do not mix English with %s. No Roman script or SMS-style writing.\n", req.Language)
	b.WriteString(`Each slide should include:
- A meaningful, localized title (bold and underlined using **<u>Title</u>** format).
- 5-6 clear bullet points using (• or -), with examples or facts.
- Do not write paragraphs, just concise bullet points.
- Avoid any unrelated historical figures or general knowledge.
Respond exactly in this format:

SLIDE 1: [Title]
[• Bullet or - Bullet or sentence]

SLIDE 2: [Title]
[• Bullet]
[...]`)

	return b.String()
}

func buildTranslatePrompt(text, sourceLanguage string) string {
	return fmt.Sprintf("Translate the following %s text to English. Reply with the translation only, no quotes or explanation.\n\n%s",
		sourceLanguage, text)
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"slidegen-backend/internal/config"
	"slidegen-backend/internal/deck"
	"slidegen-backend/internal/pkg/logger"
)

const maxImageBytes = 10 << 20

var ErrImagesDisabled = errors.New("image search disabled: UNSPLASH_ACCESS_KEY not set")

type Translator interface {
	Translate(ctx context.Context, text, sourceLanguage string) (string, error)
}

type UnsplashClient struct {
	baseURL    string
	accessKey  string
	http       *http.Client
	translator Translator
	log        *logger.Logger
}

// NewUnsplashClient returns a client for the random-photo endpoint. translator may
// be nil, in which case queries are sent untranslated.
func NewUnsplashClient(cfg *config.Config, translator Translator, log *logger.Logger) *UnsplashClient {
	return &UnsplashClient{
		baseURL:    strings.TrimRight(cfg.UnsplashBaseURL, "/"),
		accessKey:  cfg.UnsplashAccessKey,
		http:       &http.Client{Timeout: cfg.HTTPTimeout()},
		translator: translator,
		log:        log,
	}
}

// FetchImage looks up one landscape photo for query. Failures are reported in the
// result, never as a panic or sentinel.
func (c *UnsplashClient) FetchImage(ctx context.Context, query, language string) deck.ImageResult {
	if c.accessKey == "" {
		return deck.ImageAbsent(ErrImagesDisabled)
	}

	term := c.searchTerm(ctx, query, language)

	imageURL, err := c.randomPhotoURL(ctx, term)
	if err != nil {
		return deck.ImageAbsent(err)
	}

	img, err := c.download(ctx, imageURL)
	if err != nil {
		return deck.ImageAbsent(err)
	}
	return deck.ImagePresent(img)
}

// searchTerm translates non-English queries, keeping the original on failure.
func (c *UnsplashClient) searchTerm(ctx context.Context, query, language string) string {
	if c.translator == nil || deck.LanguageKey(language) == "english" || deck.LanguageKey(language) == "" {
		return query
	}
	translated, err := c.translator.Translate(ctx, query, language)
	if err != nil {
		c.log.Warn("Translation failed, searching with original query", "query", query, "language", language, "error", err)
		return query
	}
	return translated
}

func (c *UnsplashClient) randomPhotoURL(ctx context.Context, term string) (string, error) {
	params := url.Values{}
	params.Set("query", term)
	params.Set("orientation", "landscape")
	params.Set("client_id", c.accessKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/photos/random?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build Unsplash request: %w", err)
	}
	req.Header.Set("Accept-Version", "v1")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("Unsplash request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("Unsplash returned status %d", resp.StatusCode)
	}

	var photo struct {
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&photo); err != nil {
		return "", fmt.Errorf("failed to decode Unsplash response: %w", err)
	}
	if photo.URLs.Regular == "" {
		return "", errors.New("Unsplash response has no image URL")
	}
	return photo.URLs.Regular, nil
}

func (c *UnsplashClient) download(ctx context.Context, imageURL string) (*deck.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build image request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("image download was empty")
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}

	mimeType := resp.Header.Get("Content-Type")
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(data)
	}

	return &deck.Image{Data: data, MimeType: mimeType, Source: imageURL}, nil
}

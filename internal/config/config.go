package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port    string `mapstructure:"port"`
	Env     string `mapstructure:"env"`
	LogMode string `mapstructure:"log_mode"`

	// Database
	DatabaseURL string `mapstructure:"database_url"`

	// Redis
	RedisURL string `mapstructure:"redis_url"`

	// JWT
	JWTSecret string `mapstructure:"jwt_secret"`

	// Gemini AI
	GeminiAPIKey         string  `mapstructure:"gemini_api_key"`
	GeminiModel          string  `mapstructure:"gemini_model"`
	GeminiTemperature    float64 `mapstructure:"gemini_temperature"`
	GeminiConcurrentReqs int     `mapstructure:"gemini_concurrent_requests"`

	// Unsplash
	UnsplashAccessKey  string `mapstructure:"unsplash_access_key"`
	UnsplashBaseURL    string `mapstructure:"unsplash_base_url"`
	ImageWorkers       int    `mapstructure:"image_workers"`
	HTTPTimeoutSeconds int    `mapstructure:"http_timeout_seconds"`

	// Storage
	StorageType          string `mapstructure:"storage_type"`
	StoragePath          string `mapstructure:"storage_path"`
	StorageBucket        string `mapstructure:"storage_bucket"`
	StoragePublicBaseURL string `mapstructure:"storage_public_base_url"`
	GCSCredentialsFile   string `mapstructure:"gcs_credentials_file"`
	OutputDir            string `mapstructure:"output_dir"`

	// Deck generation
	MinSlides     int `mapstructure:"min_slides"`
	MaxSlides     int `mapstructure:"max_slides"`
	DefaultSlides int `mapstructure:"default_slides"`
	WorkerCount   int `mapstructure:"worker_count"`

	// Frontend
	FrontendURL string `mapstructure:"frontend_url"`

	Theme ThemeConfig `mapstructure:"theme"`
}

// ThemeConfig holds the palette and per-language tables used for every deck.
type ThemeConfig struct {
	Palette       []string          `mapstructure:"palette"`
	Fonts         map[string]string `mapstructure:"fonts"`
	FallbackFonts []string          `mapstructure:"fallback_fonts"`
	Footers       map[string]string `mapstructure:"footers"`
	DefaultFooter string            `mapstructure:"default_footer"`
	RTLLanguage   string            `mapstructure:"rtl_language"`
}

var envMappings = []struct {
	key, env string
}{
	{"port", "PORT"},
	{"env", "ENV"},
	{"log_mode", "LOG_MODE"},
	{"database_url", "DATABASE_URL"},
	{"redis_url", "REDIS_URL"},
	{"jwt_secret", "JWT_SECRET"},
	{"gemini_api_key", "GEMINI_API_KEY"},
	{"gemini_model", "GEMINI_MODEL"},
	{"gemini_temperature", "GEMINI_TEMPERATURE"},
	{"gemini_concurrent_requests", "GEMINI_CONCURRENT_REQUESTS"},
	{"unsplash_access_key", "UNSPLASH_ACCESS_KEY"},
	{"unsplash_base_url", "UNSPLASH_BASE_URL"},
	{"image_workers", "IMAGE_WORKERS"},
	{"http_timeout_seconds", "HTTP_TIMEOUT_SECONDS"},
	{"storage_type", "STORAGE_TYPE"},
	{"storage_path", "STORAGE_PATH"},
	{"storage_bucket", "STORAGE_BUCKET"},
	{"storage_public_base_url", "STORAGE_PUBLIC_BASE_URL"},
	{"gcs_credentials_file", "GCS_CREDENTIALS_FILE"},
	{"output_dir", "OUTPUT_DIR"},
	{"min_slides", "MIN_SLIDES"},
	{"max_slides", "MAX_SLIDES"},
	{"default_slides", "DEFAULT_SLIDES"},
	{"worker_count", "WORKER_COUNT"},
	{"frontend_url", "FRONTEND_URL"},

	// Theme
	{"theme.palette", "THEME_PALETTE"},
	{"theme.fallback_fonts", "THEME_FALLBACK_FONTS"},
	{"theme.default_footer", "THEME_DEFAULT_FOOTER"},
	{"theme.rtl_language", "THEME_RTL_LANGUAGE"},
}

// Load reads .env, the optional YAML file named by CONFIG_FILE (default config.yaml)
// and the process environment, in increasing order of precedence.
func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for _, m := range envMappings {
		if err := v.BindEnv(m.key, m.env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", m.env, err)
		}
	}
	setDefaults(v)

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
	}
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else if os.Getenv("CONFIG_FILE") != "" {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.normalize()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("env", "development")
	v.SetDefault("log_mode", "development")
	v.SetDefault("gemini_model", "gemini-2.0-flash")
	v.SetDefault("gemini_temperature", 0.7)
	v.SetDefault("gemini_concurrent_requests", 5)
	v.SetDefault("unsplash_base_url", "https://api.unsplash.com")
	v.SetDefault("image_workers", 4)
	v.SetDefault("http_timeout_seconds", 30)
	v.SetDefault("storage_type", "local")
	v.SetDefault("storage_path", "./uploads")
	v.SetDefault("storage_bucket", "generated-ppt")
	v.SetDefault("output_dir", os.TempDir())
	v.SetDefault("min_slides", 3)
	v.SetDefault("max_slides", 10)
	v.SetDefault("default_slides", 5)
	v.SetDefault("worker_count", 2)
	v.SetDefault("frontend_url", "http://localhost:5173")

	v.SetDefault("theme.palette", []string{
		"2ECC71", "3498DB", "9B59B6", "F1C40F",
		"E67E22", "E74C3C", "95A5A6", "34495E",
	})
	v.SetDefault("theme.fonts", map[string]string{
		"urdu":    "Jameel Noori Nastaleeq",
		"marathi": "Mangal",
		"hindi":   "Mangal",
		"english": "Calibri",
	})
	v.SetDefault("theme.fallback_fonts", []string{"Georgia", "Garamond", "Trebuchet MS", "Segoe UI", "Calibri"})
	v.SetDefault("theme.footers", map[string]string{
		"english": "Generated by AI Slide Generator",
		"hindi":   "एआई स्लाइड जेनरेटर द्वारा निर्मित",
		"marathi": "एआय स्लाइड जनरेटर द्वारे तयार केले",
		"urdu":    "اے آئی سلائیڈ جنریٹر کے ذریعہ تیار کردہ",
	})
	v.SetDefault("theme.default_footer", "Generated by AI Slide Generator")
	v.SetDefault("theme.rtl_language", "urdu")
}

func (c *Config) normalize() {
	c.StorageType = strings.ToLower(strings.TrimSpace(c.StorageType))
	c.Theme.Palette = splitList(c.Theme.Palette)
	c.Theme.FallbackFonts = splitList(c.Theme.FallbackFonts)
	c.Theme.RTLLanguage = strings.ToLower(strings.TrimSpace(c.Theme.RTLLanguage))
	if c.ImageWorkers < 1 {
		c.ImageWorkers = 1
	}
	if c.GeminiConcurrentReqs < 1 {
		c.GeminiConcurrentReqs = 1
	}
	if c.WorkerCount < 1 {
		c.WorkerCount = 1
	}
}

func (c *Config) validate() error {
	if c.MinSlides < 1 || c.MaxSlides < c.MinSlides {
		return fmt.Errorf("invalid slide range %d-%d", c.MinSlides, c.MaxSlides)
	}
	if c.DefaultSlides < c.MinSlides || c.DefaultSlides > c.MaxSlides {
		return fmt.Errorf("default slide count %d outside %d-%d", c.DefaultSlides, c.MinSlides, c.MaxSlides)
	}
	if len(c.Theme.Palette) == 0 {
		return errors.New("theme palette is empty")
	}
	if len(c.Theme.FallbackFonts) == 0 {
		return errors.New("theme fallback font list is empty")
	}
	switch c.StorageType {
	case "local", "gcs":
	default:
		return fmt.Errorf("unsupported STORAGE_TYPE %q", c.StorageType)
	}
	return nil
}

// RequireGenerator reports missing settings needed to run the deck pipeline.
func (c *Config) RequireGenerator() error {
	return requireSet(map[string]string{
		"GEMINI_API_KEY": c.GeminiAPIKey,
	})
}

// RequireServer reports missing settings needed by the HTTP service.
func (c *Config) RequireServer() error {
	if err := c.RequireGenerator(); err != nil {
		return err
	}
	return requireSet(map[string]string{
		"DATABASE_URL": c.DatabaseURL,
		"REDIS_URL":    c.RedisURL,
		"JWT_SECRET":   c.JWTSecret,
	})
}

func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func requireSet(vals map[string]string) error {
	var missing []string
	for key, val := range vals {
		if strings.TrimSpace(val) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	slices.Sort(missing)
	return fmt.Errorf("required environment variables not set: %s", strings.Join(missing, ", "))
}

// splitList accepts both YAML lists and comma-separated env values.
func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

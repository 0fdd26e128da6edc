package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"slidegen-backend/internal/config"
	"slidegen-backend/internal/deck"
	"slidegen-backend/internal/models"
	"slidegen-backend/internal/pkg/logger"
	"slidegen-backend/internal/services"
)

var stepNames = map[int]string{
	services.StepGenerating:     "Generating slide text",
	services.StepParsing:        "Parsing slides",
	services.StepFetchingImages: "Fetching images",
	services.StepBuilding:       "Building presentation",
}

type generateOptions struct {
	req     models.SlideContentRequest
	outDir  string
	verbose bool
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:          "slidegen",
		Short:        "Generate classroom slide decks from a topic",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(newGenerateCommand(&verbose))
	rootCmd.AddCommand(newInspectCommand())
	return rootCmd
}

func newGenerateCommand(verbose *bool) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a PPTX deck for one topic",
		Example: `  slidegen generate --grade 5 --subject Science --topic "Water Cycle" --pages 5
  slidegen generate --grade 8 --subject History --topic "Silk Road" --language Spanish --out ./decks`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.verbose = *verbose
			return runGenerate(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.req.Grade, "grade", "g", 0, "Grade level (required)")
	cmd.Flags().StringVarP(&opts.req.Subject, "subject", "s", "", "Subject, e.g. Science (required)")
	cmd.Flags().StringVarP(&opts.req.Topic, "topic", "t", "", "Lesson topic (required)")
	cmd.Flags().StringVarP(&opts.req.Language, "language", "l", models.DefaultLanguage, "Language of the slide text")
	cmd.Flags().IntVarP(&opts.req.Pages, "pages", "p", 0, "Total slides including the cover (0 uses the configured default)")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", ".", "Directory to write the deck into")
	_ = cmd.MarkFlagRequired("grade")
	_ = cmd.MarkFlagRequired("subject")
	_ = cmd.MarkFlagRequired("topic")
	return cmd
}

func runGenerate(cmd *cobra.Command, opts *generateOptions) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := cfg.RequireGenerator(); err != nil {
		return err
	}

	log := logger.Nop()
	if opts.verbose {
		if log, err = logger.New("development"); err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		defer log.Sync()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gemini, err := services.NewGeminiService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer gemini.Close()

	var images services.ImageFetcher
	if cfg.UnsplashAccessKey != "" {
		images = services.NewUnsplashClient(cfg, gemini, log)
	} else {
		fmt.Fprintln(cmd.ErrOrStderr(), "UNSPLASH_ACCESS_KEY not set, the deck will have no pictures")
	}

	themes, err := deck.NewThemeSelector(cfg.Theme, nil)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", opts.outDir, err)
	}

	pipeline := services.NewDeckPipeline(cfg, gemini, images, themes, log)
	progress := func(step int, name string) {
		label := stepNames[step]
		if label == "" {
			label = name
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] %s...\n", step, len(stepNames), label)
	}

	result, err := pipeline.Generate(ctx, opts.req, opts.outDir, progress)
	if err != nil {
		return err
	}

	printResult(cmd, result)
	return nil
}

func printResult(cmd *cobra.Command, result *services.DeckResult) {
	if result.Degenerate {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: model output had no slide separators, the deck has only a cover slide")
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Slides: %d, images: %d\n", result.SlideCount, result.ImagesFound())
	fmt.Fprintln(out, result.Path)
}

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE.pptx",
		Short: "Print the slide count and titles of a deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args[0])
		},
	}
}

func runInspect(cmd *cobra.Command, path string) error {
	texts, err := deck.ReadSlideTexts(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d slides\n", path, len(texts))
	for i, st := range texts {
		title := "(no text)"
		if len(st.Lines) > 0 {
			title = st.Lines[0]
		}
		fmt.Fprintf(out, "%3d  %s\n", i+1, title)
	}
	return nil
}

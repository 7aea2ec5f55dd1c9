package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/cv-tailor/internal/ai"
	"github.com/spigell/cv-tailor/internal/ai/gemini"
	"github.com/spigell/cv-tailor/internal/logger"
	"github.com/spigell/cv-tailor/internal/pipeline"
	"github.com/spigell/cv-tailor/internal/render"
	"github.com/spigell/cv-tailor/internal/secrets"
	"github.com/spigell/cv-tailor/internal/selection"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the cv-tailor main command",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("url", "u", "", "link to the job ad")
	runCmd.Flags().StringP("output", "o", "", "base name for the generated document")
	runCmd.Flags().String("data-dir", "", "directory with the career data files")
	runCmd.Flags().Bool("offline", false, "use deterministic placeholder content instead of the AI service")
	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before spending AI requests")
	runCmd.Flags().Bool("no-compile", false, "stop after writing the .tex file")

	viper.BindPFlag("url", runCmd.Flags().Lookup("url"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger = logger.With(zap.String("run_id", uuid.NewString()))
	logger.Info("starting cv-tailor", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	offline := flagBool(cmd, "offline") || (config.AI != nil && !config.AI.Enabled)

	url := firstNonEmpty(flagString(cmd, "url"), viper.GetString("url"))
	if url == "" && !offline {
		url, err = ask("Link to the job ad, please")
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
	}

	output := firstNonEmpty(flagString(cmd, "output"), config.Output)
	if output == "" {
		output, err = ask("What is the name of this report?")
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
	}

	dataDir := firstNonEmpty(flagString(cmd, "data-dir"), config.DataDir)

	opts := pipeline.Options{
		URL:       url,
		DataDir:   dataDir,
		Mode:      ai.ModeOffline,
		Selection: selectionParams(config.Selection),
		Logger:    logger,
	}

	if !offline {
		opts.Mode = ai.ModeLive

		synth, concurrency, err := newGeminiSynthesizer(ctx, config.AI, logger)
		if err != nil {
			logger.Fatal("building the AI synthesizer", zap.Error(err),
				zap.String("hint", "set ai.gemini.api-key-file or GEMINI_API_KEY_FILE, or pass --offline"),
			)
		}
		opts.Synthesizer = synth
		opts.Concurrency = concurrency

		if !flagBool(cmd, "auto-approve") {
			if !confirm(fmt.Sprintf("Tailor the CV for %s with live AI requests?", url)) {
				logger.Info("exiting", zap.String("reason", "got no from prompt"))
				return
			}
		}
	}

	rc, err := pipeline.Run(ctx, opts)
	if err != nil {
		logger.Fatal("tailoring failed", zap.Error(err))
	}

	texPath := output + ".tex"
	if err := render.WriteLaTeX(rc, config.Template, texPath); err != nil {
		logger.Fatal("writing the document", zap.Error(err))
	}

	logger.Info("document written", zap.String("path", texPath))

	if config.Compile && !flagBool(cmd, "no-compile") {
		if err := render.Compile(ctx, texPath); err != nil {
			logger.Fatal("compiling the document", zap.Error(err))
		}
		logger.Info("document compiled", zap.String("path", output+".pdf"))
	}
}

func newGeminiSynthesizer(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Synthesizer, int, error) {
	if cfg == nil || cfg.Gemini == nil {
		return nil, 0, fmt.Errorf("gemini configuration is required for live synthesis")
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, 0, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, 0, err
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, 0, err
	}

	synthLogger := logger.With(loggerFields(generator.Model())...)

	return gemini.NewSynthesizer(generator, cfg.Gemini.MaxRetries, cfg.Gemini.MaxLogLength, synthLogger), cfg.Concurrency, nil
}

func loggerFields(model string) []zap.Field {
	return logger.CommonAIFields("gemini", model)
}

func selectionParams(cfg *SelectionConfig) selection.Params {
	params := selection.DefaultParams()
	if cfg == nil {
		return params
	}
	if cfg.MaxJobs > 0 {
		params.MaxJobs = cfg.MaxJobs
	}
	if cfg.MaxStoriesPerJob > 0 {
		params.MaxStoriesPerJob = cfg.MaxStoriesPerJob
	}
	return params
}

func ask(label string) (string, error) {
	prompt := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return fmt.Errorf("value must not be empty")
			}
			return nil
		},
	}

	value, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

func confirm(label string) bool {
	prompt := promptui.Select{
		Label: label,
		Items: []string{PromptYes, PromptNo},
	}

	_, action, err := prompt.Run()
	if err != nil {
		return false
	}
	return action == PromptYes
}

func flagString(cmd *cobra.Command, name string) string {
	flag := cmd.Flag(name)
	if flag == nil {
		return ""
	}
	return flag.Value.String()
}

func flagBool(cmd *cobra.Command, name string) bool {
	flag := cmd.Flag(name)
	if flag == nil {
		return false
	}
	return strings.EqualFold(flag.Value.String(), "true")
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/slideshow/pkg/cli"
	"github.com/haivivi/slideshow/pkg/genx"
)

const appName = "slideshow"

var (
	// Global flags
	cfgFile     string
	contextName string
	outputFile  string
	inputFile   string
	outputJSON  bool
	verbose     bool

	// Global configuration
	globalConfig *cli.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "slideshow",
	Short: "Explain anything as an illustrated slideshow",
	Long: `slideshow - ask a question, get back a story of short captions, each
followed by an illustration, and export the whole thing as a zip archive.

Configuration is stored in ~/.giztoy/slideshow/ and supports multiple
contexts, similar to kubectl's context management. Without a context the
GEMINI_API_KEY or GOOGLE_API_KEY environment variable is used.

Examples:
  # Set up a context
  slideshow config add-context default --api-key YOUR_API_KEY

  # Generate in the terminal, writing slideshow.zip to the current directory
  slideshow generate "Explain how the tides work."

  # Serve the browser interface
  slideshow serve --addr :8080
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "", "", "config file (default is ~/.giztoy/slideshow/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&contextName, "context", "c", "", "context name to use")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "output file for --json/yaml results (default: stdout)")
	rootCmd.PersistentFlags().StringVarP(&inputFile, "file", "f", "", "input request file (YAML or JSON, - for stdin)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output as JSON (for piping)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(examplesCmd)
}

func initConfig() {
	var err error
	globalConfig, err = cli.LoadConfigWithPath(appName, cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing config: %v\n", err)
		os.Exit(1)
	}
}

// getConfig returns the global configuration
func getConfig() *cli.Config {
	return globalConfig
}

// getContext returns the context configuration to use
func getContext() (*cli.Context, error) {
	cfg := getConfig()
	if cfg == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}
	return cfg.ResolveContext(contextName)
}

// newGenerator creates the Gemini generator for the context.
func newGenerator(ctx context.Context, c *cli.Context) (*genx.GeminiGenerator, error) {
	apiKey := c.ResolveAPIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("no API key: use 'slideshow config add-context' or set GEMINI_API_KEY")
	}
	gen, err := genx.NewGeminiGenerator(ctx, apiKey, c.BaseURL, c.Model)
	if err != nil {
		return nil, err
	}
	gen.GenerateParams = generateParams(c)
	return gen, nil
}

// generateParams returns the sampling settings of the context, or nil when
// it leaves them all at the model default.
func generateParams(c *cli.Context) *genx.ModelParams {
	if c.Temperature == 0 && c.MaxTokens == 0 {
		return nil
	}
	return &genx.ModelParams{MaxTokens: c.MaxTokens, Temperature: c.Temperature}
}

// outputResult outputs the result using cli package
func outputResult(result any, outputPath string, asJSON bool) error {
	format := cli.FormatYAML
	if asJSON {
		format = cli.FormatJSON
	}
	return cli.Output(result, cli.OutputOptions{
		Format: format,
		File:   outputPath,
	})
}

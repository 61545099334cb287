package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/haivivi/slideshow/pkg/cli"
	"github.com/haivivi/slideshow/pkg/genx"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage CLI configuration",
	Long: `Manage CLI configuration and contexts.

Contexts allow you to manage multiple API keys, models and export
destinations, similar to kubectl's context management.

Configuration is stored in ~/.giztoy/slideshow/config.yaml`,
}

var configAddContextCmd = &cobra.Command{
	Use:   "add-context <name>",
	Short: "Add a new context",
	Long: `Add a new context with the specified name. The first context added
becomes the current one.

Example:
  slideshow config add-context default --api-key YOUR_API_KEY
  slideshow config add-context team --api-key KEY --export s3 --bucket decks --prefix exports --region us-west-2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		flags := cmd.Flags()

		apiKey, _ := flags.GetString("api-key")
		model, _ := flags.GetString("model")
		baseURL, _ := flags.GetString("base-url")
		timeout, _ := flags.GetInt("timeout")
		temperature, _ := flags.GetFloat32("temperature")
		maxTokens, _ := flags.GetInt("max-tokens")
		kind, _ := flags.GetString("export")
		dir, _ := flags.GetString("dir")
		bucket, _ := flags.GetString("bucket")
		prefix, _ := flags.GetString("prefix")
		region, _ := flags.GetString("region")

		ctx := &cli.Context{
			APIKey:  apiKey,
			Model:   model,
			BaseURL: baseURL,
			Timeout: timeout,

			Temperature: temperature,
			MaxTokens:   maxTokens,
		}
		if kind != "" || dir != "" || bucket != "" {
			ctx.Export = &cli.ExportConfig{
				Kind:   kind,
				Dir:    dir,
				Bucket: bucket,
				Prefix: prefix,
				Region: region,
			}
		}

		if err := getConfig().AddContext(name, ctx); err != nil {
			return err
		}
		cli.PrintSuccess("Context %q added successfully", name)
		if apiKey == "" {
			cli.PrintInfo("No API key stored; GEMINI_API_KEY or GOOGLE_API_KEY will be used")
		}
		return nil
	},
}

var configDeleteContextCmd = &cobra.Command{
	Use:   "delete-context <name>",
	Short: "Delete a context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := getConfig().DeleteContext(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess("Context %q deleted", args[0])
		return nil
	},
}

var configUseContextCmd = &cobra.Command{
	Use:   "use-context <name>",
	Short: "Set the current context",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := getConfig().UseContext(args[0]); err != nil {
			return err
		}
		cli.PrintSuccess("Switched to context %q", args[0])
		return nil
	},
}

var configGetContextCmd = &cobra.Command{
	Use:   "get-context",
	Short: "Display the current context",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		if cfg.CurrentContext == "" {
			fmt.Println("No current context set")
			return nil
		}
		fmt.Println(cfg.CurrentContext)
		return nil
	},
}

var configListContextsCmd = &cobra.Command{
	Use:     "get-contexts",
	Aliases: []string{"list-contexts"},
	Short:   "List all contexts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()
		if len(cfg.Contexts) == 0 {
			fmt.Println("No contexts configured")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CURRENT\tNAME\tMODEL\tEXPORT")
		for _, name := range cfg.ListContexts() {
			ctx := cfg.Contexts[name]
			current := ""
			if name == cfg.CurrentContext {
				current = "*"
			}
			model := ctx.Model
			if model == "" {
				model = genx.DefaultGeminiModel
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", current, name, model, exportSummary(ctx.ExportOrDefault()))
		}
		return w.Flush()
	},
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "View the current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfig()

		fmt.Printf("Config file: %s\n", cfg.Path())
		fmt.Printf("Current context: %s\n", cfg.CurrentContext)
		fmt.Printf("Contexts: %d\n", len(cfg.Contexts))

		for _, name := range cfg.ListContexts() {
			ctx := cfg.Contexts[name]
			fmt.Printf("\n  %s:\n", name)
			if ctx.APIKey != "" {
				fmt.Printf("    API Key: %s\n", cli.MaskAPIKey(ctx.APIKey))
			} else {
				fmt.Printf("    API Key: (from environment)\n")
			}
			if ctx.Model != "" {
				fmt.Printf("    Model: %s\n", ctx.Model)
			}
			if ctx.BaseURL != "" {
				fmt.Printf("    Base URL: %s\n", ctx.BaseURL)
			}
			if ctx.Timeout > 0 {
				fmt.Printf("    Timeout: %ds\n", ctx.Timeout)
			}
			if ctx.Temperature > 0 {
				fmt.Printf("    Temperature: %g\n", ctx.Temperature)
			}
			if ctx.MaxTokens > 0 {
				fmt.Printf("    Max tokens: %d\n", ctx.MaxTokens)
			}
			fmt.Printf("    Export: %s\n", exportSummary(ctx.ExportOrDefault()))
		}
		return nil
	},
}

func exportSummary(e cli.ExportConfig) string {
	if e.Kind == cli.ExportS3 {
		s := "s3://" + e.Bucket
		if e.Prefix != "" {
			s += "/" + e.Prefix
		}
		if e.Region != "" {
			s += " (" + e.Region + ")"
		}
		return s
	}
	return e.Dir
}

func init() {
	configAddContextCmd.Flags().String("api-key", "", "API key (default: GEMINI_API_KEY / GOOGLE_API_KEY)")
	configAddContextCmd.Flags().String("model", "", "model name (default: "+genx.DefaultGeminiModel+")")
	configAddContextCmd.Flags().String("base-url", "", "API base URL (optional)")
	configAddContextCmd.Flags().Int("timeout", 0, "request timeout in seconds (0: none)")
	configAddContextCmd.Flags().Float32("temperature", 0, "sampling temperature, 0 to 2 (0: model default)")
	configAddContextCmd.Flags().Int("max-tokens", 0, "maximum output tokens per request (0: model default)")
	configAddContextCmd.Flags().String("export", "", "export destination: local or s3")
	configAddContextCmd.Flags().String("dir", "", "local export directory (default: working directory)")
	configAddContextCmd.Flags().String("bucket", "", "S3 bucket")
	configAddContextCmd.Flags().String("prefix", "", "S3 key prefix")
	configAddContextCmd.Flags().String("region", "", "S3 region (default: from AWS environment)")

	configCmd.AddCommand(configAddContextCmd)
	configCmd.AddCommand(configDeleteContextCmd)
	configCmd.AddCommand(configUseContextCmd)
	configCmd.AddCommand(configGetContextCmd)
	configCmd.AddCommand(configListContextsCmd)
	configCmd.AddCommand(configViewCmd)
}

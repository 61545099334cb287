package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/haivivi/slideshow/pkg/cli"
	"github.com/haivivi/slideshow/pkg/slides"
	"github.com/haivivi/slideshow/pkg/slideshow"
	"github.com/haivivi/slideshow/pkg/storage"
)

// generateRequest is the shape of a -f request file.
type generateRequest struct {
	Text  string `json:"text" yaml:"text"`
	Model string `json:"model,omitempty" yaml:"model,omitempty"`
}

// slideSummary is one entry of the --json result.
type slideSummary struct {
	Index   int    `json:"index" yaml:"index"`
	Name    string `json:"name" yaml:"name"`
	Caption string `json:"caption" yaml:"caption"`
	Type    string `json:"mime_type" yaml:"mime_type"`
	Size    int    `json:"size" yaml:"size"`
}

type generateResult struct {
	Slides  []slideSummary `json:"slides" yaml:"slides"`
	Archive string         `json:"archive,omitempty" yaml:"archive,omitempty"`
	Elapsed string         `json:"elapsed" yaml:"elapsed"`
}

var generateCmd = &cobra.Command{
	Use:   "generate [text...]",
	Short: "Generate a slideshow in the terminal",
	Long: `Send a request, print each slide as it arrives, and write slideshow.zip
to the context's export destination.

The request comes from the arguments, a request file (-f) or an example
(--example N). A request file holds:

  text: Explain how the tides work.
  model: gemini-2.0-flash-exp   # optional

A .txt or .md file is sent as is.

Examples:
  slideshow generate "Explain how the tides work."
  slideshow generate --example 2 --no-export
  slideshow generate -f request.yaml --json > slides.json
  slideshow generate -f question.md`,
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	example, _ := flags.GetInt("example")
	noExport, _ := flags.GetBool("no-export")
	force, _ := flags.GetBool("force")
	timeout, _ := flags.GetDuration("timeout")
	width, _ := flags.GetInt("width")
	style, _ := flags.GetString("style")

	req, err := loadGenerateRequest(args, example)
	if err != nil {
		return err
	}

	cctx, err := getContext()
	if err != nil {
		return err
	}
	if timeout == 0 && cctx.Timeout > 0 {
		timeout = time.Duration(cctx.Timeout) * time.Second
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var store storage.FileStore
	if !noExport {
		store, err = openExportStore(ctx, cctx.ExportOrDefault())
		if err != nil {
			return err
		}
		if !force {
			exists, err := store.Exists(ctx, slides.ArchiveName)
			if err != nil {
				return fmt.Errorf("check %s: %w", store.Location(slides.ArchiveName), err)
			}
			if exists {
				return fmt.Errorf("%s already exists, use --force to overwrite or --no-export", store.Location(slides.ArchiveName))
			}
		}
	}

	gen, err := newGenerator(ctx, cctx)
	if err != nil {
		return err
	}

	summarize := outputJSON || outputFile != ""
	var renderer slideshow.Renderer = slideshow.Discard
	if !summarize {
		renderer, err = slideshow.NewTermRenderer(os.Stdout, slideshow.TermOptions{Width: width, Style: style})
		if err != nil {
			return err
		}
		cli.PrintInfo("%s", req.Text)
		fmt.Println()
	}

	session := slideshow.NewSession(gen, slideshow.Options{Model: req.Model})
	start := time.Now()
	if err := session.Generate(ctx, req.Text, renderer); err != nil {
		var re *slides.RequestError
		if errors.As(err, &re) {
			slog.Debug("generate: request failed", "error", err)
			return errors.New(re.Display())
		}
		return err
	}
	elapsed := time.Since(start)

	list, err := session.Slides(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		cli.PrintWarning("The response contained no complete slides")
	}

	result := generateResult{Elapsed: cli.FormatDuration(elapsed)}
	for _, s := range list {
		result.Slides = append(result.Slides, slideSummary{
			Index:   s.Index,
			Name:    s.ImageName,
			Caption: s.Caption,
			Type:    s.MIMEType,
			Size:    len(s.Image),
		})
	}

	if store != nil && len(list) > 0 {
		err := storage.WriteFile(ctx, store, slides.ArchiveName, func(w io.Writer) error {
			return session.Export(ctx, w)
		})
		if err != nil {
			slog.Error("generate: export failed", "destination", store.Location(slides.ArchiveName), "error", err)
			var ee *slides.ExportError
			if errors.As(err, &ee) {
				return errors.New(ee.Display())
			}
			return errors.New((&slides.ExportError{Err: err}).Display())
		}
		result.Archive = store.Location(slides.ArchiveName)
	}

	if summarize {
		return outputResult(result, outputFile, outputJSON)
	}
	cli.PrintSuccess("%s in %s", cli.Plural(len(list), "slide"), result.Elapsed)
	if result.Archive != "" {
		cli.PrintSuccess("Exported %s", result.Archive)
	}
	return nil
}

// loadGenerateRequest picks the request from --example, -f or the
// arguments, in that order.
func loadGenerateRequest(args []string, example int) (*generateRequest, error) {
	req := &generateRequest{}
	switch {
	case example > 0:
		text, err := exampleText(example)
		if err != nil {
			return nil, err
		}
		req.Text = text
	case inputFile != "" && cli.IsTextFile(inputFile):
		data, err := cli.ReadInput(inputFile)
		if err != nil {
			return nil, err
		}
		req.Text = string(data)
	case inputFile != "":
		if err := cli.LoadRequest(inputFile, req); err != nil {
			return nil, err
		}
	default:
		req.Text = strings.Join(args, " ")
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, fmt.Errorf("no request text: pass it as arguments, with -f, or with --example")
	}
	return req, nil
}

func init() {
	generateCmd.Flags().Int("example", 0, "run the N-th example request (see 'slideshow examples')")
	generateCmd.Flags().Bool("no-export", false, "do not write slideshow.zip")
	generateCmd.Flags().Bool("force", false, "overwrite an existing slideshow.zip")
	generateCmd.Flags().Duration("timeout", 0, "overall timeout, e.g. 2m (default: context timeout, else none)")
	generateCmd.Flags().Int("width", slideshow.DefaultWidth, "wrap width for captions")
	generateCmd.Flags().String("style", "", "caption style: dark, light or notty (default: detect)")
}

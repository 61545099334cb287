// Package cli provides the command-line plumbing for the slideshow tool:
// kubectl-like contexts stored in ~/.giztoy/slideshow/config.yaml, output
// formatting (YAML, JSON, raw), request file loading, and terminal styles.
//
// Example usage:
//
//	cfg, err := cli.LoadConfig("slideshow")
//	ctx, err := cfg.ResolveContext(name)
//	key := ctx.ResolveAPIKey()
//
//	cli.Output(result, cli.OutputOptions{Format: cli.FormatJSON})
package cli

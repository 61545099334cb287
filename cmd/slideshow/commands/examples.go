package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/haivivi/slideshow/pkg/cli"
	"github.com/haivivi/slideshow/pkg/slideshow"
)

var examplesCmd = &cobra.Command{
	Use:   "examples",
	Short: "List example requests",
	Long: `List the example requests. Run one with:

  slideshow generate --example N`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if outputJSON || outputFile != "" {
			return outputResult(slideshow.Examples, outputFile, outputJSON)
		}
		styles := cli.NewStyles(cli.DefaultTheme)
		for i, ex := range slideshow.Examples {
			fmt.Printf("%s %s\n", styles.Label.Render(fmt.Sprintf("%2d.", i+1)), ex)
		}
		return nil
	},
}

// exampleText returns the n-th (1-based) example.
func exampleText(n int) (string, error) {
	if n < 1 || n > len(slideshow.Examples) {
		return "", fmt.Errorf("example %d out of range (1-%d)", n, len(slideshow.Examples))
	}
	return slideshow.Examples[n-1], nil
}

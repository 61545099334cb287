// Package main provides the slideshow CLI tool.
//
// Usage:
//
//	slideshow [flags] <command> [args]
//
// Commands:
//
//	generate - Generate a slideshow in the terminal and export it
//	serve    - Run the browser interface
//	examples - List example requests
//	config   - Configuration management
//
// Configuration:
//
//	The CLI stores configuration in ~/.giztoy/slideshow/
//	Use 'slideshow config' commands to manage contexts.
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/slideshow/cmd/slideshow/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iafilius/CBACharts/src/decision"
	"github.com/iafilius/CBACharts/src/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

func newRootCmd() *cobra.Command {
	var logLevel string
	root := &cobra.Command{
		Use:   "cbachart",
		Short: "Render Choosing By Advantages charts and summaries from a decision payload",
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logging.SetLevel(logLevel)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "debug, info, warn or error")
	root.AddCommand(newRenderCmd())
	root.AddCommand(newSummaryCmd())
	root.Version = version
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadInput reads a payload document; "-" reads JSON from stdin.
func loadInput(path string, stdin io.Reader) (decision.Payload, error) {
	if path == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return decision.Payload{}, fmt.Errorf("read stdin: %w", err)
		}
		return decision.ParseDocument(string(b)), nil
	}
	if strings.TrimSpace(path) == "" {
		return decision.Payload{}, fmt.Errorf("--input is required")
	}
	return decision.LoadDocument(filepath.Clean(path))
}

package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/iafilius/CBACharts/src/assistant"
	"github.com/iafilius/CBACharts/src/config"
	"github.com/iafilius/CBACharts/src/decision"
	"github.com/iafilius/CBACharts/src/interact"
)

func newSummaryCmd() *cobra.Command {
	var input, envFile string
	var ai bool
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the alternatives sorted by total advantage and the recommended one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := loadInput(input, cmd.InOrStdin())
			if err != nil {
				return err
			}
			writeSummary(cmd.OutOrStdout(), doc.Records)
			if !ai {
				return nil
			}
			cfg := config.Default()
			env, err := config.ReadEnv(envFile)
			if err != nil {
				return err
			}
			if err := env.Apply(&cfg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), summarize(cmd.Context(), cfg, doc))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&input, "input", "i", "", "payload file (.json, .xlsx) or - for stdin (required)")
	f.BoolVar(&ai, "ai", false, "append the assistant recommendation paragraph")
	f.StringVar(&envFile, "env", ".env", "dotenv file with OPENROUTER_* settings")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func summarize(ctx context.Context, cfg config.Config, doc decision.Payload) string {
	c := assistant.NewClient(assistant.Config{
		APIKey:   cfg.Assistant.APIKey,
		Model:    cfg.Assistant.Model,
		Endpoint: cfg.Assistant.Endpoint,
		Timeout:  cfg.Assistant.Timeout(),
	})
	return c.Summarize(ctx, doc.Setup, doc.Records)
}

// writeSummary prints named rows by total advantage, highest first.
func writeSummary(w io.Writer, records []decision.Record) {
	named := make([]decision.Record, 0, len(records))
	for _, r := range records {
		if decision.Name(r) != "" {
			named = append(named, r)
		}
	}
	items := decision.Normalize(named)
	decision.SortByTotalDesc(items)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Alternativa\tCosto\tVentaja\tRatio")
	for _, it := range items {
		cost := "-"
		if v, ok := it.Cost.Get(); ok {
			cost = interact.Money(v)
		}
		total := "-"
		if v, ok := it.Total.Get(); ok {
			total = humanize.Commaf(v)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.Name, cost, total, interact.RatioText(it.Ratio))
	}
	tw.Flush()

	if win, ok := decision.Winner(items); ok {
		fmt.Fprintf(w, "\nRecomendada: %s (%s por unidad de ventaja)\n", win.Name, interact.RatioText(win.Ratio))
	} else {
		fmt.Fprintln(w, "\nSin recomendación: faltan costos o ventajas.")
	}
}

package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vietddude/ecoscout/internal/control"
)

var (
	urlsPath string
	refresh  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scrape, classify and store every URL in a file",
	RunE:  runPipeline,
}

func init() {
	runCmd.Flags().StringVar(&urlsPath, "urls", "urls.txt", "file with one website per line")
	runCmd.Flags().BoolVar(&refresh, "refresh", false, "ignore cached classifications")
	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	f, err := os.Open(urlsPath)
	if err != nil {
		return fmt.Errorf("failed to open urls file: %w", err)
	}
	urls, err := control.ReadURLs(f)
	_ = f.Close()
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		slog.Warn("No URLs to process", "file", urlsPath)
		return nil
	}

	ctx, cancel := signalContext()
	defer cancel()

	app, err := control.NewApp(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize app", "error", err)
		return err
	}
	defer func() {
		_ = app.Close()
	}()

	app.Pipeline().Refresh = refresh

	summary, err := app.Run(ctx, urls)
	printSummary(cmd, summary)
	if err != nil {
		if errors.Is(err, ctx.Err()) {
			slog.Info("Run interrupted", "error", err)
		}
		return err
	}
	return nil
}

func printSummary(cmd *cobra.Command, s control.RunSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetTitle("Run summary")
	t.AppendHeader(table.Row{"Outcome", "Count"})
	t.AppendRows([]table.Row{
		{"URLs", s.Total},
		{"Scrape failed", s.ScrapeFailed},
		{"Skipped (short description)", s.Skipped},
		{"Cache hits", s.CacheHits},
		{"Classified", s.Classified},
		{"Degraded", s.Degraded},
		{"Needs review", s.NeedsReview},
		{"Invalid", s.Invalid},
		{"Created", s.Created},
		{"Updated", s.Updated},
		{"Store failed", s.StoreFailed},
	})

	providers := make([]string, 0, len(s.ByProvider))
	for p := range s.ByProvider {
		providers = append(providers, p)
	}
	sort.Strings(providers)
	if len(providers) > 0 {
		t.AppendSeparator()
		for _, p := range providers {
			t.AppendRow(table.Row{"via " + p, s.ByProvider[p]})
		}
	}
	t.Render()
}

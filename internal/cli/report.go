package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/ecoscout/internal/control"
	"github.com/vietddude/ecoscout/internal/infra/storage"
	"github.com/vietddude/ecoscout/internal/report"
)

var reportOut string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Write a markdown report of stored organisations",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportOut, "out", "", "output file (default stdout)")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	repo, db, err := control.OpenRepository(ctx, cfg.Database)
	if err != nil {
		return err
	}
	if db != nil {
		defer func() {
			_ = db.Close()
		}()
	}

	orgs, err := repo.List(ctx, storage.ListFilter{})
	if err != nil {
		return fmt.Errorf("failed to list organisations: %w", err)
	}

	var w io.Writer = cmd.OutOrStdout()
	if reportOut != "" {
		f, err := os.Create(reportOut)
		if err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}
		defer func() {
			_ = f.Close()
		}()
		w = f
	}

	if err := report.RenderMarkdown(w, orgs, time.Now().UTC()); err != nil {
		return err
	}
	if reportOut != "" {
		slog.Info("Report written", "file", reportOut, "organisations", len(orgs))
	}
	return nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vietddude/ecoscout/internal/control"
	"github.com/vietddude/ecoscout/internal/core/domain"
	"github.com/vietddude/ecoscout/internal/infra/storage"
)

var reviewLimit int

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "List records waiting for manual review, least confident first",
	RunE:  runReviewList,
}

var reviewPopCmd = &cobra.Command{
	Use:   "pop",
	Short: "Take the least confident record off the review queue and show it",
	RunE:  runReviewPop,
}

var reviewDoneCmd = &cobra.Command{
	Use:   "done [website]",
	Short: "Remove a reviewed record from the queue",
	Args:  cobra.ExactArgs(1),
	RunE:  runReviewDone,
}

var reviewRetryCmd = &cobra.Command{
	Use:   "retry [website]",
	Short: "Drop the cached classification so the next run classifies the site again",
	Args:  cobra.ExactArgs(1),
	RunE:  runReviewRetry,
}

func init() {
	reviewCmd.Flags().IntVar(&reviewLimit, "limit", 50, "maximum entries to show (0 for all)")
	reviewCmd.AddCommand(reviewPopCmd, reviewDoneCmd, reviewRetryCmd)
	rootCmd.AddCommand(reviewCmd)
}

var errNoRedis = errors.New("review queue requires redis.url to be configured")

// withReviewApp builds the app and checks that the review queue is available.
func withReviewApp(fn func(ctx context.Context, app *control.App) error) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	app, err := control.NewApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = app.Close()
	}()

	if app.ReviewQueue() == nil {
		return errNoRedis
	}
	return fn(ctx, app)
}

func runReviewList(cmd *cobra.Command, args []string) error {
	return withReviewApp(func(ctx context.Context, app *control.App) error {
		queue := app.ReviewQueue()
		total, err := queue.Len(ctx)
		if err != nil {
			return err
		}
		entries, err := queue.Entries(ctx, reviewLimit)
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.SetTitle(fmt.Sprintf("Review queue (%d)", total))
		t.AppendHeader(table.Row{"#", "Website", "Confidence", "Name", "Category", "Subcategory", "Source"})
		for i, e := range entries {
			row := table.Row{i + 1, e.WebsiteKey, strconv.FormatFloat(e.Confidence, 'f', 2, 64), "-", "-", "-", "-"}
			org, err := app.Repository().GetByWebsite(ctx, e.WebsiteKey)
			switch {
			case err == nil:
				row[3], row[4], row[5], row[6] = org.Name, org.Category, org.Subcategory, recordSource(org)
			case !errors.Is(err, storage.ErrNotFound):
				return err
			}
			t.AppendRow(row)
		}
		t.Render()
		return nil
	})
}

func runReviewPop(cmd *cobra.Command, args []string) error {
	return withReviewApp(func(ctx context.Context, app *control.App) error {
		key, confidence, found, err := app.ReviewQueue().Pop(ctx)
		if err != nil {
			return err
		}
		if !found {
			fmt.Fprintln(cmd.OutOrStdout(), "Review queue is empty")
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(cmd.OutOrStdout())
		t.AppendRow(table.Row{"Website", key})
		t.AppendRow(table.Row{"Confidence", strconv.FormatFloat(confidence, 'f', 2, 64)})

		org, err := app.Repository().GetByWebsite(ctx, key)
		switch {
		case err == nil:
			t.AppendRows([]table.Row{
				{"Name", org.Name},
				{"Description", org.Description},
				{"Country", org.Country},
				{"Twitter", org.Twitter},
				{"Type", org.Type},
				{"Category", org.Category},
				{"Subcategory", org.Subcategory},
				{"Role", org.RoleSummary},
				{"Source", recordSource(org)},
			})
		case errors.Is(err, storage.ErrNotFound):
			t.AppendRow(table.Row{"Record", "not stored"})
		default:
			return err
		}
		t.Render()
		return nil
	})
}

func runReviewDone(cmd *cobra.Command, args []string) error {
	return withReviewApp(func(ctx context.Context, app *control.App) error {
		key := domain.WebsiteKey(args[0])
		if err := app.ReviewQueue().Remove(ctx, key); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from the review queue\n", key)
		return nil
	})
}

func runReviewRetry(cmd *cobra.Command, args []string) error {
	return withReviewApp(func(ctx context.Context, app *control.App) error {
		key := domain.WebsiteKey(args[0])
		if err := app.ResultCache().Invalidate(ctx, key); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s will be classified again on the next run\n", key)
		return nil
	})
}

func recordSource(org *domain.Organisation) string {
	if org.Degraded {
		return "degraded"
	}
	return org.Provider + "/" + org.Model
}

package cli

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/vietddude/ecoscout/internal/control"
	"github.com/vietddude/ecoscout/internal/core/domain"
)

var (
	orgName        string
	orgDescription string
	orgWebsite     string
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify a single organisation and print the result as JSON",
	RunE:  runClassify,
}

func init() {
	classifyCmd.Flags().StringVar(&orgName, "name", "", "organisation name")
	classifyCmd.Flags().StringVar(&orgDescription, "description", "", "organisation description")
	classifyCmd.Flags().StringVar(&orgWebsite, "website", "", "organisation website")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	if orgName == "" {
		return errors.New("--name is required")
	}
	cfg, err := setup()
	if err != nil {
		return err
	}

	req := domain.ClassificationRequest{Name: orgName, Website: orgWebsite}
	if cmd.Flags().Changed("description") {
		req.Description = &orgDescription
	}

	ctx, cancel := signalContext()
	defer cancel()

	result := control.NewClassifier(cfg).Classify(ctx, req)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

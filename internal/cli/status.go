package cli

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vietddude/ecoscout/internal/control"
	"github.com/vietddude/ecoscout/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show credential pools, rate delays and rotation weights",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}

	weights := make(map[domain.BackendID]int)
	for _, s := range cfg.Slots() {
		weights[s.Backend] = s.Weight
	}
	delays := cfg.Delays()

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"Backend", "Credentials", "Delay", "Weight", "Models"})
	for _, b := range control.NewBackends(cfg) {
		st := b.Status()
		weight := "-"
		if w, ok := weights[st.Backend]; ok {
			weight = fmt.Sprint(w)
		}
		t.AppendRow(table.Row{
			st.Backend,
			st.Credentials,
			delays[st.Backend],
			weight,
			strings.Join(st.Models, ", "),
		})
	}
	t.AppendFooter(table.Row{"Rotation", "", "", "", joinBackends(cfg.Rotation.Order)})
	t.Render()
	return nil
}

func joinBackends(ids []domain.BackendID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, " → ")
}

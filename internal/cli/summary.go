package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(summaryCmd)
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show review counts and audit chain health",
	Args:  cobra.NoArgs,
	RunE:  runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	b, closeFn, err := openBackend()
	if err != nil {
		return err
	}
	defer closeFn()

	counts, err := b.Summary(cmd.Context())
	if err != nil {
		return err
	}
	vr, err := b.VerifyAudit(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Reviews:  %d open, %d approved, %d rejected (%d total)\n",
		counts.Open, counts.Approved, counts.Rejected, counts.Total)
	if vr.Valid {
		fmt.Fprintf(out, "Audit:    OK, %d events\n", vr.Lines)
	} else {
		fmt.Fprintf(out, "Audit:    BROKEN at line %d: %s\n", vr.ErrorLine, vr.Error)
	}
	return nil
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tariffwatch/internal/ticket"
)

var (
	decideReviewer string
	decideNotes    string
	reviewsJSON    bool
)

func init() {
	rootCmd.AddCommand(reviewsCmd)
	reviewsCmd.AddCommand(reviewsListCmd)
	reviewsCmd.AddCommand(reviewsShowCmd)
	reviewsCmd.AddCommand(reviewsDecideCmd)
	reviewsCmd.AddCommand(reviewsReportCmd)

	reviewsListCmd.Flags().BoolVar(&reviewsJSON, "json", false, "Print JSON instead of a table")
	reviewsDecideCmd.Flags().StringVar(&decideReviewer, "reviewer", "", "Name of the accountable reviewer (required)")
	reviewsDecideCmd.Flags().StringVar(&decideNotes, "notes", "", "Decision notes")
	reviewsDecideCmd.MarkFlagRequired("reviewer")
}

var reviewsCmd = &cobra.Command{
	Use:   "reviews",
	Short: "Human review queue",
	Long:  "Commands for listing, inspecting and deciding review tickets.",
}

var reviewsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List review tickets, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runReviewsList,
}

var reviewsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a review ticket with its request and response snapshots",
	Args:  cobra.ExactArgs(1),
	RunE:  runReviewsShow,
}

var reviewsDecideCmd = &cobra.Command{
	Use:   "decide <id> <approved|rejected>",
	Short: "Approve or reject an open review ticket",
	Long:  "Records a reviewer's verdict. A ticket can be decided exactly once;\nthe decision is appended to the audit trail.",
	Args:  cobra.ExactArgs(2),
	RunE:  runReviewsDecide,
}

var reviewsReportCmd = &cobra.Command{
	Use:   "report <id>",
	Short: "Print the classification report for a review ticket",
	Args:  cobra.ExactArgs(1),
	RunE:  runReviewsReport,
}

func runReviewsList(cmd *cobra.Command, args []string) error {
	b, closeFn, err := openBackend()
	if err != nil {
		return err
	}
	defer closeFn()

	list, err := b.ListReviews(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list reviews: %w", err)
	}

	out := cmd.OutOrStdout()
	if reviewsJSON {
		return printJSON(out, list)
	}
	if len(list) == 0 {
		fmt.Fprintln(out, "No review tickets.")
		return nil
	}

	fmt.Fprintf(out, "%-30s %-10s %-22s %s\n", "ID", "STATUS", "CREATED", "REASONS")
	for _, s := range list {
		fmt.Fprintf(out, "%-30s %-10s %-22s %d\n", s.ID, s.Status, s.CreatedAt, len(s.ReviewReasons))
	}
	return nil
}

func runReviewsShow(cmd *cobra.Command, args []string) error {
	b, closeFn, err := openBackend()
	if err != nil {
		return err
	}
	defer closeFn()

	t, err := b.GetReview(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), t)
}

func runReviewsDecide(cmd *cobra.Command, args []string) error {
	b, closeFn, err := openBackend()
	if err != nil {
		return err
	}
	defer closeFn()

	d := ticket.Decision{
		Decision: ticket.Status(strings.ToLower(args[1])),
		Reviewer: decideReviewer,
		Notes:    decideNotes,
	}
	t, ev, err := b.Decide(cmd.Context(), args[0], d)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s by %s\n", t.ID, t.Status, t.Reviewer)
	fmt.Fprintf(out, "audit event: %s\n", ev.EventHash)
	return nil
}

func runReviewsReport(cmd *cobra.Command, args []string) error {
	b, closeFn, err := openBackend()
	if err != nil {
		return err
	}
	defer closeFn()

	r, err := b.Report(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), r)
}

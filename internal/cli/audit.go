package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/tariffwatch/internal/audit"
)

var errAuditBroken = errors.New("audit chain broken")

var (
	tailLines    int
	replayType   string
	replayTicket string
	replayFrom   string
	replayTo     string
	replayFormat string
)

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditVerifyCmd)
	auditCmd.AddCommand(auditTailCmd)
	auditCmd.AddCommand(auditReplayCmd)
	auditTailCmd.Flags().IntVarP(&tailLines, "lines", "n", 10, "Number of recent events to show")
	auditReplayCmd.Flags().StringVar(&replayType, "type", "", "Only events of this type (classification|review_decision)")
	auditReplayCmd.Flags().StringVar(&replayTicket, "ticket", "", "Only events for this review ticket")
	auditReplayCmd.Flags().StringVar(&replayFrom, "from", "", "Start time filter (RFC3339)")
	auditReplayCmd.Flags().StringVar(&replayTo, "to", "", "End time filter (RFC3339)")
	auditReplayCmd.Flags().StringVarP(&replayFormat, "format", "f", "text", "Output format (text|json)")
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit trail operations",
	Long:  "Commands for verifying and inspecting the hash-chained audit trail.\nWithout a path argument the configured audit log is used.",
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify [path]",
	Short: "Verify hash chain integrity of the audit trail",
	Long:  "Recomputes every event_hash and checks that each previous_hash matches\nthe preceding event. Exits 0 if valid, 5 if the chain is broken.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAuditVerify,
}

var auditTailCmd = &cobra.Command{
	Use:   "tail [path]",
	Short: "Show recent audit events",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAuditTail,
}

var auditReplayCmd = &cobra.Command{
	Use:   "replay [path]",
	Short: "Render the audit trail as a timeline",
	Long:  "Reads the audit trail, filters by event type, ticket and time range,\nand renders a human-readable timeline with summary.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAuditReplay,
}

func auditPath(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return "", err
	}
	return cfg.AuditLogPath(), nil
}

func runAuditVerify(cmd *cobra.Command, args []string) error {
	var result audit.VerifyResult
	if len(args) == 0 && serverAddr != "" {
		b, closeFn, err := openBackend()
		if err != nil {
			return err
		}
		defer closeFn()
		if result, err = b.VerifyAudit(cmd.Context()); err != nil {
			return err
		}
	} else {
		path, err := auditPath(args)
		if err != nil {
			return err
		}
		result = audit.Verify(path)
	}

	if result.Valid {
		fmt.Fprintf(cmd.OutOrStdout(), "OK: %d events verified\n", result.Lines)
		return nil
	}
	return fmt.Errorf("%w at line %d: %s", errAuditBroken, result.ErrorLine, result.Error)
}

func runAuditTail(cmd *cobra.Command, args []string) error {
	path, err := auditPath(args)
	if err != nil {
		return err
	}

	events, err := audit.Tail(path, tailLines)
	if err != nil {
		return fmt.Errorf("read audit log: %w", err)
	}
	for _, e := range events {
		if err := printJSON(cmd.OutOrStdout(), e); err != nil {
			return err
		}
	}
	return nil
}

func runAuditReplay(cmd *cobra.Command, args []string) error {
	path, err := auditPath(args)
	if err != nil {
		return err
	}

	filter := audit.ReplayFilter{EventType: replayType, TicketID: replayTicket}

	if replayFrom != "" {
		from, err := time.Parse(time.RFC3339, replayFrom)
		if err != nil {
			return fmt.Errorf("invalid --from time %q: %w", replayFrom, err)
		}
		filter.From = from
	}

	if replayTo != "" {
		to, err := time.Parse(time.RFC3339, replayTo)
		if err != nil {
			return fmt.Errorf("invalid --to time %q: %w", replayTo, err)
		}
		filter.To = to
	}

	result, err := audit.Replay(path, filter)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch replayFormat {
	case "json":
		s, err := audit.FormatJSON(result)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, s)
	default:
		fmt.Fprint(out, audit.FormatTimeline(result))
	}
	return nil
}

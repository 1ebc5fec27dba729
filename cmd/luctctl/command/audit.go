package command

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/luct-report-api/internal/models"
	"github.com/noah-isme/luct-report-api/internal/repository"
	"github.com/noah-isme/luct-report-api/internal/service"
)

func newAuditCommand(flags *storeFlags) *cobra.Command {
	var (
		role    string
		action  string
		actorID uint
		since   time.Duration
		limit   int
		batch   int
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Print the audit trail, newest first",
		Example: `  luctctl audit --role prl --limit 20
  luctctl audit --action feedback --since 24h --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := repository.AuditFilter{ActionContains: action}
			if role != "" {
				parsed, ok := models.ParseRole(role)
				if !ok {
					return fmt.Errorf("unknown role %q", role)
				}
				filter.Role = parsed
			}
			if actorID > 0 {
				filter.ActorID = &actorID
			}
			if since > 0 {
				from := time.Now().UTC().Add(-since)
				filter.Since = &from
			}

			db, cfg, err := flags.open()
			if err != nil {
				return err
			}
			defer closeStore(db)

			audit := service.NewAuditService(repository.NewAuditRepository(db), cliValidator(), service.AuditFanout{}, cfg.AuditBatchSize, cliLogger())

			out := cmd.OutOrStdout()
			encoder := json.NewEncoder(out)
			printed := 0
			for event, err := range audit.Query(cmd.Context(), service.AuditQuery{Filter: filter, Limit: limit, BatchSize: batch}) {
				if err != nil {
					return err
				}
				printed++
				if asJSON {
					if err := encoder.Encode(event); err != nil {
						return err
					}
					continue
				}
				fmt.Fprintf(out, "%s  %-8s #%-6d %-18s %s\n",
					event.CreatedAt.Format(time.RFC3339), strings.ToUpper(string(event.ActorRole)), event.ActorID, event.Action, event.Target)
			}

			if printed == 0 && !asJSON {
				fmt.Fprintln(out, "no audit events")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "only events by this role (student, lecturer, prl, pl)")
	cmd.Flags().StringVar(&action, "action", "", "case-insensitive substring of the action")
	cmd.Flags().UintVar(&actorID, "actor", 0, "only events by this user id")
	cmd.Flags().DurationVar(&since, "since", 0, "only events newer than this duration, e.g. 24h")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum events to print (0 for all)")
	cmd.Flags().IntVar(&batch, "batch", 0, "rows fetched per page (defaults to LUCT_AUDIT_BATCH_SIZE)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print one JSON object per line")

	return cmd
}

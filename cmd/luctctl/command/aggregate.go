package command

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/noah-isme/luct-report-api/internal/repository"
	"github.com/noah-isme/luct-report-api/internal/service"
)

func newAggregateCommand(flags *storeFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "aggregate <lecture|class> <id>",
		Short:   "Show the live average rating of a lecture or class",
		Example: "  luctctl aggregate class 12",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			entity, err := service.ParseRatedEntity(args[0])
			if err != nil {
				return err
			}
			id, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil || id == 0 {
				return fmt.Errorf("invalid id %q", args[1])
			}

			db, _, err := flags.open()
			if err != nil {
				return err
			}
			defer closeStore(db)

			ratings := service.NewRatingService(repository.NewRatingRepository(db), cliValidator(), nil, cliLogger())
			aggregate, err := ratings.Aggregate(cmd.Context(), entity, uint(id))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s #%d: average %.2f over %d rating(s)\n", aggregate.RatedEntity, aggregate.EntityID, aggregate.Average, aggregate.Count)
			return nil
		},
	}
}

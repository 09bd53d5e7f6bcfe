package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"aircheck/internal/api"
)

func newRecordCommand(ctx *commandContext) *cobra.Command {
	var countryFlag string
	var durationFlag int

	cmd := &cobra.Command{
		Use:   "record <station name>",
		Short: "Start a one-off recording of a station",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			req := api.RecordRequest{
				StationName:     args[0],
				Country:         countryFlag,
				DurationSeconds: durationFlag,
			}
			var ack api.RecordResponse
			if err := client.post(cmd.Context(), "/api/record", req, &ack); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Recording %s for %ds\n", ack.Station.Name, durationFlag)
			fmt.Fprintf(cmd.OutOrStdout(), "Output: %s\n", ack.OutputPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&countryFlag, "country", "", "Country to disambiguate the station name")
	cmd.Flags().IntVar(&durationFlag, "duration", 30, "Recording length in seconds")
	return cmd
}

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"aircheck/internal/api"
)

func newTestCommand(ctx *commandContext) *cobra.Command {
	var countryFlag string
	var maxFlag int

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Probe station endpoints and report reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			var report api.BulkTestResponse
			req := api.BulkTestRequest{Country: countryFlag, MaxStations: maxFlag}
			if err := client.post(cmd.Context(), "/api/test", req, &report); err != nil {
				return err
			}

			rows := make([][]string, 0, len(report.Statuses))
			for _, status := range report.Statuses {
				rows = append(rows, []string{
					status.Station.Name,
					status.Station.Country,
					status.Status,
					formatLatency(status.LatencyMS),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Station", "Country", "Status", "Latency"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
			))
			fmt.Fprintf(cmd.OutOrStdout(), "%d/%d online\n", report.Online, report.Tested)
			return nil
		},
	}

	cmd.Flags().StringVar(&countryFlag, "country", "", "Limit the test to one country")
	cmd.Flags().IntVar(&maxFlag, "max", 0, "Cap the number of stations tested")
	return cmd
}

func formatLatency(ms int64) string {
	if ms <= 0 {
		return "-"
	}
	return (time.Duration(ms) * time.Millisecond).String()
}

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"aircheck/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status and session statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			var status api.DaemonStatus
			if err := client.get(cmd.Context(), "/api/status", &status); err != nil {
				return err
			}

			rows := [][]string{
				{"Running", fmt.Sprintf("%t", status.Running)},
				{"PID", fmt.Sprintf("%d", status.PID)},
				{"Started", formatTime(status.StartedAt)},
				{"Stations", fmt.Sprintf("%d (%d countries)", status.StationCount, status.CountryCount)},
				{"Active jobs", fmt.Sprintf("%d", status.ActiveJobs)},
				{"Monitored endpoints", fmt.Sprintf("%d", status.TrackedHealth)},
				{"Captures this session", fmt.Sprintf("%d (%d ok, %d failed, %d timed out)",
					status.Stats.Total, status.Stats.Succeeded, status.Stats.Failed, status.Stats.TimedOut)},
				{"Recorded audio", formatSeconds(status.Stats.RecordedSeconds)},
				{"Database", status.DatabasePath},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows, nil))
			return nil
		},
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func formatSeconds(seconds int64) string {
	return (time.Duration(seconds) * time.Second).String()
}

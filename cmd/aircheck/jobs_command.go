package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"aircheck/internal/api"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Manage scheduled recording jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listJobs(ctx, cmd)
		},
	}

	cmd.AddCommand(newJobsListCommand(ctx))
	cmd.AddCommand(newJobsAddCommand(ctx))
	cmd.AddCommand(newJobsCancelCommand(ctx))
	return cmd
}

func newJobsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listJobs(ctx, cmd)
		},
	}
}

func listJobs(ctx *commandContext, cmd *cobra.Command) error {
	client, err := ctx.client()
	if err != nil {
		return err
	}
	var list api.JobListResponse
	if err := client.get(cmd.Context(), "/api/jobs", &list); err != nil {
		return err
	}

	rows := make([][]string, 0, len(list.Jobs))
	for _, job := range list.Jobs {
		target := job.StationName
		if job.Kind == "bulk" {
			target = job.Country
			if job.MaxStations > 0 {
				target = fmt.Sprintf("%s (max %d)", target, job.MaxStations)
			}
		}
		cadence := "once"
		if job.IntervalMinutes > 0 {
			cadence = fmt.Sprintf("every %dm", job.IntervalMinutes)
		}
		rows = append(rows, []string{
			job.ID,
			job.Kind,
			target,
			strconv.Itoa(job.DurationSeconds) + "s",
			cadence,
			job.State,
			strconv.Itoa(job.FireCount),
			formatTime(job.LastFired),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"ID", "Kind", "Target", "Length", "Cadence", "State", "Fired", "Last Fired"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignRight, alignLeft},
	))
	return nil
}

func newJobsAddCommand(ctx *commandContext) *cobra.Command {
	var (
		stationFlag  string
		countryFlag  string
		maxFlag      int
		durationFlag int
		intervalFlag int
		parallelFlag int
		staggerFlag  int
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a recording job",
		Long: `Register a recording job. With --station the job records one station;
otherwise it records every station matching --country (optionally capped by
--max). Interval 0 fires once.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			req := api.RegisterJobRequest{
				Kind:            "bulk",
				Country:         countryFlag,
				MaxStations:     maxFlag,
				MaxConcurrent:   parallelFlag,
				StaggerSeconds:  staggerFlag,
				DurationSeconds: durationFlag,
				IntervalMinutes: intervalFlag,
			}
			if stationFlag != "" {
				req.Kind = "single"
				req.StationName = stationFlag
			}

			var created api.RegisterJobResponse
			if err := client.post(cmd.Context(), "/api/jobs", req, &created); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered job %s\n", created.Job.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&stationFlag, "station", "", "Record a single station by name")
	cmd.Flags().StringVar(&countryFlag, "country", "", "Record every station in a country")
	cmd.Flags().IntVar(&maxFlag, "max", 0, "Cap the number of stations in a bulk job")
	cmd.Flags().IntVar(&durationFlag, "duration", 30, "Recording length in seconds")
	cmd.Flags().IntVar(&intervalFlag, "interval", 0, "Repeat interval in minutes (0 = once)")
	cmd.Flags().IntVar(&parallelFlag, "parallel", 0, "Concurrent captures per firing (0 = daemon default)")
	cmd.Flags().IntVar(&staggerFlag, "stagger", 0, "Seconds between capture groups (0 = derived)")
	return cmd
}

func newJobsCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <job id>",
		Short: "Cancel an active job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}
			if err := client.delete(cmd.Context(), "/api/jobs/"+args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cancelled job %s\n", args[0])
			return nil
		},
	}
}

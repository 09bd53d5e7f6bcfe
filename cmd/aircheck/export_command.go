package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the recording history as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outputFlag != "" {
				file, err := os.Create(outputFlag)
				if err != nil {
					return fmt.Errorf("create output file: %w", err)
				}
				defer file.Close()
				out = file
			}

			if err := client.getRaw(cmd.Context(), "/api/export", out); err != nil {
				return err
			}
			if outputFlag != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", outputFlag)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Write the CSV to a file instead of stdout")
	return cmd
}

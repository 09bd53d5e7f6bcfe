package main

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"aircheck/internal/api"
)

func newStationsCommand(ctx *commandContext) *cobra.Command {
	var countryFlag string
	var countriesFlag bool

	cmd := &cobra.Command{
		Use:   "stations",
		Short: "List catalog stations, optionally filtered by country",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := ctx.client()
			if err != nil {
				return err
			}

			if countriesFlag {
				var countries api.CountryListResponse
				if err := client.get(cmd.Context(), "/api/countries", &countries); err != nil {
					return err
				}
				for _, country := range countries.Countries {
					fmt.Fprintln(cmd.OutOrStdout(), country)
				}
				return nil
			}

			path := "/api/stations"
			if countryFlag != "" {
				path += "?country=" + url.QueryEscape(countryFlag)
			}
			var stations api.StationListResponse
			if err := client.get(cmd.Context(), path, &stations); err != nil {
				return err
			}

			rows := make([][]string, 0, len(stations.Stations))
			for _, station := range stations.Stations {
				bitrate := "-"
				if station.Bitrate > 0 {
					bitrate = strconv.Itoa(station.Bitrate)
				}
				rows = append(rows, []string{station.Name, station.Country, station.City, bitrate, station.URL})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Station", "Country", "City", "Kbps", "URL"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			fmt.Fprintf(cmd.OutOrStdout(), "%d stations\n", len(stations.Stations))
			return nil
		},
	}

	cmd.Flags().StringVar(&countryFlag, "country", "", "Filter by country")
	cmd.Flags().BoolVar(&countriesFlag, "countries", false, "List countries instead of stations")
	return cmd
}

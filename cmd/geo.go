package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/community-cli/internal/geo"
)

var (
	geoZip   string
	geoCity  string
	geoState string
)

var geoCmd = &cobra.Command{
	Use:   "geo",
	Short: "Inspect the location dataset",
}

var geoLookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Resolve a zip code, or a city and state, to a location",
	RunE: func(cmd *cobra.Command, args []string) error {
		if geoZip == "" && geoCity == "" {
			return eris.New("geo lookup: --zip or --city is required")
		}
		r := geo.NewResolver(geo.FileLoader(cfg.Geo.DatasetPath))

		var (
			loc *geo.Location
			err error
		)
		if geoZip != "" {
			loc, err = r.Resolve(geoZip, geoCity, geoState)
		} else {
			loc, err = r.LookupCity(geoCity, geoState)
		}
		if err != nil {
			return eris.Wrap(err, "geo lookup")
		}

		if communityJSON {
			return writeJSON(cmd.OutOrStdout(), loc)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s, %s (%s County)\nlat %.4f lng %.4f  population %d\nzips: %v\n",
			loc.City, loc.State, loc.County, loc.Lat, loc.Lng, loc.Population, loc.Zips)
		return nil
	},
}

func init() {
	geoLookupCmd.Flags().StringVar(&geoZip, "zip", "", "zip code")
	geoLookupCmd.Flags().StringVar(&geoCity, "city", "", "city name")
	geoLookupCmd.Flags().StringVar(&geoState, "state", "", "state abbreviation")
	geoLookupCmd.Flags().BoolVar(&communityJSON, "json", false, "print JSON")

	geoCmd.AddCommand(geoLookupCmd)
	rootCmd.AddCommand(geoCmd)
}

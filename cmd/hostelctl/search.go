package main

import (
	"fmt"
	"net/url"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"hostel_hub/internal/app"
)

var searchFrom string

var searchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "Filter the catalog from the command line",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := source(searchFrom)
		if err != nil {
			return err
		}
		catalog := app.NewCatalog(src, nil, 0)
		if err := catalog.Load(cmd.Context()); err != nil {
			return err
		}
		term := ""
		if len(args) == 1 {
			term = args[0]
		}
		q, err := searchValues(cmd)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tUNIVERSITY\tFROM\tKM")
		for _, h := range app.Apply(catalog.Snapshot(), term, app.ParseFilter(q)) {
			from := "-"
			if p, ok := h.MinPrice(); ok {
				from = app.FormatPrice(cfg.Currency, p)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", h.ID, h.Name, h.University, from,
				strconv.FormatFloat(h.Location.DistanceKm, 'f', 1, 64))
		}
		return tw.Flush()
	},
}

var searchFlags = []string{"university", "min_price", "max_price", "amenities", "room_types", "max_distance"}

func init() {
	searchCmd.Flags().StringVar(&searchFrom, "from", "memory", "catalog source: memory or hosted")
	for _, f := range searchFlags {
		searchCmd.Flags().StringSlice(f, nil, "filter on "+f)
	}
}

// searchValues maps the set filter flags onto the query form ParseFilter reads.
func searchValues(cmd *cobra.Command) (url.Values, error) {
	q := url.Values{}
	for _, f := range searchFlags {
		if !cmd.Flags().Changed(f) {
			continue
		}
		vs, err := cmd.Flags().GetStringSlice(f)
		if err != nil {
			return nil, err
		}
		q[f] = vs
	}
	return q, nil
}

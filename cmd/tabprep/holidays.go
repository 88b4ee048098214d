package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tabprep/pkg/dataprep"
)

func (a *app) holidaysCmd() *cobra.Command {
	var (
		year     int
		observed bool
	)
	cmd := &cobra.Command{
		Use:   "holidays",
		Short: "List a year's holidays and the feature columns they produce",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := dataprep.NewRuleCalendar(dataprep.USHolidays, observed)
			hs, err := c.Holidays(year)
			if err != nil {
				return err
			}
			g := dataprep.NewHolidayGenerator()
			g.Prefix = a.cfg.Holidays.Prefix

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tHOLIDAY\tCOLUMN")
			for _, h := range hs {
				fmt.Fprintf(w, "%s\t%s\t%s\n", h.Date.Format("2006-01-02"), h.Name, g.ColumnName(h.Name))
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&year, "year", "y", 2015, "calendar year")
	cmd.Flags().BoolVar(&observed, "observed", true, "include observed weekday substitutes")
	return cmd
}

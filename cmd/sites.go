package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List the sites used for quick picks and random trips",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cat, err := cfg.Catalog()
		if err != nil {
			return err
		}

		popular := make(map[string]bool)
		for _, s := range cat.Popular() {
			popular[s.ID] = true
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tHOST\tSINCE\tQUICK PICK")
		for _, s := range cat.All() {
			quick := ""
			if popular[s.ID] {
				quick = "yes"
			}
			fmt.Fprintf(tw, "%s\t%s %s\t%s\t%d\t%s\n", s.ID, s.Icon, s.Name, s.Host, s.StartYear, quick)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(sitesCmd)
}

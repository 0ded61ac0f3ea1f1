package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/timemachine/internal/navigator"
	"github.com/ziadkadry99/timemachine/internal/wayback"
)

var urlShare bool

var urlCmd = &cobra.Command{
	Use:   "url <site> <year>",
	Short: "Print the archive URL for a site on January 1st of a year",
	Long: `Normalizes the site the same way the page does, clamps the year into
the supported range and prints the Wayback Machine snapshot URL.`,
	Example: `  timemachine url https://www.google.com 1999
  timemachine url apple.com 1990 --share`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		host := wayback.Normalize(args[0])
		if host == "" {
			return fmt.Errorf("site %q is empty after normalization", args[0])
		}
		year, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("year %q is not a number", args[1])
		}

		sel := navigator.Selection{Host: host, Year: wayback.ClampYear(year)}
		fmt.Fprintln(cmd.OutOrStdout(), sel.ArchiveURL())
		if urlShare {
			fmt.Fprintf(cmd.OutOrStdout(), "?%s\n", sel.Query().Encode())
		}
		return nil
	},
}

func init() {
	urlCmd.Flags().BoolVar(&urlShare, "share", false, "also print the shareable query string")
	rootCmd.AddCommand(urlCmd)
}

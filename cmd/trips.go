package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/timemachine/internal/db"
	"github.com/ziadkadry99/timemachine/internal/trips"
)

var (
	tripsLimit     int
	tripsVisitor   string
	tripsTop       bool
	tripsOlderThan time.Duration
)

var tripsCmd = &cobra.Command{
	Use:   "trips",
	Short: "Show recorded trips",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, closeDB, err := openTripStore()
		if err != nil {
			return err
		}
		defer closeDB()

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		defer tw.Flush()

		if tripsTop {
			top, err := store.TopDomains(cmd.Context(), tripsVisitor, tripsLimit)
			if err != nil {
				return err
			}
			fmt.Fprintln(tw, "DOMAIN\tTRIPS")
			for _, d := range top {
				fmt.Fprintf(tw, "%s\t%d\n", d.RootDomain, d.Trips)
			}
			return nil
		}

		entries, err := store.Query(cmd.Context(), trips.Filter{
			VisitorID: tripsVisitor,
			Limit:     tripsLimit,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "TIME\tCAUSE\tSITE\tYEAR\tURL")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
				e.Timestamp.Local().Format(time.DateTime), e.Cause, e.Host, e.Year, e.ArchiveURL)
		}
		return nil
	},
}

var tripsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete trips older than a given age",
	RunE: func(cmd *cobra.Command, args []string) error {
		if tripsOlderThan <= 0 {
			return fmt.Errorf("--older-than must be positive")
		}
		store, closeDB, err := openTripStore()
		if err != nil {
			return err
		}
		defer closeDB()

		n, err := store.DeleteBefore(cmd.Context(), time.Now().Add(-tripsOlderThan))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d trips\n", n)
		return nil
	},
}

func openTripStore() (*trips.Store, func() error, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	dbPath := filepath.Join(cfg.DataDir, "timemachine.db")
	if _, err := os.Stat(dbPath); err != nil {
		return nil, nil, fmt.Errorf("no database at %s: run `timemachine serve` first", dbPath)
	}
	database, err := db.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return trips.NewStore(database), database.Close, nil
}

func init() {
	tripsCmd.Flags().IntVarP(&tripsLimit, "limit", "n", 20, "maximum rows to show")
	tripsCmd.Flags().StringVar(&tripsVisitor, "visitor", "", "only show trips of this visitor id")
	tripsCmd.Flags().BoolVar(&tripsTop, "top", false, "rank the most visited domains instead")
	tripsPruneCmd.Flags().DurationVar(&tripsOlderThan, "older-than", 30*24*time.Hour, "age of the trips to delete")
	tripsCmd.AddCommand(tripsPruneCmd)
	rootCmd.AddCommand(tripsCmd)
}

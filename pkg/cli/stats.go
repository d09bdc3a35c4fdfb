package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate call statistics",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := resolveConfig()
		if err != nil {
			return err
		}

		engine, closeStore, err := openTelemetry(cfg.DataDir, cfg.HistoryCap)
		if err != nil {
			return err
		}
		defer closeStore()

		s := engine.GetStats()
		fmt.Printf("Calls:        %d\n", s.TotalCalls)
		fmt.Printf("Errors:       %d\n", s.ErrorCount)
		fmt.Printf("Success rate: %s%%\n", s.SuccessRate)
		fmt.Printf("Avg duration: %.1fms\n", s.AvgDuration)

		if len(s.PerRoute) == 0 {
			return nil
		}
		routes := make([]string, 0, len(s.PerRoute))
		for route := range s.PerRoute {
			routes = append(routes, route)
		}
		sort.Strings(routes)

		fmt.Println("\nPer route:")
		for _, route := range routes {
			rs := s.PerRoute[route]
			fmt.Printf("  %-24s %5d calls  %4d errors  %7.1fms avg\n",
				route, rs.Count, rs.Errors, rs.AvgDurationMs)
		}
		return nil
	},
}

var clearFlagVals struct {
	yes bool
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the persisted call log",
	RunE: func(_ *cobra.Command, _ []string) error {
		if !clearFlagVals.yes {
			return fmt.Errorf("refusing to clear the call log without --yes")
		}

		cfg, err := resolveConfig()
		if err != nil {
			return err
		}

		engine, closeStore, err := openTelemetry(cfg.DataDir, cfg.HistoryCap)
		if err != nil {
			return err
		}
		defer closeStore()

		n := engine.Len()
		if !engine.Clear(true) {
			return fmt.Errorf("clear was not confirmed")
		}
		fmt.Printf("Cleared %d entries\n", n)
		return nil
	},
}

func initStatsCmd() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(clearCmd)
	clearCmd.Flags().BoolVar(&clearFlagVals.yes, "yes", false, "Confirm clearing the call log")
}

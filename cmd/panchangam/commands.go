package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/novaephem/panchangam"
	"github.com/novaephem/panchangam/cache"
	"github.com/novaephem/panchangam/config"
	"github.com/novaephem/panchangam/ephem"
)

func buildEngine(cmd *cobra.Command) (*panchangam.Engine, error) {
	ephePath, _ := cmd.Flags().GetString("ephe-path")
	dbDSN, _ := cmd.Flags().GetString("db")
	if dbDSN == "" {
		dbDSN = config.Load().DatabaseURL
	}

	opts := panchangam.Options{Logger: logger}
	if ephePath != "" {
		opts.CandidatePaths = append([]string{ephePath}, ephem.DefaultCandidatePaths()...)
	}
	if dbDSN != "" {
		store, err := cache.OpenSQLiteStore(dbDSN)
		if err != nil {
			logger.Warn().Err(err).Msg("panchangam: persistent store unavailable, continuing memory-only")
		} else {
			opts.Persistent = store
		}
	}

	return panchangam.New(opts)
}

func locationFlags(cmd *cobra.Command) (lat, lon float64, tz, ayanamsa string) {
	lat, _ = cmd.Flags().GetFloat64("lat")
	lon, _ = cmd.Flags().GetFloat64("lon")
	tz, _ = cmd.Flags().GetString("tz")
	ayanamsa, _ = cmd.Flags().GetString("ayanamsa")
	return
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func monthlyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monthly [month-start YYYY-MM-DD]",
		Short: "Compute one calendar month's events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEngine(cmd)
			if err != nil {
				return err
			}
			lat, lon, tz, ayanamsa := locationFlags(cmd)
			rec, err := e.ComputeMonthly(context.Background(), lat, lon, tz, args[0], ayanamsa)
			if err != nil {
				return err
			}
			return printJSON(rec)
		},
	}
	return cmd
}

func horizonCmd() *cobra.Command {
	var ascHours, moonDays float64
	cmd := &cobra.Command{
		Use:   "horizon [start-local]",
		Short: "Compute ascendant flips and Moon pada transitions over a short window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEngine(cmd)
			if err != nil {
				return err
			}
			lat, lon, tz, ayanamsa := locationFlags(cmd)
			rec, err := e.ComputeHorizon(context.Background(), lat, lon, tz, args[0], ascHours, moonDays, ayanamsa)
			if err != nil {
				return err
			}
			return printJSON(rec)
		},
	}
	cmd.Flags().Float64Var(&ascHours, "asc-hours", 24, "hours to scan for ascendant sign flips")
	cmd.Flags().Float64Var(&moonDays, "moon-days", 3, "days to scan for Moon nakshatra/pada transitions")
	return cmd
}

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [month-start...]",
		Short: "Compute several calendar months concurrently for one location",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEngine(cmd)
			if err != nil {
				return err
			}
			lat, lon, tz, ayanamsa := locationFlags(cmd)
			results, err := e.ComputeBatch(context.Background(), lat, lon, tz, args, ayanamsa)
			if err != nil {
				return err
			}
			return printJSON(results)
		},
	}
	return cmd
}

func timeseriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeseries [body] [unix-timestamp...]",
		Short: "Report a body's sidereal longitude at each given Unix timestamp",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := buildEngine(cmd)
			if err != nil {
				return err
			}
			_, _, _, ayanamsa := locationFlags(cmd)

			timestamps := make([]int64, 0, len(args)-1)
			for _, raw := range args[1:] {
				ts, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
				if err != nil {
					return fmt.Errorf("invalid unix timestamp %q: %w", raw, err)
				}
				timestamps = append(timestamps, ts)
			}

			points, err := e.ComputeTimeseries(args[0], timestamps, ayanamsa)
			if err != nil {
				return err
			}
			return printJSON(points)
		},
	}
	return cmd
}

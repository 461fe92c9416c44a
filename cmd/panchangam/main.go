package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var logger zerolog.Logger

func main() {
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	root := &cobra.Command{
		Use:   "panchangam",
		Short: "Monthly planetary-event engine",
		Long: `panchangam computes sidereal zodiac ingresses, nakshatra/pada
transitions, planetary stations, combustion windows, velocity extrema, and
horizon (ascendant) events for a given location and month.`,
	}

	root.PersistentFlags().String("ephe-path", "", "ephemeris (.bsp) file, or directory holding de421.bsp, to try first")
	root.PersistentFlags().String("db", "", "persistent cache connection string (sqlite DSN); empty falls back to DATABASE_URL, and to memory-only caching when that is unset")
	root.PersistentFlags().String("ayanamsa", "lahiri", "ayanamsa: lahiri, raman, or tropical")
	root.PersistentFlags().Float64("lat", 0, "latitude in degrees, positive north")
	root.PersistentFlags().Float64("lon", 0, "longitude in degrees, positive east")
	root.PersistentFlags().String("tz", "UTC", "IANA timezone name")

	root.AddCommand(monthlyCmd())
	root.AddCommand(horizonCmd())
	root.AddCommand(batchCmd())
	root.AddCommand(timeseriesCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

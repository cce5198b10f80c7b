// Command pymordemo dispatches the model reduction demos by name: it builds
// a full-order model, runs the selected reduction method and reports error
// norms and Bode comparison figures.
//
// Usage:
//
//	pymordemo list
//	pymordemo [flags] <demo>
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
)

func main() {
	configPath := flag.String("config", "", "TOML config file overriding the defaults")
	order := flag.Int("order", 0, "reduced order, overrides the config value")
	plotDir := flag.String("plot-dir", "", "directory for the generated figures")
	verbose := flag.BoolP("verbose", "v", false, "debug logging")
	flag.Parse()

	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: pymordemo [flags] <demo>\n\navailable demos:\n  %s\n",
			strings.Join(demoNames(), "\n  "))
		os.Exit(2)
	}
	name := args[0]

	if name == "list" {
		fmt.Println(strings.Join(demoNames(), "\n"))
		return
	}

	demo, ok := demos[name]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown demo %q, available:\n  %s\n",
			name, strings.Join(demoNames(), "\n  "))
		os.Exit(2)
	}

	cfg := DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = loadConfig(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("config")
		}
	}
	if *order > 0 {
		cfg.ReducedOrder = *order
	}
	if *plotDir != "" {
		cfg.PlotDir = *plotDir
	}

	log.Debug().Str("demo", name).Interface("config", cfg).Msg("dispatch")
	if err := demo(cfg, log); err != nil {
		log.Fatal().Err(err).Str("demo", name).Msg("demo failed")
	}
}

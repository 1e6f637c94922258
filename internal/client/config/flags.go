package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/evently-client/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   API base URL
//	-s string   server status URL
//	-n string   connectivity probe URL
//	-i int      online check interval in seconds
//	-d string   state directory
//	-l string   log level
//
// The function filters os.Args to only the flags it knows about, using
// flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-s", "-n", "-i", "-d", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "API base URL")
	fs.StringVar(&cfg.ServerStatusURL, "s", cfg.ServerStatusURL, "server status URL")
	fs.StringVar(&cfg.ConnectivityProbeURL, "n", cfg.ConnectivityProbeURL, "connectivity probe URL")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.StateDir, "d", cfg.StateDir, "state directory")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}

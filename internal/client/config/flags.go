package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/drawersync/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   server base URL
//	-t string   bearer token
//	-d string   path of the local SQLite database
//	-i int      online check interval (seconds)
//	-r int      full resync interval (seconds, 0 disables)
//	-p string   sync policy: merge or lww
//	-l string   log file ("" logs to stderr)
//	-k string   passphrase for end-to-end encryption
//
// Only these flags are parsed; the rest of os.Args is left to other readers.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-d", "-i", "-r", "-p", "-l", "-k"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "server base URL")
	fs.StringVar(&cfg.Token, "t", cfg.Token, "bearer token")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	resyncInterval := fs.Int("r", int(cfg.ResyncInterval.Seconds()), "full resync interval (in seconds)")
	fs.StringVar(&cfg.SyncPolicy, "p", cfg.SyncPolicy, "sync policy: merge or lww")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "log file")
	fs.StringVar(&cfg.Passphrase, "k", cfg.Passphrase, "encryption passphrase")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// Intervals may come from env or JSON with sub-second precision; only an
	// explicit flag replaces them.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
		case "r":
			cfg.ResyncInterval = time.Duration(*resyncInterval) * time.Second
		}
	})
}

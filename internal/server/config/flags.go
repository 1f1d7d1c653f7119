package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/drawersync/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
//	-a string       HTTP bind address (e.g. ":8080")
//	-k string       storage backend: memory, postgres or s3
//	-d string       PostgreSQL DSN
//	-s string       JWT HMAC secret key ("" disables auth)
//	-v int          issued token validity, minutes
//	-u string       S3 root user
//	-p string       S3 root password
//	-b string       S3 bucket name
//	-g string       S3 region
//	-e string       S3 base endpoint (e.g. "http://127.0.0.1:9000/")
//	-issue string   print a token for this subject and exit
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-k", "-d", "-s", "-v", "-u", "-p", "-b", "-g", "-e", "-issue"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.Storage, "k", config.Storage, "storage backend: memory, postgres, s3")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenValidity := fs.Int("v", int(config.TokenValidityDuration.Minutes()), "token validity (in minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.IssueToken, "issue", config.IssueToken, "issue a token for the given subject and exit")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "v" {
			config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
		}
	})
}

package config

import (
	"flag"
	"os"
	"time"

	"github.com/cocoinbox/cocoinbox/internal/flagx"
)

// parseFlags overlays command-line flags onto config.
//
//	-a string   gRPC bind address
//	-w string   HTTP bind address
//	-d string   PostgreSQL DSN
//	-s string   token signing secret
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket
//	-g string   S3 region
//	-e string   S3 base endpoint
//	-m string   disposable mail provider base URL
//	-r string   redis address (empty disables the token cache)
//	-i int      sweep interval, minutes
//	-o string   OTLP/HTTP trace endpoint
//	-l string   log level
//
// os.Args is filtered first so that -c/-config and unrelated flags do not
// make parsing fail.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-w", "-d", "-s", "-u", "-p", "-b", "-g", "-e", "-m", "-r", "-i", "-o", "-l",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.EndpointAddrHTTP, "w", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "token signing secret")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.MailProviderURL, "m", config.MailProviderURL, "mail provider base URL")
	fs.StringVar(&config.RedisAddr, "r", config.RedisAddr, "redis address")
	sweepMinutes := fs.Int("i", int(config.SweepInterval.Minutes()), "sweep interval (in minutes)")
	fs.StringVar(&config.OTLPEndpoint, "o", config.OTLPEndpoint, "OTLP trace endpoint")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "i" {
			config.SweepInterval = time.Duration(*sweepMinutes) * time.Minute
		}
	})
}

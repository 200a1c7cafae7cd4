package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/miniblog/internal/flagx"
)

var (
	valueFlags = []string{
		"-a", "-g", "-d", "-s", "-t", "-env", "-l", "-bcrypt-cost",
		"-s3-user", "-s3-password", "-s3-bucket", "-s3-region", "-s3-endpoint", "-s3-public-url",
	}
	boolFlags = []string{"-strict-ownership", "-seed"}
)

// parseFlags populates Config fields from command-line flags.
//
//	-a string    HTTP bind address (e.g. ":8080")
//	-g string    gRPC health bind address; "" disables it
//	-d string    PostgreSQL DSN
//	-s string    session token HMAC secret
//	-t int       session token validity, minutes
//	-env string  deployment environment
//	-l string    log level
//	-bcrypt-cost int
//	-strict-ownership  deny edits of articles without an owner
//	-seed              expose POST /api/seed
//	-s3-user, -s3-password, -s3-bucket, -s3-region, -s3-endpoint, -s3-public-url
//
// Unknown arguments (for example -c) are filtered out before parsing.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run the HTTP API")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port of the gRPC health endpoint")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "session token secret")

	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "session token validity (in minutes)")

	fs.StringVar(&config.Environment, "env", config.Environment, "deployment environment")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.IntVar(&config.BcryptCost, "bcrypt-cost", config.BcryptCost, "bcrypt work factor")
	fs.BoolVar(&config.StrictOwnership, "strict-ownership", config.StrictOwnership, "deny mutation of unowned articles")
	fs.BoolVar(&config.SeedEnabled, "seed", config.SeedEnabled, "enable the seed endpoint")

	fs.StringVar(&config.S3RootUser, "s3-user", config.S3RootUser, "S3 access key")
	fs.StringVar(&config.S3RootPassword, "s3-password", config.S3RootPassword, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "s3-bucket", config.S3Bucket, "S3 bucket for media uploads")
	fs.StringVar(&config.S3Region, "s3-region", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "s3-endpoint", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3PublicBaseURL, "s3-public-url", config.S3PublicBaseURL, "public base URL of uploaded media")

	if err := fs.Parse(flagx.FilterArgs(args, valueFlags, boolFlags...)); err != nil {
		return err
	}

	config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
	return nil
}

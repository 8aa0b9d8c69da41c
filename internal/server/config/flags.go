package config

import (
	"flag"
	"os"

	"github.com/kavyaresto/kavyaserve/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP port or address (e.g., "5000" or "127.0.0.1:5000")
//	-d string   PostgreSQL DSN
//	-s string   session token HMAC secret
//	-g string   gRPC health bind address
//
// Only the flags above are picked out of os.Args (see flagx.FilterArgs),
// so other components may define their own.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-g"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.Port, "a", config.Port, "port or address to run the HTTP server on")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "session token secret key")
	fs.StringVar(&config.GRPCHealthAddr, "g", config.GRPCHealthAddr, "gRPC health address")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}

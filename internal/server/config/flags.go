package config

import (
	"flag"
	"os"
	"time"

	"github.com/gursmeep404/sharden/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   bearer token HMAC secret key
//	-t int      transfer validity window, minutes
//	-m int      maximum upload size, MiB
//	-l int      audit log listing limit
//	-k string   blob backend ("s3", "file", "memory")
//	-o string   upload directory for the "file" backend
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. The validity
// window is accepted as an integer in minutes and converted to time.Duration.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-m", "-l", "-k", "-o", "-u", "-p", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	transferValidity := fs.Int("t", int(config.TransferValidityDuration.Minutes()), "transfer_validity_duration (in minutes)")
	maxUploadMiB := fs.Int64("m", config.MaxUploadSize>>20, "max upload size (in MiB)")

	fs.IntVar(&config.AuditLogLimit, "l", config.AuditLogLimit, "audit log listing limit")
	fs.StringVar(&config.BlobBackend, "k", config.BlobBackend, "blob backend: s3, file or memory")
	fs.StringVar(&config.UploadDir, "o", config.UploadDir, "upload directory (file backend)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TransferValidityDuration = time.Duration(*transferValidity) * time.Minute
	config.MaxUploadSize = *maxUploadMiB << 20
}

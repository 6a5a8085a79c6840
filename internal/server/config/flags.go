package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/mydutch/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string           HTTP bind address (e.g., ":8000")
//	-d string           PostgreSQL DSN
//	-s string           JWT HMAC secret key
//	-t int              access token validity, minutes
//	-r int              refresh token validity, days
//	-o string           comma-separated CORS origins
//	-s3-key string      S3 access key id
//	-s3-secret string   S3 secret access key
//	-s3-region string   S3 region ("auto" for R2)
//	-s3-endpoint string S3 base endpoint
//	-s3-content string  content bucket name
//	-s3-userdata string user-data bucket name
//	-ai-account string  Workers AI account id
//	-ai-token string    Workers AI API token
//	-ai-model string    Workers AI model identifier
//	-ai-endpoint string Workers AI base endpoint
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - Token lifetimes are accepted as integers (minutes for access, days for
//     refresh, matching the granularity each kind is configured at) and then
//     converted to time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{
		"-a", "-d", "-s", "-t", "-r", "-o",
		"-s3-key", "-s3-secret", "-s3-region", "-s3-endpoint", "-s3-content", "-s3-userdata",
		"-ai-account", "-ai-token", "-ai-model", "-ai-endpoint",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.CORSOrigins, "o", config.CORSOrigins, "comma-separated CORS origins")

	accessTokenValidityMinutes := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDays := fs.Int("r", int(config.RefreshTokenValidityDuration.Hours()/24), "refresh_token_validity_duration (in days)")

	fs.StringVar(&config.S3AccessKeyID, "s3-key", config.S3AccessKeyID, "S3 access key id")
	fs.StringVar(&config.S3SecretAccessKey, "s3-secret", config.S3SecretAccessKey, "S3 secret access key")
	fs.StringVar(&config.S3Region, "s3-region", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "s3-endpoint", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3ContentBucket, "s3-content", config.S3ContentBucket, "S3 content bucket")
	fs.StringVar(&config.S3UserDataBucket, "s3-userdata", config.S3UserDataBucket, "S3 user data bucket")

	fs.StringVar(&config.AIAccountID, "ai-account", config.AIAccountID, "Workers AI account id")
	fs.StringVar(&config.AIAPIToken, "ai-token", config.AIAPIToken, "Workers AI API token")
	fs.StringVar(&config.AIModel, "ai-model", config.AIModel, "Workers AI model")
	fs.StringVar(&config.AIBaseEndpoint, "ai-endpoint", config.AIBaseEndpoint, "Workers AI base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityMinutes) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDays) * 24 * time.Hour
}

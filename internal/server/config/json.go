package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/mydutch/internal/flagx"
	"github.com/dmitrijs2005/mydutch/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "30m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config
// struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	CORSOrigins                  string         `json:"cors_origins"`
	S3AccessKeyID                string         `json:"s3_access_key_id"`
	S3SecretAccessKey            string         `json:"s3_secret_access_key"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
	S3ContentBucket              string         `json:"s3_content_bucket"`
	S3UserDataBucket             string         `json:"s3_user_data_bucket"`
	AIAccountID                  string         `json:"ai_account_id"`
	AIAPIToken                   string         `json:"ai_api_token"`
	AIModel                      string         `json:"ai_model"`
	AIBaseEndpoint               string         `json:"ai_base_endpoint"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path comes from the -c or -config command-line flags; if neither is
// set, no JSON file is loaded. If the file cannot be read or contains invalid
// JSON, the function panics: a misconfigured server must not start.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	config.RefreshTokenValidityDuration = time.Duration(c.RefreshTokenValidityDuration.Duration)
	config.CORSOrigins = c.CORSOrigins
	config.S3AccessKeyID = c.S3AccessKeyID
	config.S3SecretAccessKey = c.S3SecretAccessKey
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.S3ContentBucket = c.S3ContentBucket
	config.S3UserDataBucket = c.S3UserDataBucket
	config.AIAccountID = c.AIAccountID
	config.AIAPIToken = c.AIAPIToken
	config.AIModel = c.AIModel
	config.AIBaseEndpoint = c.AIBaseEndpoint
}

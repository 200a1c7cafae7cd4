package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/miniblog/internal/flagx"
	"github.com/dmitrijs2005/miniblog/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Pointer and
// zero-value fields that are absent from the file leave the current value
// untouched.
type JsonConfig struct {
	EndpointAddrHTTP      string          `json:"endpoint_addr_http"`
	EndpointAddrGRPC      *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN           string          `json:"database_dsn"`
	SecretKey             string          `json:"secret_key"`
	TokenValidityDuration *timex.Duration `json:"token_validity_duration"`
	Environment           string          `json:"environment"`
	LogLevel              string          `json:"log_level"`
	BcryptCost            int             `json:"bcrypt_cost"`
	StrictOwnership       *bool           `json:"strict_ownership"`
	SeedEnabled           *bool           `json:"seed_enabled"`
	S3RootUser            string          `json:"s3_root_user"`
	S3RootPassword        string          `json:"s3_root_password"`
	S3Bucket              string          `json:"s3_bucket"`
	S3Region              string          `json:"s3_region"`
	S3BaseEndpoint        string          `json:"s3_base_endpoint"`
	S3PublicBaseURL       string          `json:"s3_public_base_url"`
}

// parseJson loads the file named by -c/-config (if any) over config.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return err
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	if c.EndpointAddrGRPC != nil {
		config.EndpointAddrGRPC = *c.EndpointAddrGRPC
	}
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.TokenValidityDuration != nil {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	setString(&config.Environment, c.Environment)
	setString(&config.LogLevel, c.LogLevel)
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.StrictOwnership != nil {
		config.StrictOwnership = *c.StrictOwnership
	}
	if c.SeedEnabled != nil {
		config.SeedEnabled = *c.SeedEnabled
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3PublicBaseURL, c.S3PublicBaseURL)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

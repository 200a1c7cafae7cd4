package config

// parseEnv overlays the few settings that deployments traditionally pass
// through the environment.
//
//	JWT_SECRET    session token secret
//	DATABASE_DSN  PostgreSQL DSN
//	APP_ENV       deployment environment ("production" enables Secure cookies)
func parseEnv(config *Config, lookup func(string) (string, bool)) {
	if v, ok := lookup("JWT_SECRET"); ok && v != "" {
		config.SecretKey = v
	}
	if v, ok := lookup("DATABASE_DSN"); ok && v != "" {
		config.DatabaseDSN = v
	}
	if v, ok := lookup("APP_ENV"); ok && v != "" {
		config.Environment = v
	}
}

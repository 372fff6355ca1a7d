package constants

const (
	// AppName is the canonical service name used in logs and telemetry.
	AppName = "hirelink_backend"

	// ConfigName and ConfigFormat describe the config file viper looks for.
	ConfigName   = "config"
	ConfigFormat = "yaml"

	// EnvPrefix is the prefix for environment variable overrides,
	// e.g. HIRELINK_DATABASE_HOST overrides database.host.
	EnvPrefix = "HIRELINK"
)

package remote

// Config holds configuration for the remote MES API.
type Config struct {
	// BaseURL is the root URL of the remote API, without a trailing slash.
	BaseURL string `mapstructure:"base_url" default:""`
	// APIKey is the authentication token appended to every request.
	APIKey string `mapstructure:"api_key" default:""`
	// TimeoutSeconds is the per-request timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

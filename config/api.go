package config

// APIConfig defines settings for the HTTP API server.
type APIConfig struct {
	Enabled bool   `json:"enabled"`
	Addr    string `json:"addr"`
	// Token guards the API with a bearer token when non-empty.
	Token string `json:"token"`
}

// SetDefaults applies fallback values for optional fields.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

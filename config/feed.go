package config

import "fmt"

// FeedConfig defines configuration for the timetable feed connector.
type FeedConfig struct {
	Mode   string           `json:"mode"`
	Mock   FeedMockConfig   `json:"mock"`
	Client FeedClientConfig `json:"client"`
}

// FeedMockConfig configures the local HTTP endpoint used to inject timetables.
type FeedMockConfig struct {
	Address string `json:"address"`
}

// FeedClientConfig configures polling of the operations API.
type FeedClientConfig struct {
	APIURL              string `json:"api_url"`
	ClientID            string `json:"client_id"`
	ClientSecret        string `json:"client_secret"`
	TokenURL            string `json:"token_url"`
	PollIntervalSeconds int    `json:"poll_interval_seconds"`
}

// Validate checks the connector mode.
func (c FeedConfig) Validate() error {
	switch c.Mode {
	case "", "mock", "client":
		return nil
	default:
		return fmt.Errorf("unknown mode %s", c.Mode)
	}
}

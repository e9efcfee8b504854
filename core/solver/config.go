package solver

// Config defines solver-related settings.
type Config struct {
	AckTimeoutSeconds int  `json:"ack_timeout_seconds"`
	SetCoverFirst     bool `json:"set_cover_first"`
	MaxColumns        int  `json:"max_columns"`
	MaxSuccessors     int  `json:"max_successors"`
	SearchPasses      int  `json:"search_passes"`
}

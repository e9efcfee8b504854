package metrics

import "github.com/opentransit/crewd/core/factory"

// Config lists the sinks the service fans metrics out to. Each entry names a
// registered sink type plus its raw settings.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
}

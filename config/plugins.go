package config

import "github.com/opentransit/crewd/core/factory"

// ComponentsConfig lists the pluggable components of the scheduling service.
// Each component is defined by its type name and an arbitrary configuration
// map that the plugin decodes itself. An empty type disables the component.
type ComponentsConfig struct {
	KPIStore   factory.ModuleConfig `json:"kpi_store"`
	Prediction factory.ModuleConfig `json:"prediction"`
}

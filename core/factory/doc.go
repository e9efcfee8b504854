// Package factory provides a small generic registry used to build pluggable
// modules from configuration. A module is a type name plus a map of raw
// settings; the registered factory decodes the settings into a typed struct
// and returns the implementation.
//
// The metrics sinks, KPI stores and log stores are wired this way:
//
//	reg := factory.NewRegistry[metrics.MetricsSink]()
//	_ = reg.Register("influx", func(conf map[string]any) (metrics.MetricsSink, error) {
//	    var c struct {
//	        URL string `json:"url"`
//	    }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return newInfluxSink(c.URL), nil
//	})
//	sink, err := reg.Create(factory.ModuleConfig{Type: "influx", Conf: map[string]any{"url": "http://db:8086"}})
package factory

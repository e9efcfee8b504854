// Package prediction provides interfaces for forecasting driver availability
// over the service day. Forecasts are optional but help dispatchers judge
// whether spare cover will hold.
package prediction

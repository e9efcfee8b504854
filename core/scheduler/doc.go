package scheduler

// Package scheduler maps solved duty rosters onto named drivers for a
// service day. It honors per-driver availability windows and produces the
// sign-on sheet handed to the depot.

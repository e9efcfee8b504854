// Package instances bundles the builtin shift tables used by the solve
// command and the test suite, and loads external instances from JSON or YAML
// files. The builtin tables are built from per-driver tracks, so a feasible
// partition always exists.
package instances

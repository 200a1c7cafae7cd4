// Package config loads settings for the miniblog CLI.
//
// Sources are applied in order, later ones winning:
//
//  1. defaults (LoadDefaults)
//  2. a JSON file named by -c or -config
//  3. command-line flags: -a (server URL) and -i (request timeout, seconds)
//
// JSON durations accept either strings like "5s" or integer nanoseconds
// (see timex.Duration).
package config

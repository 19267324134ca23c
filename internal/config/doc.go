// Package config provides configuration loading, merging, and validation
// facilities for the go-budget-sync daemon.
//
// Configuration is assembled from multiple sources in the following priority
// order (earlier sources take precedence for fields set in more than one):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON config file
//
// The main entry point is [GetStructuredConfig]. Sync targets are exposed as
// a single ordered list of ID/password pairs via [Sync.Targets] so that the
// two positionally-matched config lists never leave this package.
package config

// Package log provides secure logging built on top of the standard slog
// package.
//
// SecureHandler masks attributes that carry credentials (access tokens,
// Authorization headers, session ids, passwords) and replaces session ids
// that appear inside error messages or URLs. Even in verbose mode, secrets
// are masked so that logs can be shared when reporting problems.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("query sent", "instance_url", url, "access_token", token)
//	// access_token=***REDACTED***
//
//	slog.SetDefault(logger)
package log

package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoQuery is returned when neither -q nor --file provides a query.
	ErrNoQuery = errors.New("no query specified: use --query or --file")

	// ErrEmptyQuery is returned for a blank query.
	ErrEmptyQuery = errors.New("query must not be empty")

	// ErrNoInstanceURL is returned when no instance URL is configured by
	// flag, environment or config file.
	ErrNoInstanceURL = errors.New("no instance URL: use --instance-url, " + EnvInstanceURL + " or an org in the config file")

	// ErrNoAccessToken is returned when no access token is configured.
	ErrNoAccessToken = errors.New("no access token: set " + EnvAccessToken + " or add accessToken to the org in the config file")

	// ErrInvalidAPIVersion is returned for an API version not shaped like "62.0".
	ErrInvalidAPIVersion = errors.New("invalid API version: expected a version such as 62.0")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidMaxFetch is returned when the record cap is not positive.
	ErrInvalidMaxFetch = errors.New("invalid max fetch: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrSameOutputFiles is returned when --output and --save-output point
	// at the same file.
	ErrSameOutputFiles = errors.New("--output and --save-output must be different files")

	// ErrUnknownOrg is returned when --org names an org missing from the
	// config file.
	ErrUnknownOrg = errors.New("unknown org alias")
)

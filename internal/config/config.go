package config

import (
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/soqlq/internal/model"
)

// Default configuration values.
const (
	// DefaultAPIVersion is the REST API version used when neither the
	// config file nor a flag picks one.
	DefaultAPIVersion = "62.0"

	// DefaultTimeout bounds each HTTP request, page fetches included.
	DefaultTimeout = 120 * time.Second

	// DefaultMaxFetch is the maximum number of records fetched per query.
	// Pages are followed until the result is done or this many records
	// have been collected.
	DefaultMaxFetch = 50000

	// DefaultBatchSize is the number of queries from --file run at once.
	DefaultBatchSize = 4

	// DefaultHistoryLimit is the number of entries listed by "history".
	DefaultHistoryLimit = 20

	// AppName is the application name used for XDG directory paths.
	AppName = "soqlq"
)

// Environment variables that override the config file.
const (
	EnvInstanceURL = "SOQLQ_INSTANCE_URL"
	EnvAccessToken = "SOQLQ_ACCESS_TOKEN"
)

// apiVersionPattern matches versions such as "62.0".
var apiVersionPattern = regexp.MustCompile(`^[0-9]{2,3}\.[0-9]$`)

// Config holds all configuration options for a soqlq run.
// It is populated from defaults, the config file, the environment and the
// command line flags, in that order.
type Config struct {
	// InstanceURL is the base URL of the org, e.g. https://example.my.salesforce.com.
	InstanceURL string

	// AccessToken is the OAuth access token or session id sent as a
	// bearer token.
	AccessToken string

	// APIVersion is the REST API version without the leading "v".
	APIVersion string

	// UseTooling sends queries to the tooling API.
	UseTooling bool

	// OrgAlias names the org profile from the config file, if any.
	OrgAlias string

	// ResultFormat selects the reporter.
	ResultFormat model.ResultFormat

	// JSON prints the JSON envelope regardless of ResultFormat.
	JSON bool

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// MaxFetch caps the number of records fetched per query.
	MaxFetch int

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" form.
	ProxyAddress string

	// Queries are the SOQL statements to run, from -q or --file.
	Queries []string

	// BatchSize is the number of queries run concurrently.
	BatchSize int

	// OutputFile receives the rendered output instead of stdout.
	OutputFile string

	// SaveOutputFile receives the JSON form of the result for "render".
	SaveOutputFile string

	// ConfigFilePath is the explicit path of the config file.
	// If empty, .soqlq is looked up in the current and home directories.
	ConfigFilePath string

	// OrgConfigs holds the parsed config file, if one was found.
	OrgConfigs *File

	// DBDir is the directory of the history database.
	// Defaults to the XDG data directory (~/.local/share/soqlq on Linux).
	DBDir string

	// SaveHistory records each execution in the history database.
	SaveHistory bool

	// Verbose enables debug logging.
	Verbose bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		APIVersion:   DefaultAPIVersion,
		ResultFormat: model.ResultFormatHuman,
		Timeout:      DefaultTimeout,
		MaxFetch:     DefaultMaxFetch,
		BatchSize:    DefaultBatchSize,
		DBDir:        XDGDataDir(),
		SaveHistory:  true,
	}
}

// XDGDataDir returns the XDG data directory for soqlq.
// On Linux: ~/.local/share/soqlq
// On macOS: ~/Library/Application Support/soqlq
// On Windows: %LOCALAPPDATA%\soqlq
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for soqlq.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ApplyOrg copies the non-empty settings of org into c.
func (c *Config) ApplyOrg(org OrgConfig) {
	if org.InstanceURL != "" {
		c.InstanceURL = org.InstanceURL
	}
	if org.AccessToken != "" {
		c.AccessToken = org.AccessToken
	}
	if org.APIVersion != "" {
		c.APIVersion = org.APIVersion
	}
	if org.UseTooling {
		c.UseTooling = true
	}
	if org.MaxFetch > 0 {
		c.MaxFetch = org.MaxFetch
	}
}

// ApplyEnv overrides the connection settings from the environment.
// A nil getenv uses os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv(EnvInstanceURL); v != "" {
		c.InstanceURL = v
	}
	if v := getenv(EnvAccessToken); v != "" {
		c.AccessToken = v
	}
}

// EffectiveFormat returns the format actually rendered: --json wins over
// the result format.
func (c *Config) EffectiveFormat() model.ResultFormat {
	if c.JSON {
		return model.ResultFormatJSON
	}
	return c.ResultFormat
}

// Validate checks if the configuration is valid for running queries.
// It returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Queries) == 0 {
		return ErrNoQuery
	}
	for _, q := range c.Queries {
		if q == "" {
			return ErrEmptyQuery
		}
	}

	if c.InstanceURL == "" {
		return ErrNoInstanceURL
	}
	if c.AccessToken == "" {
		return ErrNoAccessToken
	}
	if !apiVersionPattern.MatchString(c.APIVersion) {
		return ErrInvalidAPIVersion
	}

	if _, err := model.ParseResultFormat(string(c.ResultFormat)); err != nil {
		return err
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxFetch <= 0 {
		return ErrInvalidMaxFetch
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.OutputFile != "" && c.OutputFile == c.SaveOutputFile {
		return ErrSameOutputFiles
	}

	return nil
}

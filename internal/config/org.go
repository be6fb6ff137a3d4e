package config

import (
	"fmt"
	"maps"
	"slices"
)

// OrgConfig holds the connection settings of one org.
type OrgConfig struct {
	// InstanceURL is the base URL of the org.
	InstanceURL string `yaml:"instanceUrl,omitempty"`

	// AccessToken is the OAuth access token. Prefer the environment
	// variable over storing it here.
	AccessToken string `yaml:"accessToken,omitempty"`

	// APIVersion overrides the default REST API version.
	APIVersion string `yaml:"apiVersion,omitempty"`

	// UseTooling routes queries to the tooling API.
	UseTooling bool `yaml:"tooling,omitempty"`

	// MaxFetch overrides the default record cap.
	MaxFetch int `yaml:"maxFetch,omitempty"`
}

// File represents the structure of the .soqlq configuration file.
type File struct {
	// DefaultOrg is the alias used when --org is not given.
	DefaultOrg string `yaml:"defaultOrg,omitempty"`

	// ResultFormat is the default result format.
	ResultFormat string `yaml:"resultFormat,omitempty"`

	// Defaults apply to every org unless overridden.
	Defaults OrgConfig `yaml:"defaults,omitempty"`

	// Orgs maps aliases to org settings.
	Orgs map[string]OrgConfig `yaml:"orgs,omitempty"`
}

// Aliases returns the configured org aliases in sorted order.
func (cf *File) Aliases() []string {
	return slices.Sorted(maps.Keys(cf.Orgs))
}

// GetOrgConfig returns the configuration for alias merged over the
// defaults. An empty alias selects DefaultOrg; if that is empty too, the
// defaults alone are returned. An alias missing from the file is an error.
func (cf *File) GetOrgConfig(alias string) (OrgConfig, error) {
	result := cf.Defaults

	if alias == "" {
		alias = cf.DefaultOrg
	}
	if alias == "" {
		return result, nil
	}

	org, ok := cf.Orgs[alias]
	if !ok {
		return OrgConfig{}, fmt.Errorf("%w: %q", ErrUnknownOrg, alias)
	}

	if org.InstanceURL != "" {
		result.InstanceURL = org.InstanceURL
	}
	if org.AccessToken != "" {
		result.AccessToken = org.AccessToken
	}
	if org.APIVersion != "" {
		result.APIVersion = org.APIVersion
	}
	if org.UseTooling {
		result.UseTooling = true
	}
	if org.MaxFetch > 0 {
		result.MaxFetch = org.MaxFetch
	}
	return result, nil
}

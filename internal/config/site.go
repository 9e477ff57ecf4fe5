package config

import "maps"

// SiteConfig holds site-specific configuration for a single domain.
// This allows customizing crawl behavior per site without touching the
// global flags, e.g. attaching a session cookie for an authenticated area.
type SiteConfig struct {
	// Cookie is an HTTP cookie to send when crawling this site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are custom HTTP headers to include in requests to this site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// UserAgent overrides the global User-Agent for this site.
	// When set, random rotation is disabled for requests to this site.
	UserAgent string `yaml:"userAgent,omitempty"`

	// Depth overrides the global maximum depth for phrase-gated hunts.
	// If zero, the global MaxDepth is used.
	Depth int `yaml:"depth,omitempty"`
}

// File represents the structure of the .webharvest configuration file.
type File struct {
	// Sites maps domains to their site-specific configurations.
	// Keys are bare hostnames (e.g. "example.com").
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults contains configuration applied to every site unless
	// overridden in the site-specific entry.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig returns the merged configuration for the given domain.
// The returned value never aliases the defaults: the header map is cloned
// before site entries merge into it, so one site's headers cannot leak
// into another site's merged config, and concurrent lookups are safe.
func (cf *File) GetSiteConfig(domain string) SiteConfig {
	result := cf.Defaults
	result.Headers = maps.Clone(cf.Defaults.Headers)

	if siteConfig, ok := cf.Sites[domain]; ok {
		if siteConfig.Cookie != "" {
			result.Cookie = siteConfig.Cookie
		}
		if siteConfig.UserAgent != "" {
			result.UserAgent = siteConfig.UserAgent
		}
		if siteConfig.Depth != 0 {
			result.Depth = siteConfig.Depth
		}
		if len(siteConfig.Headers) > 0 {
			if result.Headers == nil {
				result.Headers = make(map[string]string)
			}
			for k, v := range siteConfig.Headers {
				result.Headers[k] = v
			}
		}
	}

	return result
}

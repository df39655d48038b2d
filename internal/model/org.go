// Package model defines the value types shared across the enrichment pipeline.
package model

import (
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Organization represents a business entity to be enriched.
type Organization struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	WebsiteURL string    `json:"website_url"`
	City       string    `json:"city,omitempty"`
	State      string    `json:"state,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	EnrichedAt *time.Time `json:"enriched_at,omitempty"`
}

// Domain returns the organization's canonical domain (no scheme, no www).
func (o Organization) Domain() string {
	d, err := CanonicalDomain(o.WebsiteURL)
	if err != nil {
		return ""
	}
	return d
}

// NormalizeWebsiteURL canonicalizes a raw website URL: forces https,
// lowercases the host, strips the "www." prefix and any trailing slash.
// All comparisons and lookups use the normalized form.
func NormalizeWebsiteURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", eris.New("model: empty website url")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", eris.Wrap(err, "model: parse website url")
	}
	u.Scheme = "https"
	host := strings.ToLower(u.Host)
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return "", eris.Errorf("model: website url has no host: %s", raw)
	}
	u.Host = host
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String(), nil
}

// CanonicalDomain extracts the canonical domain from a raw website URL.
func CanonicalDomain(raw string) (string, error) {
	normalized, err := NormalizeWebsiteURL(raw)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(normalized)
	if err != nil {
		return "", eris.Wrap(err, "model: parse normalized url")
	}
	return u.Host, nil
}

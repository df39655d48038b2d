package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeWebsiteURL(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "bare domain", in: "acme.com", want: "https://acme.com"},
		{name: "http upgraded", in: "http://acme.com", want: "https://acme.com"},
		{name: "www stripped", in: "https://www.acme.com", want: "https://acme.com"},
		{name: "trailing slash stripped", in: "https://acme.com/", want: "https://acme.com"},
		{name: "host lowercased", in: "https://ACME.Com/About", want: "https://acme.com/About"},
		{name: "fragment dropped", in: "https://acme.com/team#staff", want: "https://acme.com/team"},
		{name: "whitespace trimmed", in: "  acme.com  ", want: "https://acme.com"},
		{name: "empty", in: "", wantErr: true},
		{name: "whitespace only", in: "   ", wantErr: true},
		{name: "scheme only", in: "https://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeWebsiteURL(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalDomain(t *testing.T) {
	got, err := CanonicalDomain("http://www.Acme.com/contact/")
	require.NoError(t, err)
	assert.Equal(t, "acme.com", got)
}

func TestOrganizationDomain(t *testing.T) {
	org := Organization{WebsiteURL: "https://www.example.org"}
	assert.Equal(t, "example.org", org.Domain())

	broken := Organization{WebsiteURL: ""}
	assert.Empty(t, broken.Domain())
}

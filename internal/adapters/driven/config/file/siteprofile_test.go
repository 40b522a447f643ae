package file

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

func writeProfile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, SiteProfileFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestResolveSiteProfile_BuiltInDefault(t *testing.T) {
	profile, err := ResolveSiteProfile(t.TempDir(), "")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSiteProfile(), profile)
}

func TestResolveSiteProfile_ConfigDirFile(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, `
company: Harbor Supply
base_url: https://harbor.example
categories:
  - slug: pumps
    name: Pumps
`)

	profile, err := ResolveSiteProfile(dir, "")
	require.NoError(t, err)
	assert.Equal(t, "Harbor Supply", profile.Company)
	assert.Equal(t, []domain.Category{{Slug: "pumps", Name: "Pumps"}}, profile.Categories)
	// Omitted fields keep the built-in values.
	assert.Equal(t, domain.DefaultSiteProfile().Selectors, profile.Selectors)
	assert.Equal(t, domain.DefaultSiteProfile().ListingPhrases, profile.ListingPhrases)
}

func TestResolveSiteProfile_ExplicitPathMissing(t *testing.T) {
	_, err := ResolveSiteProfile(t.TempDir(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestLoadSiteProfile_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown field", "colour: blue\n"},
		{"relative base url", "base_url: /shop\n"},
		{"empty title selector", "selectors:\n  title: \"\"\n"},
		{"info page without path", "info_pages:\n  - label: about\n"},
		{"malformed", "categories: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeProfile(t, t.TempDir(), tt.content)
			_, err := LoadSiteProfile(path)
			assert.ErrorIs(t, err, domain.ErrConfig)
		})
	}
}

func TestLoadSiteProfile_EmptyFileIsDefault(t *testing.T) {
	path := writeProfile(t, t.TempDir(), "")
	profile, err := LoadSiteProfile(path)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSiteProfile(), profile)
}

func TestEncodeSiteProfile_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeSiteProfile(&buf, domain.DefaultSiteProfile()))

	path := writeProfile(t, t.TempDir(), buf.String())
	profile, err := LoadSiteProfile(path)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSiteProfile(), profile)
}

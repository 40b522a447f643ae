package file

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/shopdesk/internal/core/domain"
)

// SiteProfileFile is the profile looked up in the config directory when no
// explicit path is configured.
const SiteProfileFile = "site.yaml"

// LoadSiteProfile reads a YAML profile from path. Fields the file omits
// keep their built-in values; unknown fields are rejected.
func LoadSiteProfile(path string) (domain.SiteProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.SiteProfile{}, fmt.Errorf("%w: reading site profile: %w", domain.ErrConfig, err)
	}
	return decodeSiteProfile(data, path)
}

// ResolveSiteProfile picks the profile to use: the configured path if set,
// else site.yaml in configDir if present, else the built-in profile.
func ResolveSiteProfile(configDir, configured string) (domain.SiteProfile, error) {
	if configured != "" {
		return LoadSiteProfile(configured)
	}
	if configDir != "" {
		candidate := filepath.Join(configDir, SiteProfileFile)
		if _, err := os.Stat(candidate); err == nil {
			return LoadSiteProfile(candidate)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return domain.SiteProfile{}, fmt.Errorf("%w: %w", domain.ErrConfig, err)
		}
	}
	return domain.DefaultSiteProfile(), nil
}

// EncodeSiteProfile writes p as YAML.
func EncodeSiteProfile(w io.Writer, p domain.SiteProfile) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return err
	}
	return enc.Close()
}

func decodeSiteProfile(data []byte, source string) (domain.SiteProfile, error) {
	profile := domain.DefaultSiteProfile()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&profile); err != nil && !errors.Is(err, io.EOF) {
		return domain.SiteProfile{}, fmt.Errorf("%w: parsing %s: %w", domain.ErrConfig, source, err)
	}
	if err := validateSiteProfile(profile); err != nil {
		return domain.SiteProfile{}, fmt.Errorf("%w: %s: %w", domain.ErrConfig, source, err)
	}
	return profile, nil
}

func validateSiteProfile(p domain.SiteProfile) error {
	u, err := url.Parse(p.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base_url %q must be an absolute http(s) URL", p.BaseURL)
	}
	if p.Selectors.Title == "" {
		return errors.New("selectors.title is required")
	}
	if p.ProductPathPattern == "" {
		return errors.New("product_path_pattern is required")
	}
	for _, page := range p.InfoPages {
		if page.Label == "" || page.Path == "" {
			return errors.New("info_pages entries need a label and a path")
		}
	}
	return nil
}

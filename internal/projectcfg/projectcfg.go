// Package projectcfg loads the optional zyproject.toml project manifest
// (SPEC_FULL.md §4.11): the entry module, output path, llc/cc overrides,
// and a language-version floor checked with golang.org/x/mod/semver.
package projectcfg

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"golang.org/x/mod/semver"
)

// MinLanguageVersion is the lowest language_version a manifest may declare.
const MinLanguageVersion = "v0.1.0"

// Manifest is the decoded shape of zyproject.toml.
type Manifest struct {
	Entry           string `toml:"entry"`
	Output          string `toml:"output"`
	LLC             string `toml:"llc"`
	CC              string `toml:"cc"`
	LanguageVersion string `toml:"language_version"`
}

// Load decodes path into a Manifest. A missing file is not an error: it
// reports (nil, nil) so the caller falls back to flag defaults entirely.
func Load(path string) (*Manifest, error) {
	var m Manifest
	if _, err := toml.DecodeFile(path, &m); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("projectcfg: %s: %w", path, err)
	}
	if m.LanguageVersion != "" {
		if err := checkVersionFloor(m.LanguageVersion); err != nil {
			return nil, err
		}
	}
	return &m, nil
}

// checkVersionFloor is a driver-level configuration error (never one of
// internal/diag's compiler diagnostics — a bad manifest never reaches the
// source-level error taxonomy).
func checkVersionFloor(v string) error {
	canonical := v
	if canonical[0] != 'v' {
		canonical = "v" + canonical
	}
	if !semver.IsValid(canonical) {
		return fmt.Errorf("projectcfg: language_version %q is not a valid semantic version", v)
	}
	if semver.Compare(canonical, MinLanguageVersion) < 0 {
		return fmt.Errorf("projectcfg: language_version %s is below the supported floor %s", v, MinLanguageVersion)
	}
	return nil
}

// ApplyDefaults overlays m onto an already-parsed set of flag values,
// filling only the fields the caller reports as unset — manifest values
// never override a flag the user passed explicitly (SPEC_FULL.md §4.11).
func (m *Manifest) ApplyDefaults(entry, output, llc, cc *string, entrySet, outputSet, llcSet, ccSet bool) {
	if m == nil {
		return
	}
	if !entrySet && m.Entry != "" {
		*entry = m.Entry
	}
	if !outputSet && m.Output != "" {
		*output = m.Output
	}
	if !llcSet && m.LLC != "" {
		*llc = m.LLC
	}
	if !ccSet && m.CC != "" {
		*cc = m.CC
	}
}

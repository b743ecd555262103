package projectcfg_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zylang/zyc/internal/projectcfg"
)

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "zyproject.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadDecodesAllFields(t *testing.T) {
	path := writeManifest(t, `
entry = "src/main.zy"
output = "build/out"
llc = "llc-17"
cc = "clang-17"
language_version = "v0.2.0"
`)
	m, err := projectcfg.Load(path)
	require.NoError(t, err)
	require.Equal(t, "src/main.zy", m.Entry)
	require.Equal(t, "build/out", m.Output)
	require.Equal(t, "llc-17", m.LLC)
	require.Equal(t, "clang-17", m.CC)
	require.Equal(t, "v0.2.0", m.LanguageVersion)
}

func TestLoadMissingFileReturnsNilManifestNoError(t *testing.T) {
	m, err := projectcfg.Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	require.Nil(t, m)
}

func TestLoadRejectsVersionBelowFloor(t *testing.T) {
	path := writeManifest(t, `language_version = "v0.0.1"`)
	_, err := projectcfg.Load(path)
	require.Error(t, err)
}

func TestLoadAcceptsVersionWithoutLeadingV(t *testing.T) {
	path := writeManifest(t, `language_version = "0.5.0"`)
	m, err := projectcfg.Load(path)
	require.NoError(t, err)
	require.Equal(t, "0.5.0", m.LanguageVersion)
}

func TestApplyDefaultsNeverOverridesAnExplicitFlag(t *testing.T) {
	m := &projectcfg.Manifest{Entry: "manifest.zy", Output: "manifest-out"}
	entry, output, llc, cc := "flag.zy", "", "", ""
	m.ApplyDefaults(&entry, &output, &llc, &cc, true, false, false, false)
	require.Equal(t, "flag.zy", entry)
	require.Equal(t, "manifest-out", output)
}

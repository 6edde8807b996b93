// Package project locates and parses the patch.toml manifest that drives a
// patch run: the target module, the replacement modules and the resolution
// context.
package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

var (
	// ErrPatchSectionMissing indicates that [patch] is missing.
	ErrPatchSectionMissing = errors.New("missing [patch]")
	// ErrTargetMissing indicates that [patch].target is missing or empty.
	ErrTargetMissing = errors.New("missing [patch].target")
	// ErrNoPlugs indicates that [patch].plugs is empty.
	ErrNoPlugs = errors.New("[patch].plugs lists no replacement modules")
)

// Manifest is the parsed patch.toml.
type Manifest struct {
	Patch struct {
		// Target is the module to be patched.
		Target string `toml:"target"`
		// Output is where the patched module is written; defaults to
		// Target with a .plugged.ilm suffix.
		Output string `toml:"output"`
		// Plugs lists the replacement modules, scanned in order.
		Plugs []string `toml:"plugs"`
	} `toml:"patch"`

	Resolve struct {
		// Modules are additional modules for target-name resolution
		// (base-library catalogs). The target module is always included.
		Modules []string `toml:"modules"`
	} `toml:"resolve"`

	// Dir is the directory the manifest was loaded from; relative paths in
	// the manifest are resolved against it.
	Dir string `toml:"-"`
}

// LoadManifest parses and validates a patch.toml file.
func LoadManifest(path string) (Manifest, error) {
	var m Manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return Manifest{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("patch") {
		return Manifest{}, fmt.Errorf("%s: %w", path, ErrPatchSectionMissing)
	}
	if strings.TrimSpace(m.Patch.Target) == "" {
		return Manifest{}, fmt.Errorf("%s: %w", path, ErrTargetMissing)
	}
	if len(m.Patch.Plugs) == 0 {
		return Manifest{}, fmt.Errorf("%s: %w", path, ErrNoPlugs)
	}
	m.Dir = filepath.Dir(path)
	if m.Patch.Output == "" {
		m.Patch.Output = strings.TrimSuffix(m.Patch.Target, ".ilm") + ".plugged.ilm"
	}
	return m, nil
}

// Abs resolves a manifest-relative path against the manifest directory.
func (m Manifest) Abs(p string) string {
	if filepath.IsAbs(p) || m.Dir == "" {
		return p
	}
	return filepath.Join(m.Dir, p)
}

// TargetPath returns the absolute target module path.
func (m Manifest) TargetPath() string { return m.Abs(m.Patch.Target) }

// OutputPath returns the absolute output module path.
func (m Manifest) OutputPath() string { return m.Abs(m.Patch.Output) }

// PlugPaths returns the absolute replacement module paths in scan order.
func (m Manifest) PlugPaths() []string {
	out := make([]string, len(m.Patch.Plugs))
	for i, p := range m.Patch.Plugs {
		out[i] = m.Abs(p)
	}
	return out
}

// ResolvePaths returns the absolute resolution-context module paths.
func (m Manifest) ResolvePaths() []string {
	out := make([]string, len(m.Resolve.Modules))
	for i, p := range m.Resolve.Modules {
		out[i] = m.Abs(p)
	}
	return out
}

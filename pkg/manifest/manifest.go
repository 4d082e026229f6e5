// Package manifest reads the bits of a Cargo manifest the build pipeline needs
// to find its output artifacts.
package manifest

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/voidshard/wasmbuild/pkg/errors"
)

// DefaultRust is written when a Rust submission carries no manifest.
const DefaultRust = `[package]
name = "user_code"
version = "0.1.0"
edition = "2021"

[lib]
crate-type = ["cdylib"]
`

// Cargo is the subset of Cargo.toml we care about.
type Cargo struct {
	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
	Lib struct {
		Name      string   `toml:"name"`
		CrateType []string `toml:"crate-type"`
	} `toml:"lib"`
}

// Parse decodes a Cargo manifest.
func Parse(text string) (*Cargo, error) {
	c := &Cargo{}
	if _, err := toml.Decode(text, c); err != nil {
		return nil, fmt.Errorf("%w %v", errors.ErrInvalidManifest, err)
	}
	if c.Package.Name == "" && c.Lib.Name == "" {
		return nil, fmt.Errorf("%w no package name", errors.ErrInvalidManifest)
	}
	return c, nil
}

// CrateName is the library target name cargo uses for output files: the [lib]
// name if given, else the package name, with '-' replaced by '_'.
func (c *Cargo) CrateName() string {
	name := c.Lib.Name
	if name == "" {
		name = c.Package.Name
	}
	return strings.ReplaceAll(name, "-", "_")
}

// IsCdylib reports whether the manifest asks for a cdylib (required for wasm-bindgen).
func (c *Cargo) IsCdylib() bool {
	for _, t := range c.Lib.CrateType {
		if t == "cdylib" {
			return true
		}
	}
	return false
}

// ArtifactName is the compiled module filename for the given rustc target,
// relative to the cargo target dir.
func (c *Cargo) ArtifactName(target string) string {
	return filepath.Join(target, "release", c.CrateName()+".wasm")
}

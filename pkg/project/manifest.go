package project

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"
)

// ManifestFileName is the optional per-project override file. When absent,
// every convention falls back to its Cargo default.
const ManifestFileName = "brp.yaml"

// Manifest overrides path conventions a scanned project would otherwise
// assume from a bare Cargo.toml.
type Manifest struct {
	// TargetDir overrides Cargo's "target" build output directory,
	// relative to the project root.
	TargetDir string `yaml:"targetDir,omitempty" json:"targetDir,omitempty" jsonschema:"description=Build output directory relative to the project root; defaults to target"`

	// CargoWorkspace marks this directory as a workspace root even when
	// Cargo.toml has no [workspace] table (e.g. a virtual manifest assembled
	// by a build wrapper). Members are resolved only from a [workspace]
	// members list, so without that table the flag does not change what
	// Scan finds. false means "use Cargo.toml as written".
	CargoWorkspace bool `yaml:"cargoWorkspace,omitempty" json:"cargoWorkspace,omitempty" jsonschema:"description=Treat this directory as a workspace root even without a [workspace] table"`

	// BRPPort overrides the default Bevy Remote Protocol port (15702) a
	// launched target is expected to listen on.
	BRPPort int `yaml:"brpPort,omitempty" json:"brpPort,omitempty" jsonschema:"description=Default BRP port this project's targets listen on,default=15702"`
}

// loadManifest reads brp.yaml from dir if present. A missing file is not an
// error — it returns (nil, nil).
func loadManifest(dir string) (*Manifest, error) {
	path := filepath.Join(dir, ManifestFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &m, nil
}

// GenerateManifestJSONSchema produces a JSON Schema Draft 2020-12 document
// describing brp.yaml, for editors and validators.
func GenerateManifestJSONSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = false

	s := r.Reflect(&Manifest{})
	s.ID = "https://github.com/ormasoftchile/brp-mcp/schemas/brp-manifest-v0.json"
	s.Title = "BRP Project Manifest"
	s.Description = "Schema for the optional brp.yaml per-project override file"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest schema: %w", err)
	}
	return data, nil
}

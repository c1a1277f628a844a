package knowledge

import (
	"encoding/json"
	"os"

	"github.com/m-mizutani/goerr/v2"
)

// Manifest records which source documents have been ingested
type Manifest map[string]bool

// LoadManifest reads the ingest manifest. A missing file is an empty
// manifest, not an error.
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Manifest{}, nil
		}
		return nil, goerr.Wrap(err, "failed to read manifest", goerr.V("path", path))
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, goerr.Wrap(err, "failed to parse manifest", goerr.V("path", path))
	}
	return m, nil
}

// SaveManifest rewrites the ingest manifest
func SaveManifest(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal manifest")
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return goerr.Wrap(err, "failed to write manifest", goerr.V("path", path))
	}
	return nil
}

package render

import (
	"fmt"
	"io"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/paveg/laureate/internal/version"
)

// Manifest lists the rendered charts with the data they were drawn from.
type Manifest struct {
	Generator string          `json:"generator"`
	Charts    []ManifestEntry `json:"charts"`
}

// ManifestEntry describes one artifact. File is relative to the output directory
// so that manifests of identical runs compare equal.
type ManifestEntry struct {
	File       string      `json:"file"`
	Projection *Projection `json:"projection"`
}

// NewManifest builds the manifest of artifacts in render order.
func NewManifest(artifacts []*Artifact) Manifest {
	m := Manifest{Generator: version.UserAgent(), Charts: make([]ManifestEntry, 0, len(artifacts))}
	for _, a := range artifacts {
		m.Charts = append(m.Charts, ManifestEntry{File: filepath.Base(a.Path), Projection: a.Projection})
	}
	return m
}

// WriteManifest writes the manifest of artifacts as indented JSON.
func WriteManifest(w io.Writer, artifacts []*Artifact) error {
	data, err := json.MarshalIndent(NewManifest(artifacts), "", "  ")
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}
	return nil
}

// Package manifest defines the Stage 0 normalization manifest: the
// document-level record of rendered page images that Stage 1 consumes.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
)

// Page is one rendered page image.
type Page struct {
	PageNum  int    `json:"page_num"`
	ImageRef string `json:"image_ref"`
}

// Rendering records the rasterization parameters a manifest was produced
// with. The doc_id does not depend on them.
type Rendering struct {
	Engine    string `json:"engine"`
	DPI       int    `json:"dpi"`
	ColorMode string `json:"color_mode"`
}

// Manifest is the Stage 0 output contract.
type Manifest struct {
	DocID     string    `json:"doc_id"`
	SourcePDF string    `json:"source_pdf"`
	Rendering Rendering `json:"rendering"`
	Pages     []Page    `json:"pages"`
}

// Read loads a manifest from path.
func Read(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest %s: %w", path, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	if m.DocID == "" {
		return Manifest{}, fmt.Errorf("manifest %s: doc_id is empty", path)
	}
	return m, nil
}

// Write stores a manifest at path with stable two-space indentation.
func Write(path string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write manifest %s: %w", path, err)
	}
	return nil
}

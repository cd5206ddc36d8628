// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// Export is the on-disk snapshot of the index.
type Export struct {
	LastRun   *Run       `json:"last_run,omitempty" yaml:"last_run,omitempty"`
	Documents []Document `json:"documents" yaml:"documents"`
}

func (s *Store) snapshot(ctx context.Context) (*Export, error) {
	run, err := s.LastRun(ctx)
	if err != nil {
		return nil, err
	}
	docs, err := s.Documents(ctx)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []Document{}
	}
	return &Export{LastRun: run, Documents: docs}, nil
}

// ExportYAML writes the index snapshot to <dir>/export.yaml.
func (s *Store) ExportYAML(ctx context.Context) error {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(filepath.Join(s.dir, "export.yaml"), data, 0o644)
}

// ExportJSON writes the index snapshot to <dir>/export.json.
func (s *Store) ExportJSON(ctx context.Context) error {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(filepath.Join(s.dir, "export.json"), data, 0o644)
}

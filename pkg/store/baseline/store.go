// Package baseline persists report snapshots on disk, one directory per
// label holding the report artifacts plus a manifest.json. The layout is a
// compatibility contract: comparisons read manifests written months
// earlier, and users inspect snapshots with nothing but shell tools.
package baseline

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/seo-tools/searchledger/pkg/models/domain"
	"github.com/seo-tools/searchledger/pkg/models/store"
)

// ManifestFile is written last when a snapshot is created, so a directory
// without one is a torn snapshot and never served.
const ManifestFile = "manifest.json"

const maxLabelLength = 64

// Labels become directory names, so they are restricted to characters that
// are safe on every filesystem and cannot traverse out of the root.
var labelPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

var ErrInvalidLabel = errors.New("invalid baseline label")

// ValidateLabel rejects labels that cannot serve as a snapshot directory
// name. Errors wrap ErrInvalidLabel so callers can treat them as bad input.
func ValidateLabel(label string) error {
	if label == "" {
		return fmt.Errorf("%w: label is empty", ErrInvalidLabel)
	}
	if len(label) > maxLabelLength {
		return fmt.Errorf("%w: %q exceeds %d characters", ErrInvalidLabel, label, maxLabelLength)
	}
	if !labelPattern.MatchString(label) {
		return fmt.Errorf("%w: %q must start with a letter or digit and may only contain letters, digits, dots, underscores and dashes", ErrInvalidLabel, label)
	}
	return nil
}

// Store keeps snapshots under <root>/<label>/. Creation is serialized by
// the filesystem itself: reserving a label is a single mkdir, which at most
// one concurrent creator wins.
type Store struct {
	root string
}

func NewStore(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create baseline dir %s: %w", root, err)
	}
	return &Store{root: root}, nil
}

func (s *Store) Dir(label string) string {
	return filepath.Join(s.root, label)
}

func (s *Store) ManifestPath(label string) string {
	return filepath.Join(s.root, label, ManifestFile)
}

// Reserve claims the label's directory for a new snapshot. A label that is
// already present, complete or torn, is a conflict.
func (s *Store) Reserve(label string) error {
	dir := s.Dir(label)
	err := os.Mkdir(dir, 0o755)
	if errors.Is(err, fs.ErrExist) {
		return &domain.BaselineConflictError{Label: label, Path: dir}
	}
	if err != nil {
		return fmt.Errorf("reserve baseline %q: %w", label, err)
	}
	return nil
}

// Discard removes a reserved directory after a failed create, so the label
// becomes available again.
func (s *Store) Discard(label string) error {
	if err := os.RemoveAll(s.Dir(label)); err != nil {
		return fmt.Errorf("discard baseline %q: %w", label, err)
	}
	return nil
}

// WriteArtifact stores one report document inside the label's directory,
// indented for hand inspection.
func (s *Store) WriteArtifact(label, name string, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode baseline artifact %s: %w", name, err)
	}
	path := filepath.Join(s.Dir(label), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write baseline artifact %s: %w", name, err)
	}
	return nil
}

func (s *Store) WriteManifest(label string, manifest *store.BaselineManifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encode baseline manifest for %q: %w", label, err)
	}
	if err := os.WriteFile(s.ManifestPath(label), data, 0o644); err != nil {
		return fmt.Errorf("write baseline manifest for %q: %w", label, err)
	}
	return nil
}

func (s *Store) ReadManifest(label string) (*store.BaselineManifest, error) {
	path := s.ManifestPath(label)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &domain.BaselineNotFoundError{Label: label, ManifestPath: path}
	}
	if err != nil {
		return nil, fmt.Errorf("read baseline manifest for %q: %w", label, err)
	}

	var manifest store.BaselineManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("decode baseline manifest for %q: %w", label, err)
	}
	return &manifest, nil
}

// List returns every complete snapshot's manifest. Directories without a
// readable manifest are torn or foreign and are skipped.
func (s *Store) List() ([]*store.BaselineManifest, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("list baseline dir %s: %w", s.root, err)
	}

	var manifests []*store.BaselineManifest
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(s.ManifestPath(entry.Name()))
		if err != nil {
			continue
		}
		var manifest store.BaselineManifest
		if err := json.Unmarshal(data, &manifest); err != nil {
			continue
		}
		manifests = append(manifests, &manifest)
	}
	return manifests, nil
}

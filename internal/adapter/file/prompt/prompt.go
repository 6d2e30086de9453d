package prompt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	domainprompt "github.com/alanyang/iobos/internal/domain/prompt"
	portprompt "github.com/alanyang/iobos/internal/port/prompt"
)

var _ portprompt.Store = (*Store)(nil)

// Store implements port/prompt.Store over a single JSON document on disk.
// The file is re-read on every call so out-of-band edits are picked up.
// Put is an unlocked read-modify-write; concurrent writers race and the later
// rename wins.
type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the location of the backing document.
func (s *Store) Path() string { return s.path }

func (s *Store) Get(ctx context.Context, id domainprompt.AgentID) (domainprompt.Record, error) {
	doc, err := s.GetAll(ctx)
	if err != nil {
		return domainprompt.Record{}, err
	}
	_, r, ok := doc.Lookup(id)
	if !ok {
		return domainprompt.Record{}, fmt.Errorf("agent %q: %w", id, domainprompt.ErrNotFound)
	}
	return r, nil
}

func (s *Store) GetAll(_ context.Context) (domainprompt.Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading prompt document: %w: %w", domainprompt.ErrUnavailable, err)
	}
	var doc domainprompt.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing prompt document: %w: %w", domainprompt.ErrUnavailable, err)
	}
	if doc == nil {
		doc = domainprompt.Document{}
	}
	return doc, nil
}

func (s *Store) Put(ctx context.Context, id domainprompt.AgentID, patch domainprompt.Patch) (domainprompt.Record, error) {
	doc, err := s.GetAll(ctx)
	if err != nil {
		return domainprompt.Record{}, err
	}
	key, existing, ok := doc.Lookup(id)
	if !ok {
		return domainprompt.Record{}, fmt.Errorf("agent %q: %w", id, domainprompt.ErrNotFound)
	}

	merged := patch.Apply(existing)
	doc[key] = merged
	if err := s.write(doc); err != nil {
		return domainprompt.Record{}, err
	}
	return merged, nil
}

// write replaces the whole document. Writing to a sibling temp file and renaming
// keeps readers from ever seeing a half-written file.
func (s *Store) write(doc domainprompt.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding prompt document: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".agent-prompts-*.json")
	if err != nil {
		return fmt.Errorf("creating temp document: %w: %w", domainprompt.ErrUnavailable, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp document: %w: %w", domainprompt.ErrUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp document: %w: %w", domainprompt.ErrUnavailable, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replacing prompt document: %w: %w", domainprompt.ErrUnavailable, err)
	}
	return nil
}

// Seed writes doc to path unless a document already exists there.
func Seed(path string, doc domainprompt.Document) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking prompt document: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating prompt directory: %w", err)
	}
	return New(path).write(doc)
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package alias manages named prompt shortcuts stored in a YAML file.
// An alias expands to a prompt template; "{}" in the template is replaced
// with the user's argument text.
package alias

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrAliasNotFound = errors.New("alias not found")
	ErrInvalidName   = errors.New("alias name must be lowercase letters, digits, and dashes")
)

// =============================================================================
// TYPES
// =============================================================================

// Alias is one named prompt template.
type Alias struct {
	Name      string    `yaml:"name"`
	Template  string    `yaml:"template"`
	CreatedAt time.Time `yaml:"created_at"`
}

// Expand substitutes the argument text into the template. Templates
// without a "{}" placeholder get the argument appended.
func (a Alias) Expand(arg string) string {
	if strings.Contains(a.Template, "{}") {
		return strings.ReplaceAll(a.Template, "{}", arg)
	}
	if arg == "" {
		return a.Template
	}
	return a.Template + " " + arg
}

// store is the on-disk document shape.
type store struct {
	Aliases []Alias `yaml:"aliases"`
}

// =============================================================================
// ALIAS STORE
// =============================================================================

// Store reads and writes the alias file. Every mutation rewrites the whole
// file; alias sets are tiny.
type Store struct {
	path string
}

// NewStore creates a store backed by the given YAML file.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// List returns all aliases sorted by name.
func (s *Store) List() ([]Alias, error) {
	doc, err := s.load()
	if err != nil {
		return nil, err
	}
	sort.Slice(doc.Aliases, func(i, j int) bool {
		return doc.Aliases[i].Name < doc.Aliases[j].Name
	})
	return doc.Aliases, nil
}

// Get returns one alias by name.
func (s *Store) Get(name string) (Alias, error) {
	doc, err := s.load()
	if err != nil {
		return Alias{}, err
	}
	for _, a := range doc.Aliases {
		if a.Name == name {
			return a, nil
		}
	}
	return Alias{}, fmt.Errorf("%w: %s", ErrAliasNotFound, name)
}

// Set creates or replaces an alias.
func (s *Store) Set(name, template string) error {
	if !validName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	doc, err := s.load()
	if err != nil {
		return err
	}

	next := Alias{Name: name, Template: template, CreatedAt: time.Now()}
	replaced := false
	for i, a := range doc.Aliases {
		if a.Name == name {
			next.CreatedAt = a.CreatedAt
			doc.Aliases[i] = next
			replaced = true
			break
		}
	}
	if !replaced {
		doc.Aliases = append(doc.Aliases, next)
	}
	return s.save(doc)
}

// Delete removes an alias by name.
func (s *Store) Delete(name string) error {
	doc, err := s.load()
	if err != nil {
		return err
	}
	for i, a := range doc.Aliases {
		if a.Name == name {
			doc.Aliases = append(doc.Aliases[:i], doc.Aliases[i+1:]...)
			return s.save(doc)
		}
	}
	return fmt.Errorf("%w: %s", ErrAliasNotFound, name)
}

// Expand resolves "name arg..." input into the expanded prompt.
func (s *Store) Expand(input string) (string, error) {
	name, arg, _ := strings.Cut(strings.TrimSpace(input), " ")
	a, err := s.Get(name)
	if err != nil {
		return "", err
	}
	return a.Expand(strings.TrimSpace(arg)), nil
}

// =============================================================================
// FILE I/O
// =============================================================================

func (s *Store) load() (*store, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &store{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("alias: read %s: %w", s.path, err)
	}

	var doc store
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("alias: parse %s: %w", s.path, err)
	}
	return &doc, nil
}

func (s *Store) save(doc *store) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("alias: create dir: %w", err)
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("alias: encode: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("alias: write %s: %w", s.path, err)
	}
	return nil
}

// validName accepts lowercase letters, digits, and dashes, starting with
// a letter.
func validName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9' && i > 0:
		case r == '-' && i > 0:
		default:
			return false
		}
	}
	return true
}

// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package tagging

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/leeeee/tli-bd-assistant/calcerr"
)

// RegistrySource abstracts where registry bytes come from (embedded asset,
// host-supplied file, test fixture) so LoadFromSource can be exercised
// against a mock without a real file on disk.
type RegistrySource interface {
	Read() ([]byte, error)
}

// ReaderSource adapts an io.Reader into a RegistrySource.
type ReaderSource struct {
	R io.Reader
}

// Read implements RegistrySource.
func (s ReaderSource) Read() ([]byte, error) {
	return io.ReadAll(s.R)
}

// LoadFromSource reads data from src and falls back to the hard-coded
// registry on any read or parse failure, mirroring LoadOrFallback but for
// callers that only have a RegistrySource (e.g. the host's asset loader)
// rather than bytes already in hand.
func LoadFromSource(src RegistrySource) *Registry {
	data, err := src.Read()
	if err != nil {
		return Fallback()
	}
	return LoadOrFallback(data)
}

// TagDefinition is one entry of a registry source file. Loading is
// two-pass: names and ids are interned in a first pass, then parent names
// are resolved to ids in a second pass once every name is known.
type TagDefinition struct {
	Name        string   `json:"name" yaml:"name"`
	ID          uint32   `json:"id" yaml:"id"`
	Category    string   `json:"category" yaml:"category"`
	Parents     []string `json:"parents" yaml:"parents"`
	DisplayName string   `json:"displayName" yaml:"displayName"`
}

// LoadJSON parses a JSON registry document (a top-level array of
// TagDefinition) into a precomputed Registry.
func LoadJSON(data []byte) (*Registry, error) {
	var defs []TagDefinition
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, calcerr.WrapWithCode(err, calcerr.CodeTagRegistry, "parsing tag registry JSON")
	}
	return buildFromDefinitions(defs)
}

// LoadYAML parses a YAML registry document into a precomputed Registry.
func LoadYAML(data []byte) (*Registry, error) {
	var defs []TagDefinition
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, calcerr.WrapWithCode(err, calcerr.CodeTagRegistry, "parsing tag registry YAML")
	}
	return buildFromDefinitions(defs)
}

// LoadOrFallback tries, in order, LoadJSON then LoadYAML against data, and
// returns the hard-coded Fallback registry if both fail, so a malformed
// registry file never prevents the engine from starting.
func LoadOrFallback(data []byte) *Registry {
	if r, err := LoadJSON(data); err == nil {
		return r
	}
	if r, err := LoadYAML(data); err == nil {
		return r
	}
	return Fallback()
}

func buildFromDefinitions(defs []TagDefinition) (*Registry, error) {
	r := NewRegistry()

	// First pass: intern every name, skipping blank or "_"-prefixed entries
	// (comment/reserved rows in registry files).
	for _, def := range defs {
		if def.Name == "" || def.Name[0] == '_' {
			continue
		}
		r.Register(def.Name, def.ID)
	}

	// Second pass: resolve parent names to ids now that every name is known.
	for _, def := range defs {
		if def.Name == "" || def.Name[0] == '_' {
			continue
		}
		if len(def.Parents) == 0 {
			continue
		}
		parentIDs := make([]uint32, 0, len(def.Parents))
		for _, parentName := range def.Parents {
			parentID, ok := r.IDOf(parentName)
			if !ok {
				return nil, calcerr.TagRegistry("tag %q references unknown parent %q", def.Name, parentName)
			}
			parentIDs = append(parentIDs, parentID)
		}
		r.SetParents(r.MustID(def.Name), parentIDs)
	}

	if err := r.Precompute(); err != nil {
		return nil, err
	}
	return r, nil
}

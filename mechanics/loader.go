// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package mechanics

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/leeeee/tli-bd-assistant/calcerr"
	"github.com/leeeee/tli-bd-assistant/calcmodel"
)

// definitionDoc mirrors a mechanic-definition source file: a top-level list
// of definitions, same JSON/YAML double-format loading convention as
// tagging.LoadJSON/LoadYAML.
type definitionDoc struct {
	ID                 string             `json:"id" yaml:"id"`
	Category           string             `json:"category" yaml:"category"`
	TagKey             string             `json:"tagKey" yaml:"tagKey"`
	DefaultMaxStacks   uint32             `json:"defaultMaxStacks" yaml:"defaultMaxStacks"`
	BaseEffectPerStack map[string]float64 `json:"baseEffectPerStack" yaml:"baseEffectPerStack"`
}

// LoadDefinitionsJSON parses a JSON document (a top-level array of mechanic
// definitions) into calcmodel.MechanicDefinition values.
func LoadDefinitionsJSON(data []byte) ([]calcmodel.MechanicDefinition, error) {
	var docs []definitionDoc
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, calcerr.WrapWithCode(err, calcerr.CodeInvalidInput, "parsing mechanic definitions JSON")
	}
	return buildDefinitions(docs)
}

// LoadDefinitionsYAML parses a YAML document into calcmodel.MechanicDefinition
// values.
func LoadDefinitionsYAML(data []byte) ([]calcmodel.MechanicDefinition, error) {
	var docs []definitionDoc
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, calcerr.WrapWithCode(err, calcerr.CodeInvalidInput, "parsing mechanic definitions YAML")
	}
	return buildDefinitions(docs)
}

func buildDefinitions(docs []definitionDoc) ([]calcmodel.MechanicDefinition, error) {
	out := make([]calcmodel.MechanicDefinition, 0, len(docs))
	for _, d := range docs {
		if d.ID == "" {
			return nil, calcerr.InvalidInput("mechanic definition missing id")
		}
		out = append(out, calcmodel.MechanicDefinition{
			ID:                 d.ID,
			Category:           d.Category,
			TagKey:             d.TagKey,
			DefaultMaxStacks:   d.DefaultMaxStacks,
			BaseEffectPerStack: d.BaseEffectPerStack,
		})
	}
	return out, nil
}

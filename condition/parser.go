// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package condition

import (
	"strconv"
	"strings"

	"github.com/leeeee/tli-bd-assistant/calcerr"
)

// Parse parses an expression string into a Condition tree. Operator
// precedence is, from loosest to tightest binding: || then && then unary !,
// each split found outside parenthesized spans so "(a || b) && c" groups as
// expected. An empty string or the literal "true"/"false" resolves to the
// corresponding constant leaf.
func Parse(expr string) (*Condition, error) {
	expr = strings.TrimSpace(expr)

	if expr == "" || expr == "true" {
		return True, nil
	}
	if expr == "false" {
		return False, nil
	}

	if idx := findLogicalOp(expr, "||"); idx >= 0 {
		left, err := Parse(expr[:idx])
		if err != nil {
			return nil, err
		}
		right, err := Parse(expr[idx+2:])
		if err != nil {
			return nil, err
		}
		return &Condition{Kind: KindOr, Left: left, Right: right}, nil
	}

	if idx := findLogicalOp(expr, "&&"); idx >= 0 {
		left, err := Parse(expr[:idx])
		if err != nil {
			return nil, err
		}
		right, err := Parse(expr[idx+2:])
		if err != nil {
			return nil, err
		}
		return &Condition{Kind: KindAnd, Left: left, Right: right}, nil
	}

	if strings.HasPrefix(expr, "!") {
		inner, err := Parse(expr[1:])
		if err != nil {
			return nil, err
		}
		return &Condition{Kind: KindNot, Inner: inner}, nil
	}

	if strings.HasPrefix(expr, "(") && strings.HasSuffix(expr, ")") {
		return Parse(expr[1 : len(expr)-1])
	}

	switch {
	case strings.HasPrefix(expr, "has_tag("):
		return parseHasTag(expr)
	case strings.HasPrefix(expr, "has_any_tag("):
		return parseHasAnyTag(expr)
	case strings.HasPrefix(expr, "has_all_tags("):
		return parseHasAllTags(expr)
	case strings.HasPrefix(expr, "mechanic_active("):
		return parseMechanicActive(expr)
	case strings.HasPrefix(expr, "mechanic_stacks("):
		return parseMechanicStacks(expr)
	case strings.HasPrefix(expr, "per_stat("):
		return parsePerStat(expr)
	}

	return parseComparison(expr)
}

// findLogicalOp finds the leftmost occurrence of op outside any
// parenthesized span, or -1 if op does not occur at depth 0.
func findLogicalOp(expr string, op string) int {
	depth := 0
	for i := 0; i < len(expr); i++ {
		switch expr[i] {
		case '(':
			depth++
		case ')':
			depth--
		default:
			if depth == 0 && i+len(op) <= len(expr) && expr[i:i+len(op)] == op {
				return i
			}
		}
	}
	return -1
}

func unwrapCall(expr, prefix string) (string, error) {
	inner, ok := strings.CutPrefix(expr, prefix)
	if !ok {
		return "", calcerr.InvalidInput("malformed call: %s", expr)
	}
	inner, ok = strings.CutSuffix(inner, ")")
	if !ok {
		return "", calcerr.InvalidInput("malformed call, missing closing paren: %s", expr)
	}
	return inner, nil
}

func unquote(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"`)
	s = strings.Trim(s, "'")
	return s
}

func parseHasTag(expr string) (*Condition, error) {
	inner, err := unwrapCall(expr, "has_tag(")
	if err != nil {
		return nil, err
	}
	return &Condition{Kind: KindHasTag, Tag: unquote(inner)}, nil
}

func parseTagList(inner string) []string {
	parts := strings.Split(inner, ",")
	tags := make([]string, len(parts))
	for i, p := range parts {
		tags[i] = unquote(p)
	}
	return tags
}

func parseHasAnyTag(expr string) (*Condition, error) {
	inner, err := unwrapCall(expr, "has_any_tag(")
	if err != nil {
		return nil, err
	}
	return &Condition{Kind: KindHasAnyTag, Tags: parseTagList(inner)}, nil
}

func parseHasAllTags(expr string) (*Condition, error) {
	inner, err := unwrapCall(expr, "has_all_tags(")
	if err != nil {
		return nil, err
	}
	return &Condition{Kind: KindHasAllTags, Tags: parseTagList(inner)}, nil
}

func parseMechanicActive(expr string) (*Condition, error) {
	inner, err := unwrapCall(expr, "mechanic_active(")
	if err != nil {
		return nil, err
	}
	return &Condition{Kind: KindMechanicActive, MechanicID: unquote(inner)}, nil
}

// comparisonOps is tried in this order so two-character operators are
// matched before their single-character prefixes.
var comparisonOps = []string{"<=", ">=", "!=", "==", "<", ">"}

func parseMechanicStacks(expr string) (*Condition, error) {
	closeParen := strings.IndexByte(expr, ')')
	if closeParen < 0 {
		return nil, calcerr.InvalidInput("mechanic_stacks: missing closing paren: %s", expr)
	}
	funcPart := expr[:closeParen+1]
	comparePart := strings.TrimSpace(expr[closeParen+1:])

	inner, err := unwrapCall(funcPart, "mechanic_stacks(")
	if err != nil {
		return nil, err
	}
	mechanicID := unquote(inner)

	for _, opStr := range comparisonOps {
		idx := strings.Index(comparePart, opStr)
		if idx < 0 {
			continue
		}
		op, _ := ParseCompareOp(opStr)
		valueStr := strings.TrimSpace(comparePart[idx+len(opStr):])
		value, err := strconv.ParseUint(valueStr, 10, 32)
		if err != nil {
			return nil, calcerr.InvalidInput("mechanic_stacks: invalid number %q", valueStr)
		}
		return &Condition{Kind: KindMechanicStacks, MechanicID: mechanicID, Op: op, Stacks: uint32(value)}, nil
	}

	// No comparison suffix: bare mechanic_stacks(...) is shorthand for
	// "stacks > 0".
	return &Condition{Kind: KindMechanicStacks, MechanicID: mechanicID, Op: OpGt, Stacks: 0}, nil
}

func parsePerStat(expr string) (*Condition, error) {
	inner, err := unwrapCall(expr, "per_stat(")
	if err != nil {
		return nil, err
	}
	parts := strings.SplitN(inner, ",", 2)
	if len(parts) != 2 {
		return nil, calcerr.InvalidInput("per_stat requires 2 arguments: %s", expr)
	}
	stat := unquote(parts[0])
	per, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, calcerr.InvalidInput("per_stat: invalid number %q", parts[1])
	}
	return &Condition{Kind: KindPerStat, Key: stat, Value: per}, nil
}

func parseComparison(expr string) (*Condition, error) {
	for _, opStr := range comparisonOps {
		idx := strings.Index(expr, opStr)
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(expr[:idx])
		valueStr := strings.TrimSpace(expr[idx+len(opStr):])

		if valueStr == "true" || valueStr == "false" {
			expected := valueStr == "true"
			switch opStr {
			case "==":
				return &Condition{Kind: KindFlag, Key: key, Expected: expected}, nil
			case "!=":
				return &Condition{Kind: KindFlag, Key: key, Expected: !expected}, nil
			}
		}

		if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
			op, ok := ParseCompareOp(opStr)
			if !ok {
				return nil, calcerr.InvalidInput("invalid operator: %s", opStr)
			}
			return &Condition{Kind: KindCompare, Key: key, Op: op, Value: value}, nil
		}

		return nil, calcerr.InvalidInput("cannot parse value: %s", valueStr)
	}

	// A bare identifier is shorthand for "this flag is true".
	return &Condition{Kind: KindFlag, Key: expr, Expected: true}, nil
}

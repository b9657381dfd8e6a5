// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package calcerr

import "strings"

// Accumulator collects every structural problem found while validating a
// CalculatorInput so the host gets one error describing every bad field,
// rather than failing on the first one found. An Accumulator is a
// short-lived value the codec constructs, fills, and resolves within a
// single validation pass.
type Accumulator struct {
	problems []*Error
}

// Add records a problem. A nil error is ignored so call sites can pass the
// result of a fallible helper directly.
func (a *Accumulator) Add(err error) {
	if err == nil {
		return
	}
	var e *Error
	if as, ok := err.(*Error); ok {
		e = as
	} else {
		e = Wrap(err, err.Error())
	}
	a.problems = append(a.problems, e)
}

// Addf records a formatted CodeInvalidInput problem.
func (a *Accumulator) Addf(format string, args ...any) {
	a.Add(InvalidInput(format, args...))
}

// HasErrors reports whether any problem was recorded.
func (a *Accumulator) HasErrors() bool {
	return len(a.problems) > 0
}

// Err resolves the accumulator into a single error, or nil if nothing was
// recorded. Multiple problems are joined into one CodeInvalidInput error
// whose message lists each one and whose Meta carries the full slice for
// programmatic inspection.
func (a *Accumulator) Err() error {
	if len(a.problems) == 0 {
		return nil
	}
	if len(a.problems) == 1 {
		return a.problems[0]
	}

	msgs := make([]string, len(a.problems))
	for i, p := range a.problems {
		msgs[i] = p.Error()
	}

	return New(CodeInvalidInput, strings.Join(msgs, "; "), WithMeta("problems", a.problems))
}

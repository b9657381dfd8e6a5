// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package calcerr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/leeeee/tli-bd-assistant/calcerr"
)

type ErrorsTestSuite struct {
	suite.Suite
}

func TestErrorsSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}

func (s *ErrorsTestSuite) TestNewAndCode() {
	err := calcerr.InvalidInput("slot %q is not recognized", "weapon_third")
	s.Equal(calcerr.CodeInvalidInput, calcerr.GetCode(err))
	s.True(calcerr.IsInvalidInput(err))
	s.Contains(err.Error(), "weapon_third")
}

func (s *ErrorsTestSuite) TestWrapPreservesCode() {
	base := calcerr.TagRegistry("cycle detected at tag %d", 7)
	wrapped := calcerr.Wrap(base, "loading registry")
	s.Equal(calcerr.CodeTagRegistry, calcerr.GetCode(wrapped))
	s.True(errors.Is(wrapped, wrapped))
	s.ErrorIs(wrapped.Unwrap(), base)
}

func (s *ErrorsTestSuite) TestWrapWithCodeOverrides() {
	base := errors.New("floor division by zero")
	wrapped := calcerr.WrapWithCode(base, calcerr.CodeCalculation, "per_stat scaling")
	s.Equal(calcerr.CodeCalculation, calcerr.GetCode(wrapped))
}

func (s *ErrorsTestSuite) TestWithMeta() {
	err := calcerr.New(calcerr.CodeInvalidInput, "bad value", calcerr.WithMeta("field", "context_values.fighting_will"))
	meta := calcerr.GetMeta(err)
	s.Equal("context_values.fighting_will", meta["field"])
}

func (s *ErrorsTestSuite) TestGetCodeOnPlainError() {
	s.Equal(calcerr.CodeCalculation, calcerr.GetCode(errors.New("plain")))
}

func (s *ErrorsTestSuite) TestAccumulatorJoinsMultiple() {
	var acc calcerr.Accumulator
	s.False(acc.HasErrors())
	s.Nil(acc.Err())

	acc.Addf("item %q has unknown slot %q", "sword-1", "pocket")
	acc.Addf("context_values.%s is not finite", "fighting_will")

	s.True(acc.HasErrors())
	err := acc.Err()
	s.Require().Error(err)
	s.Contains(err.Error(), "sword-1")
	s.Contains(err.Error(), "fighting_will")
	s.Equal(calcerr.CodeInvalidInput, calcerr.GetCode(err))
}

func (s *ErrorsTestSuite) TestAccumulatorSingleErrorPassesThrough() {
	var acc calcerr.Accumulator
	acc.Add(calcerr.InvalidInput("only one problem"))
	err := acc.Err()
	s.Require().Error(err)
	s.Equal("only one problem", err.Error())
}

func (s *ErrorsTestSuite) TestAccumulatorIgnoresNil() {
	var acc calcerr.Accumulator
	acc.Add(nil)
	s.False(acc.HasErrors())
}

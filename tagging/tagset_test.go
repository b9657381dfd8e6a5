// Copyright (C) 2024 Kirk Diggler
// SPDX-License-Identifier: GPL-3.0-or-later

package tagging_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/leeeee/tli-bd-assistant/tagging"
)

type TagSetTestSuite struct {
	suite.Suite
}

func TestTagSetSuite(t *testing.T) {
	suite.Run(t, new(TagSetTestSuite))
}

func (s *TagSetTestSuite) TestInsertAndContains() {
	set := tagging.NewTagSet(8)
	s.False(set.Contains(3))
	set.Insert(3)
	s.True(set.Contains(3))
}

func (s *TagSetTestSuite) TestZeroValueIsUsable() {
	var set tagging.TagSet
	s.True(set.IsEmpty())
	set.Insert(5)
	s.True(set.Contains(5))
}

func (s *TagSetTestSuite) TestUnion() {
	a := tagging.NewTagSet(8)
	a.Insert(1)
	b := tagging.NewTagSet(8)
	b.Insert(2)

	a.Union(b)
	s.True(a.Contains(1))
	s.True(a.Contains(2))
}

func (s *TagSetTestSuite) TestContainsAllEmptyOtherIsTrivial() {
	a := tagging.NewTagSet(8)
	var empty tagging.TagSet
	s.True(a.ContainsAll(empty))
}

func (s *TagSetTestSuite) TestContainsAllSubset() {
	a := tagging.NewTagSet(8)
	a.Insert(1)
	a.Insert(2)

	subset := tagging.NewTagSet(8)
	subset.Insert(1)
	s.True(a.ContainsAll(subset))

	notSubset := tagging.NewTagSet(8)
	notSubset.Insert(5)
	s.False(a.ContainsAll(notSubset))
}

func (s *TagSetTestSuite) TestContainsAny() {
	a := tagging.NewTagSet(8)
	a.Insert(1)
	b := tagging.NewTagSet(8)
	b.Insert(1)
	b.Insert(2)
	s.True(a.ContainsAny(b))

	c := tagging.NewTagSet(8)
	c.Insert(7)
	s.False(a.ContainsAny(c))
}

func (s *TagSetTestSuite) TestCloneIsIndependent() {
	a := tagging.NewTagSet(8)
	a.Insert(1)
	clone := a.Clone()
	clone.Insert(2)

	s.False(a.Contains(2))
	s.True(clone.Contains(2))
}

func (s *TagSetTestSuite) TestIDsAscending() {
	a := tagging.NewTagSet(8)
	a.Insert(5)
	a.Insert(1)
	a.Insert(3)
	s.Equal([]uint32{1, 3, 5}, a.IDs())
}

//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License
//  included in the file licenses/BSL-Couchbase.txt.  As of the Change Date
//  specified in that file, in accordance with the Business Source License,
//  use of this software will be governed by the Apache License, Version 2.0,
//  included in the file licenses/APL2.txt.

package plan

import (
	"fmt"

	"github.com/docflow/pipeline/errors"
	"github.com/docflow/pipeline/value"
)

/*
Projections is the ordered list of dotted attribute paths a scan
produces instead of whole documents.
*/
type Projections []string

/*
Validate rejects empty or malformed paths, duplicates, and a path
nested under another projected path.
*/
func (this Projections) Validate() errors.Error {
	paths := make([]*value.Path, len(this))
	for i, p := range this {
		path, ok := value.NewPath(p)
		if !ok {
			return errors.NewInvalidProjectionsError(fmt.Sprintf("malformed attribute path %q", p))
		}
		for _, prev := range paths[:i] {
			if prev.String() == p {
				return errors.NewInvalidProjectionsError(fmt.Sprintf("duplicate attribute path %q", p))
			}
			if prev.IsPrefixOf(path) || path.IsPrefixOf(prev) {
				return errors.NewInvalidProjectionsError(fmt.Sprintf("attribute paths %q and %q overlap",
					prev.String(), p))
			}
		}
		paths[i] = path
	}
	return nil
}

/*
CoveringPositions maps each projection to its position among fields,
the attributes held in an index entry. It returns nil unless every
projection is found.
*/
func (this Projections) CoveringPositions(fields []string) []int {
	if len(this) == 0 {
		return nil
	}
	rv := make([]int, len(this))
outer:
	for i, p := range this {
		for j, f := range fields {
			if f == p {
				rv[i] = j
				continue outer
			}
		}
		return nil
	}
	return rv
}

//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package value

import (
	"bytes"
)

/*
Collate orders values null < boolean < number < string < array <
object. Arrays and objects compare by their encoding.
*/
func Collate(a, b Value) int {
	ta, tb := a.Type(), b.Type()
	if ta != tb {
		if ta < tb {
			return -1
		}
		return 1
	}
	switch ta {
	case BOOLEAN:
		x, y := a.Actual().(bool), b.Actual().(bool)
		if x == y {
			return 0
		} else if !x {
			return -1
		}
		return 1
	case NUMBER:
		x, y := a.Actual().(float64), b.Actual().(float64)
		if x < y {
			return -1
		} else if x > y {
			return 1
		}
		return 0
	case STRING:
		x, y := a.Actual().(string), b.Actual().(string)
		if x < y {
			return -1
		} else if x > y {
			return 1
		}
		return 0
	case ARRAY, OBJECT:
		return bytes.Compare(a.Bytes(), b.Bytes())
	}
	return 0
}

/*
CollateAll compares two equally long lists of values lexicographically.
*/
func CollateAll(a, b []Value) int {
	for i := range a {
		if c := Collate(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

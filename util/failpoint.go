//  Copyright 2023-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package util

import (
	"sync"

	atomic "github.com/couchbase/go-couchbase/platform"
)

// Named failure points let tests force an error at a precise step of
// execution. Checking is a single atomic load while none are armed.

var failurePoints struct {
	sync.RWMutex
	armed  atomic.AlignedInt64
	points map[string]int
}

// SetFailurePoint arms name for the next count checks; a count <= 0 keeps it
// armed until cleared.
func SetFailurePoint(name string, count int) {
	failurePoints.Lock()
	defer failurePoints.Unlock()
	if failurePoints.points == nil {
		failurePoints.points = make(map[string]int, 4)
	}
	if _, ok := failurePoints.points[name]; !ok {
		atomic.AddInt64(&failurePoints.armed, 1)
	}
	failurePoints.points[name] = count
}

func ClearFailurePoint(name string) {
	failurePoints.Lock()
	defer failurePoints.Unlock()
	if _, ok := failurePoints.points[name]; ok {
		delete(failurePoints.points, name)
		atomic.AddInt64(&failurePoints.armed, -1)
	}
}

func ClearAllFailurePoints() {
	failurePoints.Lock()
	defer failurePoints.Unlock()
	failurePoints.points = nil
	atomic.StoreInt64(&failurePoints.armed, 0)
}

// ShouldFail reports whether the named point is armed, consuming one use.
func ShouldFail(name string) bool {
	if atomic.LoadInt64(&failurePoints.armed) == 0 {
		return false
	}
	failurePoints.Lock()
	defer failurePoints.Unlock()
	count, ok := failurePoints.points[name]
	if !ok {
		return false
	}
	if count > 0 {
		count--
		if count == 0 {
			delete(failurePoints.points, name)
			atomic.AddInt64(&failurePoints.armed, -1)
		} else {
			failurePoints.points[name] = count
		}
	}
	return true
}

//  Copyright 2023-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package util

import (
	"testing"
)

func TestFastPool(t *testing.T) {
	var pool FastPool
	allocated := 0
	NewFastPool(&pool, func() interface{} {
		allocated++
		return make([]int, 0, 8)
	})

	a := pool.Get().([]int)
	if allocated != 1 {
		t.Fatalf("expected one allocation, got %v", allocated)
	}
	pool.Put(a)
	if pool.Size() != 1 {
		t.Fatalf("expected one pooled entry, got %v", pool.Size())
	}
	_ = pool.Get().([]int)
	if allocated != 1 {
		t.Fatalf("pooled entry not reused, %v allocations", allocated)
	}
	if pool.Size() != 0 {
		t.Fatalf("expected empty pool, got %v", pool.Size())
	}
}

func TestFailurePoints(t *testing.T) {
	defer ClearAllFailurePoints()

	if ShouldFail("test.point") {
		t.Fatalf("unarmed point fired")
	}
	SetFailurePoint("test.point", 2)
	if !ShouldFail("test.point") || !ShouldFail("test.point") {
		t.Fatalf("armed point did not fire")
	}
	if ShouldFail("test.point") {
		t.Fatalf("point fired past its count")
	}

	SetFailurePoint("test.sticky", 0)
	for i := 0; i < 5; i++ {
		if !ShouldFail("test.sticky") {
			t.Fatalf("sticky point stopped firing at %v", i)
		}
	}
	ClearFailurePoint("test.sticky")
	if ShouldFail("test.sticky") {
		t.Fatalf("cleared point fired")
	}
}

func TestOnce(t *testing.T) {
	var once Once
	n := 0
	once.Do(func() { n++ })
	once.Do(func() { n++ })
	if n != 1 {
		t.Fatalf("expected 1 call, got %v", n)
	}
}

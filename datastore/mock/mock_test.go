//  Copyright 2013-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package mock

import (
	"testing"

	"github.com/docflow/pipeline/datastore"
	"github.com/docflow/pipeline/value"
)

func TestMock(t *testing.T) {
	s, err := NewDatastore("mock:keyspaces=2,items=25,groups=5")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if s.URL() != "mock:keyspaces=2,items=25,groups=5" {
		t.Fatalf("expected store URL to be same, got %v", s.URL())
	}

	n, err := s.KeyspaceNames()
	if err != nil || len(n) != 2 {
		t.Fatalf("expected 2 keyspaces, got %v", n)
	}

	b, err := s.KeyspaceByName("not-a-keyspace")
	if err == nil || b != nil {
		t.Fatalf("expected not-a-keyspace")
	}

	b, err = s.KeyspaceByName("b1")
	if err != nil || b == nil {
		t.Fatalf("expected keyspace b1")
	}
	if c, _ := b.Count(); c != 25 {
		t.Fatalf("expected 25 items, got %v", c)
	}

	snap, err := b.Snapshot()
	if err != nil {
		t.Fatalf("failed to take snapshot: %v", err)
	}
	defer snap.Release()

	it, _ := snap.Scan()
	count := 0
	more := true
	for more {
		more, err = it.Next(func(id datastore.LocalDocumentId, raw []byte) {
			doc := value.NewOwnedValue(raw)
			if i, _ := doc.Field("i"); i.Actual() != float64(id) {
				t.Fatalf("document %v has i = %v", id, i)
			}
			count++
		}, 10)
		if err != nil {
			t.Fatalf("scan failed: %v", err)
		}
	}
	if count != 25 {
		t.Fatalf("expected 25 documents scanned, got %v", count)
	}

	found, _ := snap.Lookup(7, func(id datastore.LocalDocumentId, raw []byte) {
		key := snap.Resolver().Key(id, value.NewOwnedValue(raw))
		if key.Actual() != "k7" {
			t.Fatalf("unexpected key %v", key)
		}
		if docId := snap.Resolver().Id(id, value.NewOwnedValue(raw)); docId.Actual() != "b1/k7" {
			t.Fatalf("unexpected id %v", docId)
		}
	})
	if !found {
		t.Fatalf("document 7 not found")
	}
	if found, _ = snap.Lookup(25, func(datastore.LocalDocumentId, []byte) {}); found {
		t.Fatalf("document past the end found")
	}
}

func TestMockIndex(t *testing.T) {
	s, _ := NewDatastore("mock:items=12,groups=3")
	b, _ := s.KeyspaceByName("b0")
	ix, err := b.IndexByName(GROUP_INDEX)
	if err != nil {
		t.Fatalf("expected index %v: %v", GROUP_INDEX, err)
	}
	snap, _ := b.Snapshot()
	defer snap.Release()

	it, _ := ix.Scan(snap)
	var prev []interface{}
	for more := true; more; {
		more, _ = it.NextCovering(func(id datastore.LocalDocumentId, entry value.Value) {
			cur := entry.Actual().([]interface{})
			if cur[1] != float64(id) {
				t.Fatalf("entry %v does not belong to document %v", cur, id)
			}
			if prev != nil && (prev[0].(float64) > cur[0].(float64) ||
				prev[0] == cur[0] && prev[1].(float64) > cur[1].(float64)) {
				t.Fatalf("entries out of order: %v before %v", prev, cur)
			}
			prev = cur
		}, 5)
	}

	primary, _ := b.IndexByName(PRIMARY_INDEX)
	it, _ = primary.Scan(snap)
	it.NextCovering(func(id datastore.LocalDocumentId, entry value.Value) {
		if entry.Type() != value.STRING {
			t.Fatalf("single field index entry is %v, not a scalar", entry.Type())
		}
	}, 1)
}

func TestNonSynchronousSnapshot(t *testing.T) {
	b := NewKeyspace("docs", []interface{}{
		map[string]interface{}{"_key": "a", "v": 1},
		map[string]interface{}{"_key": "b", "v": 2},
	}, nil, false)

	snap, _ := b.Snapshot()
	if snap.Synchronous() {
		t.Fatalf("expected non-synchronous snapshot")
	}
	var first []byte
	it, _ := snap.Scan()
	it.Next(func(id datastore.LocalDocumentId, raw []byte) {
		if first == nil {
			first = raw
		}
	}, 2)
	if v, _ := value.NewOwnedValue(first).Field("v"); v.Actual() != float64(2) {
		t.Fatalf("scratch buffer not reused: %s", first)
	}

	snap.Release()
	if _, err := snap.Scan(); err == nil {
		t.Fatalf("scan of released snapshot succeeded")
	}
}

func TestBadParams(t *testing.T) {
	for _, url := range []string{"mock:items", "mock:items=x", "mock:items=-1"} {
		if _, err := NewDatastore(url); err == nil {
			t.Errorf("expected %v to fail", url)
		}
	}
}

//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package mock

import (
	"sort"

	"github.com/docflow/pipeline/datastore"
	"github.com/docflow/pipeline/errors"
	"github.com/docflow/pipeline/value"
)

type indexEntry struct {
	id    datastore.LocalDocumentId
	keys  []value.Value
	entry value.Value
}

// index is a sorted, fully materialized secondary index. Documents
// missing an indexed attribute index it as null.
type index struct {
	name     string
	keyspace *keyspace
	fields   []string
	entries  []indexEntry
}

func newIndex(name string, b *keyspace, fields []string) *index {
	rv := &index{name: name, keyspace: b, fields: fields}
	paths := make([]*value.Path, len(fields))
	for i, f := range fields {
		paths[i], _ = value.NewPath(f)
	}
	rv.entries = make([]indexEntry, len(b.docs))
	for i, raw := range b.docs {
		doc := value.NewOwnedValue(raw)
		keys := make([]value.Value, len(paths))
		for j, p := range paths {
			keys[j], _ = doc.Find(p)
		}
		var entry value.Value
		if len(keys) == 1 {
			entry = keys[0]
		} else {
			entry = value.NewArrayValue(keys)
		}
		rv.entries[i] = indexEntry{id: datastore.LocalDocumentId(i), keys: keys, entry: entry}
	}
	sort.SliceStable(rv.entries, func(i, j int) bool {
		if c := value.CollateAll(rv.entries[i].keys, rv.entries[j].keys); c != 0 {
			return c < 0
		}
		return rv.entries[i].id < rv.entries[j].id
	})
	return rv
}

func (pi *index) Name() string {
	return pi.name
}

func (pi *index) Keyspace() string {
	return pi.keyspace.name
}

func (pi *index) Fields() []string {
	return pi.fields
}

func (pi *index) Scan(s datastore.Snapshot) (datastore.IndexIterator, errors.Error) {
	if s.Keyspace() != pi.keyspace.name {
		return nil, errors.NewSnapshotError(nil, "snapshot of keyspace "+s.Keyspace()+
			" used to scan index "+pi.name)
	}
	return &indexIterator{index: pi}, nil
}

type indexIterator struct {
	index *index
	next  int
}

func (it *indexIterator) NextCovering(cb datastore.CoveringCallback, atMost int) (bool, errors.Error) {
	entries := it.index.entries
	for n := 0; n < atMost && it.next < len(entries); n++ {
		cb(entries[it.next].id, entries[it.next].entry)
		it.next++
	}
	return it.next < len(entries), nil
}

func (it *indexIterator) Next(cb datastore.IdCallback, atMost int) (bool, errors.Error) {
	entries := it.index.entries
	for n := 0; n < atMost && it.next < len(entries); n++ {
		cb(entries[it.next].id)
		it.next++
	}
	return it.next < len(entries), nil
}

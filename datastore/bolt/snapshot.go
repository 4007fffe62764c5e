//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package bolt

import (
	"sort"

	"go.etcd.io/bbolt"

	"github.com/docflow/pipeline/datastore"
	"github.com/docflow/pipeline/errors"
	"github.com/docflow/pipeline/logging"
	"github.com/docflow/pipeline/value"
)

// snapshot is a read transaction. It must only be used from the
// goroutine driving the pipeline that took it.
type snapshot struct {
	keyspace *keyspace
	tx       *bbolt.Tx
	docs     *bbolt.Bucket
	lease    *value.Lease
	resolver datastore.Resolver
	buf      []byte
}

func (s *snapshot) Keyspace() string {
	return s.keyspace.name
}

func (s *snapshot) decode(raw []byte) ([]byte, errors.Error) {
	c := s.keyspace.store.codec
	out, err := c.decode(s.buf, raw)
	if err != nil {
		return nil, errors.NewCodecError(err, c.name())
	}
	if !c.inPlace() {
		s.buf = out
	}
	return out, nil
}

func (s *snapshot) Scan() (datastore.DocumentIterator, errors.Error) {
	if s.tx == nil {
		return nil, errors.NewSnapshotError(nil, "scan of a released snapshot")
	}
	return &documentIterator{snapshot: s, cursor: s.docs.Cursor()}, nil
}

func (s *snapshot) Lookup(id datastore.LocalDocumentId, cb datastore.DocumentCallback) (bool, errors.Error) {
	if s.tx == nil {
		return false, errors.NewSnapshotError(nil, "lookup in a released snapshot")
	}
	raw := s.docs.Get(itob(id))
	if raw == nil {
		return false, nil
	}
	doc, err := s.decode(raw)
	if err != nil {
		return false, err
	}
	cb(id, doc)
	return true, nil
}

func (s *snapshot) Resolver() datastore.Resolver {
	return s.resolver
}

func (s *snapshot) Synchronous() bool {
	return s.keyspace.store.codec.inPlace()
}

func (s *snapshot) Lease() *value.Lease {
	return s.lease
}

func (s *snapshot) Release() {
	if s.tx == nil {
		return
	}
	s.lease.Invalidate()
	if err := s.tx.Rollback(); err != nil {
		logging.Warnf("bolt: error ending read transaction on %s: %v", s.keyspace.name, err)
	}
	s.tx = nil
	s.docs = nil
}

type documentIterator struct {
	snapshot *snapshot
	cursor   *bbolt.Cursor
	started  bool
	done     bool
}

func (it *documentIterator) Next(cb datastore.DocumentCallback, atMost int) (bool, errors.Error) {
	if it.snapshot.tx == nil {
		return false, errors.NewSnapshotError(nil, "scan of a released snapshot")
	}
	for n := 0; n < atMost && !it.done; n++ {
		var k, v []byte
		if !it.started {
			k, v = it.cursor.First()
			it.started = true
		} else {
			k, v = it.cursor.Next()
		}
		if k == nil {
			it.done = true
			break
		}
		doc, err := it.snapshot.decode(v)
		if err != nil {
			return false, err
		}
		cb(btoi(k), doc)
	}
	return !it.done, nil
}

// index entries are computed per scan from the snapshot, so an index
// always agrees with the documents it is read against.
type index struct {
	keyspace *keyspace
	name     string
	fields   []string
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

type indexEntry struct {
	id    datastore.LocalDocumentId
	keys  []value.Value
	entry value.Value
}

func (pi *index) Scan(s datastore.Snapshot) (datastore.IndexIterator, errors.Error) {
	snap, ok := s.(*snapshot)
	if !ok || snap.keyspace.store != pi.keyspace.store || snap.keyspace.name != pi.keyspace.name {
		return nil, errors.NewSnapshotError(nil, "foreign snapshot used to scan index "+pi.name)
	}
	paths := make([]*value.Path, len(pi.fields))
	for i, f := range pi.fields {
		paths[i], _ = value.NewPath(f)
	}
	it, err := snap.Scan()
	if err != nil {
		return nil, err
	}
	var entries []indexEntry
	for more := true; more; {
		more, err = it.Next(func(id datastore.LocalDocumentId, raw []byte) {
			doc := value.NewBorrowedValue(raw, snap.lease)
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
			entries = append(entries, indexEntry{id: id, keys: keys, entry: entry})
		}, 256)
		if err != nil {
			return nil, err
		}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return value.CollateAll(entries[i].keys, entries[j].keys) < 0
	})
	return &indexIterator{entries: entries}, nil
}

type indexIterator struct {
	entries []indexEntry
	next    int
}

func (it *indexIterator) NextCovering(cb datastore.CoveringCallback, atMost int) (bool, errors.Error) {
	for n := 0; n < atMost && it.next < len(it.entries); n++ {
		cb(it.entries[it.next].id, it.entries[it.next].entry)
		it.next++
	}
	return it.next < len(it.entries), nil
}

func (it *indexIterator) Next(cb datastore.IdCallback, atMost int) (bool, errors.Error) {
	for n := 0; n < atMost && it.next < len(it.entries); n++ {
		cb(it.entries[it.next].id)
		it.next++
	}
	return it.next < len(it.entries), nil
}

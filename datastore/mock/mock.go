//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

/*
Package mock provides a fake, mock 100%-in-memory implementation of
the datastore package, which can be useful for testing. Because it is
memory-oriented, performance testing of higher layers may be easier
with this mock datastore.
*/
package mock

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	json "github.com/couchbase/go_json"

	"github.com/docflow/pipeline/datastore"
	"github.com/docflow/pipeline/errors"
	"github.com/docflow/pipeline/value"
)

const (
	DEFAULT_NUM_KEYSPACES = 1
	DEFAULT_NUM_ITEMS     = 10000
	DEFAULT_NUM_GROUPS    = 10
	DEFAULT_SYNCHRONOUS   = 1

	PRIMARY_INDEX = "primary"
	GROUP_INDEX   = "ix_g_i"
)

// store is the root for the mock-based Store.
type store struct {
	path          string
	keyspaces     map[string]*keyspace
	keyspaceNames []string
	params        map[string]int
}

func (s *store) URL() string {
	return "mock:" + s.path
}

func (s *store) KeyspaceNames() ([]string, errors.Error) {
	return s.keyspaceNames, nil
}

func (s *store) KeyspaceByName(name string) (datastore.Keyspace, errors.Error) {
	b, ok := s.keyspaces[name]
	if !ok {
		return nil, errors.NewKeyspaceNotFoundError(name)
	}
	return b, nil
}

func (s *store) Close() errors.Error {
	return nil
}

// keyspace is a mock-based keyspace. Documents are generated on first
// use and never change afterwards.
type keyspace struct {
	sync.Once
	name        string
	nitems      int
	ngroups     int
	synchronous bool
	docs        [][]byte
	fixed       []interface{}
	indexFields map[string][]string
	indexes     map[string]*index
}

func (b *keyspace) Name() string {
	return b.name
}

func (b *keyspace) Count() (int64, errors.Error) {
	b.load()
	return int64(len(b.docs)), nil
}

func (b *keyspace) IndexNames() ([]string, errors.Error) {
	rv := make([]string, 0, len(b.indexFields))
	for name, _ := range b.indexFields {
		rv = append(rv, name)
	}
	sort.Strings(rv)
	return rv, nil
}

func (b *keyspace) IndexByName(name string) (datastore.Index, errors.Error) {
	b.load()
	index, ok := b.indexes[name]
	if !ok {
		return nil, errors.NewIndexNotFoundError(b.name, name)
	}
	return index, nil
}

func (b *keyspace) Snapshot() (datastore.Snapshot, errors.Error) {
	b.load()
	return &snapshot{keyspace: b, lease: value.NewLease(),
		resolver: &datastore.KeyResolver{KeyspaceName: b.name}}, nil
}

func (b *keyspace) load() {
	b.Do(func() {
		if b.fixed != nil {
			b.docs = make([][]byte, len(b.fixed))
			for i, d := range b.fixed {
				b.docs[i], _ = json.Marshal(d)
			}
		} else {
			b.docs = make([][]byte, b.nitems)
			for i := 0; i < b.nitems; i++ {
				b.docs[i] = genItem(i, b.ngroups)
			}
		}
		b.indexes = make(map[string]*index, len(b.indexFields))
		for name, fields := range b.indexFields {
			b.indexes[name] = newIndex(name, b, fields)
		}
	})
}

// generate a mock document
func genItem(i int, ngroups int) []byte {
	id := strconv.Itoa(i)
	doc := map[string]interface{}{
		"_key": "k" + id,
		"id":   id,
		"i":    float64(i),
		"g":    float64(i % ngroups),
	}
	rv, _ := json.Marshal(doc)
	return rv
}

// NewDatastore creates a new mock store for the given "path". The
// path has prefix "mock:", with the rest of the path treated as a
// comma-separated key=value params. For example:
// mock:keyspaces=5,items=50000,groups=7,sync=0
// The above means 5 keyspaces, each with 50000 items, grouped on "g"
// into 7 groups, served by non-synchronous snapshots.
// By default, you get...
// mock:keyspaces=1,items=10000,groups=10,sync=1
// Which is what you'd get by specifying a path of just...  mock:
func NewDatastore(path string) (datastore.Datastore, errors.Error) {
	if strings.HasPrefix(path, "mock:") {
		path = path[5:]
	}
	params := map[string]int{}
	for _, kv := range strings.Split(path, ",") {
		if kv == "" {
			continue
		}
		pair := strings.Split(kv, "=")
		if len(pair) != 2 {
			return nil, errors.NewDatastoreInvalidURL("mock:"+path,
				fmt.Errorf("could not parse mock param: %s", kv))
		}
		v, e := strconv.Atoi(pair[1])
		if e != nil || v < 0 {
			return nil, errors.NewDatastoreInvalidURL("mock:"+path,
				fmt.Errorf("could not parse mock param key: %s, val: %s", pair[0], pair[1]))
		}
		params[pair[0]] = v
	}
	nkeyspaces := paramVal(params, "keyspaces", DEFAULT_NUM_KEYSPACES)
	nitems := paramVal(params, "items", DEFAULT_NUM_ITEMS)
	ngroups := paramVal(params, "groups", DEFAULT_NUM_GROUPS)
	if ngroups == 0 {
		ngroups = 1
	}
	synchronous := paramVal(params, "sync", DEFAULT_SYNCHRONOUS) != 0
	s := &store{path: path, params: params, keyspaces: map[string]*keyspace{}, keyspaceNames: []string{}}
	for j := 0; j < nkeyspaces; j++ {
		b := &keyspace{name: "b" + strconv.Itoa(j), nitems: nitems, ngroups: ngroups,
			synchronous: synchronous, indexFields: map[string][]string{
				PRIMARY_INDEX: []string{datastore.KEY_ATTRIBUTE},
				GROUP_INDEX:   []string{"g", "i"},
			}}
		s.keyspaces[b.name] = b
		s.keyspaceNames = append(s.keyspaceNames, b.name)
	}
	return s, nil
}

/*
NewKeyspace builds a standalone keyspace over the given documents, with
one index per entry of indexes. A document's id is its position in docs.
*/
func NewKeyspace(name string, docs []interface{}, indexes map[string][]string, synchronous bool) datastore.Keyspace {
	if docs == nil {
		docs = []interface{}{}
	}
	return &keyspace{name: name, fixed: docs, indexFields: indexes, synchronous: synchronous}
}

func paramVal(params map[string]int, key string, defaultVal int) int {
	v, ok := params[key]
	if ok {
		return v
	}
	return defaultVal
}

// snapshot serves the keyspace documents. A non-synchronous snapshot
// hands documents out through a scratch buffer that is overwritten by
// the next document, as a remote read would.
type snapshot struct {
	keyspace *keyspace
	lease    *value.Lease
	resolver datastore.Resolver
	scratch  []byte
	released bool
}

func (s *snapshot) Keyspace() string {
	return s.keyspace.name
}

func (s *snapshot) Scan() (datastore.DocumentIterator, errors.Error) {
	if s.released {
		return nil, errors.NewSnapshotError(nil, "scan of a released snapshot")
	}
	return &documentIterator{snapshot: s}, nil
}

func (s *snapshot) Lookup(id datastore.LocalDocumentId, cb datastore.DocumentCallback) (bool, errors.Error) {
	if s.released {
		return false, errors.NewSnapshotError(nil, "lookup in a released snapshot")
	}
	if uint64(id) >= uint64(len(s.keyspace.docs)) {
		return false, nil
	}
	cb(id, s.hand(s.keyspace.docs[id]))
	return true, nil
}

func (s *snapshot) hand(raw []byte) []byte {
	if s.keyspace.synchronous {
		return raw
	}
	s.scratch = append(s.scratch[:0], raw...)
	return s.scratch
}

func (s *snapshot) Resolver() datastore.Resolver {
	return s.resolver
}

func (s *snapshot) Synchronous() bool {
	return s.keyspace.synchronous
}

func (s *snapshot) Lease() *value.Lease {
	return s.lease
}

func (s *snapshot) Release() {
	if !s.released {
		s.released = true
		s.lease.Invalidate()
	}
}

type documentIterator struct {
	snapshot *snapshot
	next     int
}

func (it *documentIterator) Next(cb datastore.DocumentCallback, atMost int) (bool, errors.Error) {
	if it.snapshot.released {
		return false, errors.NewSnapshotError(nil, "scan of a released snapshot")
	}
	docs := it.snapshot.keyspace.docs
	for n := 0; n < atMost && it.next < len(docs); n++ {
		cb(datastore.LocalDocumentId(it.next), it.snapshot.hand(docs[it.next]))
		it.next++
	}
	return it.next < len(docs), nil
}

//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

/*
Package datastore provides the storage abstraction consumed by scan
and index executors. Documents are opaque JSON byte ranges addressed by
a LocalDocumentId, read through a Snapshot.
*/
package datastore

import (
	"github.com/docflow/pipeline/errors"
	"github.com/docflow/pipeline/value"
)

// LocalDocumentId is an opaque key into a keyspace. It never carries
// document content.
type LocalDocumentId uint64

// Datastore is the root of a store.
type Datastore interface {
	URL() string
	KeyspaceNames() ([]string, errors.Error)
	KeyspaceByName(name string) (Keyspace, errors.Error)
	Close() errors.Error
}

// Keyspace is a named collection of documents.
type Keyspace interface {
	Name() string
	Count() (int64, errors.Error)
	IndexNames() ([]string, errors.Error)
	IndexByName(name string) (Index, errors.Error)
	Snapshot() (Snapshot, errors.Error)
}

/*
DocumentCallback receives one document. raw is only valid for the
duration of the call, unless the snapshot is synchronous, in which case
it stays valid until the snapshot is released.
*/
type DocumentCallback func(id LocalDocumentId, raw []byte)

// Snapshot is a consistent read view of a keyspace.
type Snapshot interface {
	Keyspace() string
	Scan() (DocumentIterator, errors.Error)

	// Lookup reports false when the document does not exist.
	Lookup(id LocalDocumentId, cb DocumentCallback) (bool, errors.Error)
	Resolver() Resolver

	/*
	   Synchronous is true when the snapshot is in-process and its memory
	   stays put until Release, so that documents may be borrowed rather
	   than copied.
	*/
	Synchronous() bool

	// Lease is invalidated on Release.
	Lease() *value.Lease
	Release()
}

// DocumentIterator walks every document of a snapshot.
type DocumentIterator interface {
	// Next calls cb for at most atMost documents and reports whether more
	// may follow.
	Next(cb DocumentCallback, atMost int) (bool, errors.Error)
}

/*
Resolver extracts identity attributes. Key is the document's primary
key; Id is the key qualified by its keyspace, as "keyspace/key".
*/
type Resolver interface {
	Key(id LocalDocumentId, doc value.Value) value.Value
	Id(id LocalDocumentId, doc value.Value) value.Value
}

// Index is a secondary index over dotted attribute paths.
type Index interface {
	Name() string
	Keyspace() string

	// Fields lists the indexed paths in entry order.
	Fields() []string
	Scan(snapshot Snapshot) (IndexIterator, errors.Error)
}

/*
CoveringCallback receives an index entry: the single indexed value for
a one field index, otherwise an array of values in Fields order.
*/
type CoveringCallback func(id LocalDocumentId, entry value.Value)

type IdCallback func(id LocalDocumentId)

type IndexIterator interface {
	NextCovering(cb CoveringCallback, atMost int) (bool, errors.Error)
	Next(cb IdCallback, atMost int) (bool, errors.Error)
}

/*
KeyResolver is the Resolver for stores keeping the primary key under
"_key" in each document.
*/
type KeyResolver struct {
	KeyspaceName string
}

const KEY_ATTRIBUTE = "_key"
const ID_ATTRIBUTE = "_id"

func (this *KeyResolver) Key(id LocalDocumentId, doc value.Value) value.Value {
	k, ok := doc.Field(KEY_ATTRIBUTE)
	if !ok {
		return value.NULL_VALUE
	}
	return k
}

func (this *KeyResolver) Id(id LocalDocumentId, doc value.Value) value.Value {
	k, ok := doc.Field(KEY_ATTRIBUTE)
	if !ok || k.Type() != value.STRING {
		return value.NULL_VALUE
	}
	return value.NewValue(this.KeyspaceName + "/" + k.Actual().(string))
}

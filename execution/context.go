//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package execution

import (
	"fmt"
	"os"
	"runtime"

	"github.com/google/uuid"

	"github.com/docflow/pipeline/block"
	"github.com/docflow/pipeline/datastore"
	"github.com/docflow/pipeline/errors"
	"github.com/docflow/pipeline/logging"
)

/*
Context is the state of one query: its id, the snapshots it reads, the
block pool its pipeline allocates from, and its statistics. Snapshots
are taken on first use and released with the context, so every
document a query borrows stays valid until the query ends.
*/
type Context struct {
	queryId        string
	datastore      datastore.Datastore
	pool           *block.Pool
	sink           StatisticsSink
	useRawPointers bool

	keyspaces map[string]datastore.Keyspace
	snapshots map[string]datastore.Snapshot
	stats     Stats
	err       errors.Error
}

func NewContext(store datastore.Datastore, pool *block.Pool, sink StatisticsSink) *Context {
	if pool == nil {
		pool = block.NewPool()
	}
	return &Context{
		queryId:        uuid.New().String(),
		datastore:      store,
		pool:           pool,
		sink:           sink,
		useRawPointers: UseRawDocumentPointers(),
		keyspaces:      make(map[string]datastore.Keyspace, 4),
		snapshots:      make(map[string]datastore.Snapshot, 4),
	}
}

func (this *Context) QueryId() string {
	return this.queryId
}

func (this *Context) Datastore() datastore.Datastore {
	return this.datastore
}

func (this *Context) Pool() *block.Pool {
	return this.pool
}

func (this *Context) UseRawPointers() bool {
	return this.useRawPointers
}

func (this *Context) SetUseRawPointers(on bool) {
	this.useRawPointers = on
}

func (this *Context) Keyspace(name string) (datastore.Keyspace, errors.Error) {
	if ks, ok := this.keyspaces[name]; ok {
		return ks, nil
	}
	if this.datastore == nil {
		return nil, errors.NewKeyspaceNotFoundError(name)
	}
	ks, err := this.datastore.KeyspaceByName(name)
	if err != nil {
		return nil, err
	}
	this.keyspaces[name] = ks
	return ks, nil
}

// Snapshot returns the query's snapshot of keyspace, taking it if needed.
func (this *Context) Snapshot(keyspace string) (datastore.Snapshot, errors.Error) {
	if s, ok := this.snapshots[keyspace]; ok {
		return s, nil
	}
	ks, err := this.Keyspace(keyspace)
	if err != nil {
		return nil, err
	}
	s, err := ks.Snapshot()
	if err != nil {
		return nil, err
	}
	this.snapshots[keyspace] = s
	return s, nil
}

func (this *Context) AddStats(stats Stats) {
	if stats.IsZero() {
		return
	}
	this.stats.Add(stats)
	if this.sink != nil {
		this.sink.RecordBatch(stats.Scanned, stats.Filtered)
	}
}

func (this *Context) Stats() Stats {
	return this.stats
}

// Fatal records the error aborting the query. The first one wins.
func (this *Context) Fatal(err errors.Error) {
	if this.err == nil {
		this.err = err
	}
}

func (this *Context) Error() errors.Error {
	return this.err
}

/*
Release ends every snapshot of the query. Documents borrowed from them
are stale afterwards.
*/
func (this *Context) Release() {
	for name, s := range this.snapshots {
		s.Release()
		delete(this.snapshots, name)
	}
}

/*
Recover turns a panic, such as a contract violation, into the query's
fatal error. It must be deferred directly.
*/
func (this *Context) Recover() {
	err := recover()
	if err != nil {
		buf := make([]byte, 1<<16)
		n := runtime.Stack(buf, false)
		s := string(buf[0:n])
		logging.Severep("", logging.Pair{Name: "panic", Value: err},
			logging.Pair{Name: "query_id", Value: this.queryId},
			logging.Pair{Name: "stack", Value: s})
		os.Stderr.WriteString(s)
		os.Stderr.Sync()

		switch err := err.(type) {
		case error:
			this.Fatal(errors.NewExecutionPanicError(err, fmt.Sprintf("Panic: %v", err)))
		default:
			this.Fatal(errors.NewExecutionPanicError(nil, fmt.Sprintf("Panic: %v", err)))
		}
	}
}

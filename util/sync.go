//  Copyright 2017-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package util

// We implement here sync types that in sync don't do exactly what we want.
// Our implementation tends to be leaner too.

import (
	"runtime"
	"sync"

	atomic "github.com/couchbase/go-couchbase/platform"
)

// Once performs exactly one action. Callers racing with the first call
// return without waiting for it.
type Once struct {
	done uint32
}

func (o *Once) Do(f func()) {
	if atomic.LoadUint32(&o.done) > 0 {
		return
	}

	// Slow-path.
	if atomic.AddUint32(&o.done, 1) == 1 {
		f()
	}
}

const _MIN_BUCKETS = 8
const _MAX_BUCKETS = 64
const _POOL_SIZE = 1024

func NumCPU() int {
	return runtime.GOMAXPROCS(0)
}

// FastPool is a bucketed free list. Entries are spread across buckets in
// round robin so that concurrent Get and Put rarely contend on the same lock.
// At most _POOL_SIZE entries are retained; any excess is left to the GC.
type FastPool struct {
	getNext   uint32
	putNext   uint32
	useCount  int32
	freeCount int32
	buckets   uint32
	f         func() interface{}
	pool      []poolList
	free      []poolList
}

type poolList struct {
	head *poolEntry
	tail *poolEntry
	sync.Mutex
}

type poolEntry struct {
	entry interface{}
	next  *poolEntry
}

func NewFastPool(p *FastPool, f func() interface{}) {
	*p = FastPool{}
	p.buckets = uint32(NumCPU())
	if p.buckets > _MAX_BUCKETS {
		p.buckets = _MAX_BUCKETS
	} else if p.buckets < _MIN_BUCKETS {
		p.buckets = _MIN_BUCKETS
	}
	p.pool = make([]poolList, p.buckets)
	p.free = make([]poolList, p.buckets)
	p.f = f
}

func (p *FastPool) Get() interface{} {
	if atomic.LoadInt32(&p.useCount) == 0 {
		return p.f()
	}
	l := atomic.AddUint32(&p.getNext, 1) % p.buckets
	e := p.pool[l].Get()
	if e == nil {
		return p.f()
	}
	atomic.AddInt32(&p.useCount, -1)
	rv := e.entry
	e.entry = nil
	if atomic.LoadInt32(&p.freeCount) < _POOL_SIZE {
		atomic.AddInt32(&p.freeCount, 1)
		p.free[l].Put(e)
	}
	return rv
}

func (p *FastPool) Put(s interface{}) {
	if atomic.LoadInt32(&p.useCount) >= _POOL_SIZE {
		return
	}
	l := atomic.AddUint32(&p.putNext, 1) % p.buckets
	e := p.free[l].Get()
	if e == nil {
		e = &poolEntry{}
	} else {
		atomic.AddInt32(&p.freeCount, -1)
	}
	e.entry = s
	p.pool[l].Put(e)
	atomic.AddInt32(&p.useCount, 1)
}

// Size is the number of entries currently held.
func (p *FastPool) Size() int {
	return int(atomic.LoadInt32(&p.useCount))
}

func (l *poolList) Get() *poolEntry {
	l.Lock()
	rv := l.head
	if rv == nil {
		l.Unlock()
		return nil
	}
	l.head = rv.next
	if l.head == nil {
		l.tail = nil
	}
	l.Unlock()
	rv.next = nil
	return rv
}

func (l *poolList) Put(e *poolEntry) {
	l.Lock()
	if l.head == nil {
		l.head = e
	} else {
		l.tail.next = e
	}
	l.tail = e
	l.Unlock()
}

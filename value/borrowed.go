//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package value

import (
	atomic "github.com/couchbase/go-couchbase/platform"

	"github.com/docflow/pipeline/errors"
)

/*
Lease guards the memory a storage snapshot lends out. Each borrowed
value records the generation current when it was made; Invalidate
bumps the generation, after which every such value is stale.
*/
type Lease struct {
	generation atomic.AlignedInt64
}

func NewLease() *Lease {
	rv := &Lease{}
	atomic.StoreInt64(&rv.generation, 1)
	return rv
}

func (this *Lease) Generation() uint64 {
	return uint64(atomic.LoadInt64(&this.generation))
}

/*
Invalidate ends the current generation. Snapshots call it on release.
*/
func (this *Lease) Invalidate() {
	atomic.AddInt64(&this.generation, 1)
}

/*
borrowedValue is a range of storage memory. It owns nothing: Clone
copies the bytes out into an owned value.
*/
type borrowedValue struct {
	raw        []byte
	lease      *Lease
	generation uint64
}

/*
NewBorrowedValue wraps raw, valid for the lease's current generation.
raw must hold a JSON object or array.
*/
func NewBorrowedValue(raw []byte, lease *Lease) Value {
	return &borrowedValue{
		raw:        raw,
		lease:      lease,
		generation: lease.Generation(),
	}
}

func (this *borrowedValue) check() []byte {
	current := this.lease.Generation()
	if current != this.generation {
		panic(errors.NewStaleDocumentError(this.generation, current))
	}
	return this.raw
}

/*
Valid reports whether the producing snapshot is still alive.
*/
func (this *borrowedValue) Valid() bool {
	return this.lease.Generation() == this.generation
}

func (this *borrowedValue) MarshalJSON() ([]byte, error) {
	return this.check(), nil
}

func (this *borrowedValue) String() string {
	return string(this.check())
}

func (this *borrowedValue) Tag() Tag {
	return BORROWED
}

func (this *borrowedValue) Type() Type {
	return identifyType(this.check())
}

func (this *borrowedValue) Actual() interface{} {
	return parse(this.check())
}

func (this *borrowedValue) Bytes() []byte {
	return this.check()
}

func (this *borrowedValue) Field(path string) (Value, bool) {
	p, ok := NewPath(path)
	if !ok {
		return NULL_VALUE, false
	}
	return this.Find(p)
}

func (this *borrowedValue) Find(path *Path) (Value, bool) {
	return find(this.check(), path, true)
}

func (this *borrowedValue) Index(index int) (Value, bool) {
	return index_(this.check(), index, true)
}

func (this *borrowedValue) Clone() Value {
	return &ownedValue{raw: copyBytes(this.check())}
}

func (this *borrowedValue) Equals(other Value) bool {
	return other != nil && equals(this, other)
}

/*
IsValid reports false only for a borrowed value whose snapshot has been
released. It never panics.
*/
func IsValid(val Value) bool {
	if b, ok := val.(*borrowedValue); ok {
		return b.Valid()
	}
	return true
}

//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

/*
Package block provides the batches executors exchange: a Block is a
rows x registers table of values, read through InputRow cursors and
written through an OutputRow.

A block belongs to exactly one writer at a time. Once filled it is
handed downstream, and the last reader releases it to its Pool.
*/
package block

import (
	atomic "github.com/couchbase/go-couchbase/platform"

	"github.com/docflow/pipeline/util"
	"github.com/docflow/pipeline/value"
)

type RegisterId int

type Block struct {
	capacity  int
	rows      int
	registers int
	values    []value.Value
	pool      *Pool
}

func (this *Block) Capacity() int {
	return this.capacity
}

// Rows is the number of rows holding data, after any shrink.
func (this *Block) Rows() int {
	return this.rows
}

func (this *Block) Registers() int {
	return this.registers
}

func (this *Block) Get(row int, reg RegisterId) value.Value {
	v := this.values[row*this.registers+int(reg)]
	if v == nil {
		return value.NULL_VALUE
	}
	return v
}

func (this *Block) set(row int, reg RegisterId, v value.Value) {
	this.values[row*this.registers+int(reg)] = v
}

func (this *Block) isSet(row int, reg RegisterId) bool {
	return this.values[row*this.registers+int(reg)] != nil
}

// Shrink drops trailing rows that were never written.
func (this *Block) Shrink(rows int) {
	if rows > this.rows {
		panic(errorsContract("cannot grow a block by shrinking"))
	}
	for i := rows * this.registers; i < this.rows*this.registers; i++ {
		this.values[i] = nil
	}
	this.rows = rows
}

/*
Release hands the block back to its pool. The block, and any InputRow
pointing into it, must not be used afterwards.
*/
func (this *Block) Release() {
	if this.pool == nil {
		return
	}
	for i := range this.values {
		this.values[i] = nil
	}
	p := this.pool
	this.pool = nil
	atomic.AddInt64(&p.released, 1)
	p.blocks.Put(this)
}

/*
Pool recycles blocks. The backing slice of a recycled block is reused
when it is large enough for the requested shape.
*/
type Pool struct {
	blocks    util.FastPool
	allocated atomic.AlignedInt64
	released  atomic.AlignedInt64
}

func NewPool() *Pool {
	rv := &Pool{}
	util.NewFastPool(&rv.blocks, func() interface{} {
		return &Block{}
	})
	return rv
}

func (this *Pool) Allocate(rowCapacity, registerCount int) *Block {
	if rowCapacity <= 0 || registerCount < 0 {
		panic(errorsContract("invalid block shape"))
	}
	b := this.blocks.Get().(*Block)
	n := rowCapacity * registerCount
	if cap(b.values) < n {
		b.values = make([]value.Value, n)
	} else {
		b.values = b.values[:n]
	}
	b.capacity = rowCapacity
	b.rows = rowCapacity
	b.registers = registerCount
	b.pool = this
	atomic.AddInt64(&this.allocated, 1)
	return b
}

// Outstanding is the number of blocks allocated and not yet released.
func (this *Pool) Outstanding() int64 {
	return atomic.LoadInt64(&this.allocated) - atomic.LoadInt64(&this.released)
}

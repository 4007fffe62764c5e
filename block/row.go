//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package block

import (
	"fmt"

	"github.com/docflow/pipeline/errors"
	"github.com/docflow/pipeline/value"
)

func errorsContract(what string) errors.Error {
	return errors.NewContractViolation(what)
}

/*
InputRow is a read-only cursor on one row of a block. It borrows the
block and never releases it.
*/
type InputRow struct {
	block *Block
	row   int
}

func NewInputRow(block *Block, row int) InputRow {
	if block == nil || row < 0 || row >= block.rows {
		panic(errorsContract(fmt.Sprintf("input row %d out of range", row)))
	}
	return InputRow{block: block, row: row}
}

// An uninitialized row stands for "no row", as when an upstream is done.
func (this InputRow) IsInitialized() bool {
	return this.block != nil
}

func (this InputRow) GetValue(reg RegisterId) value.Value {
	return this.block.Get(this.row, reg)
}

func (this InputRow) Registers() int {
	if this.block == nil {
		return 0
	}
	return this.block.registers
}

func (this InputRow) Block() *Block {
	return this.block
}

func (this InputRow) Index() int {
	return this.row
}

/*
ValueGuard holds a value on its way into a register. MoveValueInto
steals it, so a value is only ever moved once.
*/
type ValueGuard struct {
	val value.Value
}

func NewValueGuard(val value.Value) *ValueGuard {
	return &ValueGuard{val: val}
}

func (this *ValueGuard) Value() value.Value {
	return this.val
}

func (this *ValueGuard) Stolen() bool {
	return this.val == nil
}

func (this *ValueGuard) Steal() value.Value {
	if this.val == nil {
		panic(errorsContract("value already moved out of its guard"))
	}
	rv := this.val
	this.val = nil
	return rv
}

/*
OutputRow writes rows into a block, one at a time. A row is complete
once every output register is produced and the input row is copied.
*/
type OutputRow struct {
	block            *Block
	row              int
	outputRegisters  []RegisterId
	isOutput         []bool
	registersToKeep  int
	registersToClear []RegisterId
	numProduced      int
	inputCopied      bool
}

/*
NewOutputRow writes into block. The first registersToKeep registers
are copied from the input row; outputRegisters are produced by the
executor; registersToClear are reset to null on every written row.
*/
func NewOutputRow(block *Block, outputRegisters []RegisterId, registersToKeep int, registersToClear []RegisterId) *OutputRow {
	isOutput := make([]bool, block.registers)
	for _, r := range outputRegisters {
		if int(r) < registersToKeep || int(r) >= block.registers {
			panic(errorsContract(fmt.Sprintf("output register %d out of range", r)))
		}
		isOutput[r] = true
	}
	if registersToKeep > block.registers {
		panic(errorsContract("more registers to keep than the block holds"))
	}
	return &OutputRow{
		block:            block,
		outputRegisters:  outputRegisters,
		isOutput:         isOutput,
		registersToKeep:  registersToKeep,
		registersToClear: registersToClear,
	}
}

func (this *OutputRow) IsFull() bool {
	return this.block == nil || this.row >= this.block.capacity
}

func (this *OutputRow) NumRowsLeft() int {
	if this.block == nil {
		return 0
	}
	return this.block.capacity - this.row
}

func (this *OutputRow) NumRowsWritten() int {
	return this.row
}

func (this *OutputRow) OutputRegisters() []RegisterId {
	return this.outputRegisters
}

// Produced is true once the current row is complete.
func (this *OutputRow) Produced() bool {
	return this.numProduced == len(this.outputRegisters) && this.inputCopied
}

func (this *OutputRow) checkWritable(reg RegisterId) {
	if this.IsFull() {
		panic(errorsContract("write into a full block"))
	}
	if int(reg) < 0 || int(reg) >= len(this.isOutput) || !this.isOutput[reg] {
		panic(errorsContract(fmt.Sprintf("register %d is not an output register", reg)))
	}
	if this.block.isSet(this.row, reg) {
		panic(errorsContract(fmt.Sprintf("register %d already produced", reg)))
	}
}

/*
CloneValueInto writes a copy of val, independent of any storage
memory, into reg.
*/
func (this *OutputRow) CloneValueInto(reg RegisterId, input InputRow, val value.Value) {
	this.checkWritable(reg)
	this.produce(reg, input, val.Clone())
}

/*
MoveValueInto writes the guarded value into reg without copying it.
*/
func (this *OutputRow) MoveValueInto(reg RegisterId, input InputRow, guard *ValueGuard) {
	this.checkWritable(reg)
	this.produce(reg, input, guard.Steal())
}

func (this *OutputRow) produce(reg RegisterId, input InputRow, val value.Value) {
	this.block.set(this.row, reg, val)
	this.numProduced++
	if this.numProduced == len(this.outputRegisters) && !this.inputCopied {
		this.CopyRow(input)
	}
}

/*
CopyRow passes the kept registers of input through to the current row.
*/
func (this *OutputRow) CopyRow(input InputRow) {
	if this.IsFull() {
		panic(errorsContract("write into a full block"))
	}
	if this.inputCopied {
		return
	}
	if this.registersToKeep > 0 {
		if !input.IsInitialized() || input.Registers() < this.registersToKeep {
			panic(errorsContract("input row does not carry the registers to keep"))
		}
		for r := 0; r < this.registersToKeep; r++ {
			this.block.set(this.row, RegisterId(r), input.GetValue(RegisterId(r)))
		}
	}
	this.inputCopied = true
}

/*
AdvanceRow completes the current row: registers no longer needed
downstream are reset to null, and the cursor moves on.
*/
func (this *OutputRow) AdvanceRow() {
	if !this.Produced() {
		panic(errorsContract("advancing an incomplete row"))
	}
	for _, r := range this.registersToClear {
		this.block.set(this.row, r, value.NULL_VALUE)
	}
	this.row++
	this.numProduced = 0
	this.inputCopied = false
}

/*
StealBlock hands the block, shrunk to the rows written, to the caller.
The OutputRow is unusable afterwards. A block with no rows written is
released and nil returned.
*/
func (this *OutputRow) StealBlock() *Block {
	b := this.block
	this.block = nil
	if b == nil {
		return nil
	}
	if this.row == 0 {
		b.Release()
		return nil
	}
	b.Shrink(this.row)
	return b
}

//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License
//  included in the file licenses/BSL-Couchbase.txt.  As of the Change Date
//  specified in that file, in accordance with the Business Source License,
//  use of this software will be governed by the Apache License, Version 2.0,
//  included in the file licenses/APL2.txt.

package plan

import (
	"fmt"

	json "github.com/couchbase/go_json"

	"github.com/docflow/pipeline/block"
	"github.com/docflow/pipeline/errors"
)

/*
Sequence is a linear pipeline: each child consumes the rows of the one
before it. The first child is a Singleton, and a Return may only come
last.
*/
type Sequence struct {
	children  []Operator
	registers []*RegisterInfo
	variables map[string]block.RegisterId
}

/*
RegisterInfo is the block layout around one operator of a sequence.
Output rows carry the first Keep registers of the input row, followed
by Outputs. Clear lists the registers reset once the operator has
written a row, because nothing downstream reads them.
*/
type RegisterInfo struct {
	Input      int
	Registers  int
	Keep       int
	Outputs    []block.RegisterId
	Clear      []block.RegisterId
	References []block.RegisterId
}

func NewSequence(children ...Operator) *Sequence {
	return &Sequence{children: children}
}

func (this *Sequence) Accept(visitor Visitor) (interface{}, error) {
	return visitor.VisitSequence(this)
}

func (this *Sequence) New() Operator {
	return &Sequence{}
}

func (this *Sequence) Children() []Operator {
	return this.children
}

func (this *Sequence) ReturnsData() bool {
	if len(this.children) == 0 {
		return false
	}
	_, ok := this.children[len(this.children)-1].(*Return)
	return ok
}

func (this *Sequence) References() []string {
	return this.freeVariables()
}

func (this *Sequence) Output() string {
	return ""
}

// Registers is the layout of child i, once registers are assigned.
func (this *Sequence) Registers(i int) *RegisterInfo {
	if i < 0 || i >= len(this.registers) {
		return nil
	}
	return this.registers[i]
}

// Variable returns the register of a variable visible at the end of
// the sequence.
func (this *Sequence) Variable(name string) (block.RegisterId, bool) {
	reg, ok := this.variables[name]
	return reg, ok
}

/*
AssignRegisters lays out the registers of a top level sequence and,
recursively, of its subqueries.
*/
func (this *Sequence) AssignRegisters() errors.Error {
	return this.assign(map[string]block.RegisterId{}, 0)
}

func (this *Sequence) assign(outer map[string]block.RegisterId, outerCount int) errors.Error {
	if len(this.children) == 0 {
		return errors.NewInvalidSequenceError("empty sequence")
	}
	if _, ok := this.children[0].(*Singleton); !ok {
		return errors.NewInvalidSequenceError("sequence must start with a Singleton")
	}

	// variables read by any later operator
	liveAfter := make([]map[string]bool, len(this.children))
	live := map[string]bool{}
	for i := len(this.children) - 1; i >= 0; i-- {
		liveAfter[i] = live
		next := make(map[string]bool, len(live)+2)
		for v := range live {
			next[v] = true
		}
		for _, v := range this.children[i].References() {
			next[v] = true
		}
		live = next
	}

	vars := make(map[string]block.RegisterId, len(outer)+len(this.children))
	names := make([]string, outerCount, outerCount+len(this.children))
	for name, reg := range outer {
		vars[name] = reg
		names[reg] = name
	}
	count := outerCount
	cleared := map[block.RegisterId]bool{}
	this.registers = make([]*RegisterInfo, len(this.children))

	for i, child := range this.children {
		info := &RegisterInfo{Input: count}
		for _, r := range child.References() {
			reg, ok := vars[r]
			if !ok {
				return errors.NewInvalidSequenceError(fmt.Sprintf("variable %s used before it is defined", r))
			}
			info.References = append(info.References, reg)
		}

		switch child := child.(type) {
		case *Singleton:
			if i > 0 {
				return errors.NewInvalidSequenceError("Singleton must be first in its sequence")
			}
		case *Sequence:
			return errors.NewInvalidSequenceError("a sequence may only be nested through a Subquery")
		case *Subquery:
			if child.subquery == nil {
				return errors.NewInvalidSequenceError("subquery without a nested sequence")
			}
			if err := child.subquery.assign(vars, count); err != nil {
				return err
			}
		case *Return:
			if i != len(this.children)-1 {
				return errors.NewInvalidSequenceError("Return must be last in its sequence")
			}
			info.Registers = 1
			info.Outputs = []block.RegisterId{0}
			this.registers[i] = info
			continue
		}

		if out := child.Output(); out != "" {
			if _, ok := vars[out]; ok {
				return errors.NewInvalidSequenceError(fmt.Sprintf("variable %s defined twice", out))
			}
			reg := block.RegisterId(count)
			vars[out] = reg
			names = append(names, out)
			info.Outputs = []block.RegisterId{reg}
			count++
		}
		info.Keep = info.Input
		info.Registers = count

		for reg := 0; reg < info.Input; reg++ {
			r := block.RegisterId(reg)
			if !cleared[r] && !liveAfter[i][names[reg]] {
				cleared[r] = true
				info.Clear = append(info.Clear, r)
			}
		}
		this.registers[i] = info
	}
	this.variables = vars
	return nil
}

// freeVariables lists the variables read but not defined in the
// sequence, in first use order.
func (this *Sequence) freeVariables() []string {
	defined := map[string]bool{}
	seen := map[string]bool{}
	var rv []string
	for _, child := range this.children {
		for _, r := range child.References() {
			if !defined[r] && !seen[r] {
				seen[r] = true
				rv = append(rv, r)
			}
		}
		if out := child.Output(); out != "" {
			defined[out] = true
		}
	}
	return rv
}

func (this *Sequence) MarshalJSON() ([]byte, error) {
	return json.Marshal(this.MarshalBase(nil))
}

func (this *Sequence) MarshalBase(f func(map[string]interface{})) map[string]interface{} {
	r := map[string]interface{}{"#operator": "Sequence"}
	if f != nil {
		f(r)
	} else {
		r["~children"] = this.children
	}
	return r
}

func (this *Sequence) UnmarshalJSON(body []byte) error {
	var _unmarshalled struct {
		_        string            `json:"#operator"`
		Children []json.RawMessage `json:"~children"`
	}
	err := json.Unmarshal(body, &_unmarshalled)
	if err != nil {
		return err
	}

	this.children = make([]Operator, 0, len(_unmarshalled.Children))

	for _, raw_child := range _unmarshalled.Children {
		child_op, err := MakeOperatorFromJSON(raw_child)
		if err != nil {
			return err
		}

		this.children = append(this.children, child_op)
	}

	return nil
}

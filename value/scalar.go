//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package value

import (
	json "github.com/couchbase/go_json"
)

/*
scalarValue holds a bool, float64 or string inline.
*/
type scalarValue struct {
	val interface{}
	typ Type
}

func (this *scalarValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(this.val)
}

func (this *scalarValue) String() string {
	return string(this.Bytes())
}

func (this *scalarValue) Tag() Tag {
	return SCALAR
}

func (this *scalarValue) Type() Type {
	return this.typ
}

func (this *scalarValue) Actual() interface{} {
	return this.val
}

func (this *scalarValue) Bytes() []byte {
	b, err := json.Marshal(this.val)
	if err != nil {
		return _NULL_BYTES
	}
	return b
}

func (this *scalarValue) Field(path string) (Value, bool) {
	return NULL_VALUE, false
}

func (this *scalarValue) Find(path *Path) (Value, bool) {
	return NULL_VALUE, false
}

func (this *scalarValue) Index(index int) (Value, bool) {
	return NULL_VALUE, false
}

func (this *scalarValue) Clone() Value {
	return &scalarValue{val: this.val, typ: this.typ}
}

func (this *scalarValue) Equals(other Value) bool {
	return other != nil && equals(this, other)
}

//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package value

/*
ownedValue is a JSON object or array whose bytes belong to the value.
The bytes are never modified after construction.
*/
type ownedValue struct {
	raw []byte
}

/*
NewOwnedValue takes ownership of raw, which must hold a JSON object or
array and must not be modified by the caller afterwards.
*/
func NewOwnedValue(raw []byte) Value {
	return &ownedValue{raw: raw}
}

/*
CopyOwnedValue copies raw into a new owned value.
*/
func CopyOwnedValue(raw []byte) Value {
	return &ownedValue{raw: copyBytes(raw)}
}

func copyBytes(raw []byte) []byte {
	rv := make([]byte, len(raw))
	copy(rv, raw)
	return rv
}

func (this *ownedValue) MarshalJSON() ([]byte, error) {
	return this.raw, nil
}

func (this *ownedValue) String() string {
	return string(this.raw)
}

func (this *ownedValue) Tag() Tag {
	return OWNED
}

func (this *ownedValue) Type() Type {
	return identifyType(this.raw)
}

func (this *ownedValue) Actual() interface{} {
	return parse(this.raw)
}

func (this *ownedValue) Bytes() []byte {
	return this.raw
}

func (this *ownedValue) Field(path string) (Value, bool) {
	p, ok := NewPath(path)
	if !ok {
		return NULL_VALUE, false
	}
	return this.Find(p)
}

func (this *ownedValue) Find(path *Path) (Value, bool) {
	return find(this.raw, path, false)
}

func (this *ownedValue) Index(index int) (Value, bool) {
	return index_(this.raw, index, false)
}

func (this *ownedValue) Clone() Value {
	return &ownedValue{raw: copyBytes(this.raw)}
}

func (this *ownedValue) Equals(other Value) bool {
	return other != nil && equals(this, other)
}

//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package value

type nullValue struct {
}

var _NULL_BYTES = []byte("null")

func (this *nullValue) MarshalJSON() ([]byte, error) {
	return _NULL_BYTES, nil
}

func (this *nullValue) String() string {
	return "null"
}

func (this *nullValue) Tag() Tag {
	return NULL
}

func (this *nullValue) Type() Type {
	return NULL_TYPE
}

func (this *nullValue) Actual() interface{} {
	return nil
}

func (this *nullValue) Bytes() []byte {
	return _NULL_BYTES
}

func (this *nullValue) Field(path string) (Value, bool) {
	return NULL_VALUE, false
}

func (this *nullValue) Find(path *Path) (Value, bool) {
	return NULL_VALUE, false
}

func (this *nullValue) Index(index int) (Value, bool) {
	return NULL_VALUE, false
}

// Null is immutable and shared.
func (this *nullValue) Clone() Value {
	return this
}

func (this *nullValue) Equals(other Value) bool {
	return other != nil && other.Type() == NULL_TYPE
}

//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package value

import (
	"bytes"
	"fmt"
	"reflect"

	json "github.com/couchbase/go_json"
)

/*
Tag identifies the variant of a Value. The set is closed.
*/
type Tag int

const (
	NULL     = Tag(iota) // Explicit null
	SCALAR               // Inline boolean, number or string
	OWNED                // Heap JSON bytes owned by the value
	BORROWED             // JSON bytes owned by a storage snapshot
)

var _TAG_NAMES = []string{
	NULL:     "null",
	SCALAR:   "scalar",
	OWNED:    "owned",
	BORROWED: "borrowed",
}

func (this Tag) String() string {
	return _TAG_NAMES[this]
}

/*
Type is the JSON type of a Value, independent of its variant.
*/
type Type int

const (
	NULL_TYPE = Type(iota)
	BOOLEAN
	NUMBER
	STRING
	ARRAY
	OBJECT
)

var _TYPE_NAMES = []string{
	NULL_TYPE: "null",
	BOOLEAN:   "boolean",
	NUMBER:    "number",
	STRING:    "string",
	ARRAY:     "array",
	OBJECT:    "object",
}

func (this Type) String() string {
	return _TYPE_NAMES[this]
}

/*
Value is the unit stored in a block register.
*/
type Value interface {
	json.Marshaler
	fmt.Stringer

	Tag() Tag
	Type() Type

	/*
	   Actual returns the native Go representation: nil, bool, float64,
	   string, []interface{} or map[string]interface{}.
	*/
	Actual() interface{}

	/*
	   Bytes returns the JSON encoding. For byte variants it is the
	   underlying buffer and must not be modified.
	*/
	Bytes() []byte

	/*
	   Field returns the attribute at the dotted path, and false when it
	   does not exist.
	*/
	Field(path string) (Value, bool)

	/*
	   Find is Field with a precompiled path.
	*/
	Find(path *Path) (Value, bool)

	/*
	   Index returns the array element at position index.
	*/
	Index(index int) (Value, bool)

	/*
	   Clone returns a value independent of any storage memory: borrowed
	   values become owned.
	*/
	Clone() Value

	Equals(other Value) bool
}

var NULL_VALUE Value = &nullValue{}

/*
NewValue builds a value from a native Go value. Numbers are
normalized to float64, the JSON number representation.
*/
func NewValue(val interface{}) Value {
	switch val := val.(type) {
	case nil:
		return NULL_VALUE
	case Value:
		return val
	case bool:
		return &scalarValue{val: val, typ: BOOLEAN}
	case string:
		return &scalarValue{val: val, typ: STRING}
	case float64:
		return &scalarValue{val: val, typ: NUMBER}
	case float32:
		return &scalarValue{val: float64(val), typ: NUMBER}
	case int:
		return &scalarValue{val: float64(val), typ: NUMBER}
	case int32:
		return &scalarValue{val: float64(val), typ: NUMBER}
	case int64:
		return &scalarValue{val: float64(val), typ: NUMBER}
	case uint32:
		return &scalarValue{val: float64(val), typ: NUMBER}
	case uint64:
		return &scalarValue{val: float64(val), typ: NUMBER}
	case []byte:
		return NewValueFromBytes(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return NULL_VALUE
		}
		return NewValueFromBytes(b)
	}
}

/*
NewValueFromBytes classifies JSON bytes. Objects and arrays take
ownership of raw without copying; everything else is decoded inline.
*/
func NewValueFromBytes(raw []byte) Value {
	raw = bytes.TrimSpace(raw)
	switch identifyType(raw) {
	case NULL_TYPE:
		return NULL_VALUE
	case OBJECT, ARRAY:
		return &ownedValue{raw: raw}
	default:
		var actual interface{}
		if err := json.Unmarshal(raw, &actual); err != nil {
			return NULL_VALUE
		}
		return NewValue(actual)
	}
}

func identifyType(raw []byte) Type {
	if len(raw) == 0 {
		return NULL_TYPE
	}
	switch raw[0] {
	case '{':
		return OBJECT
	case '[':
		return ARRAY
	case '"':
		return STRING
	case 't', 'f':
		return BOOLEAN
	case 'n':
		return NULL_TYPE
	default:
		return NUMBER
	}
}

func equals(a, b Value) bool {
	if a.Type() != b.Type() {
		return false
	}
	switch a.Type() {
	case NULL_TYPE:
		return true
	case BOOLEAN, NUMBER, STRING:
		return a.Actual() == b.Actual()
	}
	if bytes.Equal(a.Bytes(), b.Bytes()) {
		return true
	}
	return reflect.DeepEqual(a.Actual(), b.Actual())
}

func parse(raw []byte) interface{} {
	var actual interface{}
	if err := json.Unmarshal(raw, &actual); err != nil {
		return nil
	}
	return normalize(actual)
}

// The decoder yields int64 for integral numbers nested in composites.
func normalize(val interface{}) interface{} {
	switch val := val.(type) {
	case int64:
		return float64(val)
	case int:
		return float64(val)
	case uint64:
		return float64(val)
	case []interface{}:
		for i, v := range val {
			val[i] = normalize(v)
		}
	case map[string]interface{}:
		for k, v := range val {
			val[k] = normalize(v)
		}
	}
	return val
}

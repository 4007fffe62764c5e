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

	json "github.com/couchbase/go_json"
)

/*
ObjectBuilder assembles an owned JSON object whose keys appear in
insertion order. Dotted paths nest: "a.b" and "a.c" share one "a"
object.
*/
type ObjectBuilder struct {
	root objectNode
}

type objectNode struct {
	key      string
	val      Value
	children []*objectNode
}

func NewObjectBuilder() *ObjectBuilder {
	return &ObjectBuilder{}
}

func (this *objectNode) child(key string) *objectNode {
	for _, c := range this.children {
		if c.key == key {
			return c
		}
	}
	c := &objectNode{key: key}
	this.children = append(this.children, c)
	return c
}

/*
Set places val at path. Setting a path twice keeps the last value.
*/
func (this *ObjectBuilder) Set(path *Path, val Value) {
	n := &this.root
	for _, s := range path.segments {
		n = n.child(s)
	}
	n.val = val
	n.children = nil
}

/*
SetField places val under a single top level key.
*/
func (this *ObjectBuilder) SetField(key string, val Value) {
	n := this.root.child(key)
	n.val = val
	n.children = nil
}

/*
Build returns the object and resets the builder.
*/
func (this *ObjectBuilder) Build() Value {
	buf := bytes.NewBuffer(make([]byte, 0, 64))
	writeNode(buf, &this.root)
	this.root = objectNode{}
	return &ownedValue{raw: buf.Bytes()}
}

func writeNode(buf *bytes.Buffer, n *objectNode) {
	if n.children == nil && n.val != nil {
		buf.Write(n.val.Bytes())
		return
	}
	buf.WriteByte('{')
	for i, c := range n.children {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, _ := json.Marshal(c.key)
		buf.Write(k)
		buf.WriteByte(':')
		if c.children == nil && c.val == nil {
			buf.Write(_NULL_BYTES)
		} else {
			writeNode(buf, c)
		}
	}
	buf.WriteByte('}')
}

/*
NewArrayValue returns an owned JSON array of vals, in order.
*/
func NewArrayValue(vals []Value) Value {
	buf := bytes.NewBuffer(make([]byte, 0, 2+16*len(vals)))
	buf.WriteByte('[')
	for i, v := range vals {
		if i > 0 {
			buf.WriteByte(',')
		}
		if v == nil {
			buf.Write(_NULL_BYTES)
		} else {
			buf.Write(v.Bytes())
		}
	}
	buf.WriteByte(']')
	return &ownedValue{raw: buf.Bytes()}
}

//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package value

import (
	"strconv"
	"strings"

	jsonpointer "github.com/dustin/go-jsonpointer"
)

/*
Path is a dotted attribute path compiled once into a JSON pointer.
*/
type Path struct {
	dotted   string
	pointer  string
	segments []string
}

var _POINTER_ESCAPER = strings.NewReplacer("~", "~0", "/", "~1")

/*
NewPath compiles a dotted path. It fails for an empty path or an empty
segment, as in "a..b".
*/
func NewPath(dotted string) (*Path, bool) {
	if dotted == "" {
		return nil, false
	}
	segments := strings.Split(dotted, ".")
	var b strings.Builder
	for _, s := range segments {
		if s == "" {
			return nil, false
		}
		b.WriteByte('/')
		b.WriteString(_POINTER_ESCAPER.Replace(s))
	}
	return &Path{
		dotted:   dotted,
		pointer:  b.String(),
		segments: segments,
	}, true
}

func (this *Path) String() string {
	return this.dotted
}

func (this *Path) Pointer() string {
	return this.pointer
}

func (this *Path) Segments() []string {
	return this.segments
}

/*
IsPrefixOf is true when other descends from this path, as "a" of "a.b".
*/
func (this *Path) IsPrefixOf(other *Path) bool {
	if len(this.segments) >= len(other.segments) {
		return false
	}
	for i, s := range this.segments {
		if other.segments[i] != s {
			return false
		}
	}
	return true
}

func find(raw []byte, path *Path, copyOut bool) (Value, bool) {
	if path == nil || identifyType(raw) != OBJECT {
		return NULL_VALUE, false
	}
	return lookup(raw, path.pointer, copyOut)
}

func index_(raw []byte, index int, copyOut bool) (Value, bool) {
	if index < 0 || identifyType(raw) != ARRAY {
		return NULL_VALUE, false
	}
	return lookup(raw, "/"+strconv.Itoa(index), copyOut)
}

// Sub-documents of borrowed memory are copied out so that they do not
// outlive their snapshot unchecked.
func lookup(raw []byte, pointer string, copyOut bool) (Value, bool) {
	res, err := jsonpointer.Find(raw, pointer)
	if err != nil || res == nil {
		return NULL_VALUE, false
	}
	if copyOut {
		res = copyBytes(res)
	}
	return NewValueFromBytes(res), true
}

//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License
//  included in the file licenses/BSL-Couchbase.txt.  As of the Change Date
//  specified in that file, in accordance with the Business Source License,
//  use of this software will be governed by the Apache License, Version 2.0,
//  included in the file licenses/APL2.txt.

package plan

import (
	json "github.com/couchbase/go_json"
)

// Singleton starts every sequence. It produces the row its pipeline is
// initialized with exactly once: an empty row at the top level, the
// current outer row inside a subquery.
type Singleton struct {
}

func NewSingleton() *Singleton {
	return &Singleton{}
}

func (this *Singleton) Accept(visitor Visitor) (interface{}, error) {
	return visitor.VisitSingleton(this)
}

func (this *Singleton) New() Operator {
	return &Singleton{}
}

func (this *Singleton) References() []string {
	return nil
}

func (this *Singleton) Output() string {
	return ""
}

func (this *Singleton) MarshalJSON() ([]byte, error) {
	return json.Marshal(this.MarshalBase(nil))
}

func (this *Singleton) MarshalBase(f func(map[string]interface{})) map[string]interface{} {
	r := map[string]interface{}{"#operator": "Singleton"}
	if f != nil {
		f(r)
	}
	return r
}

func (this *Singleton) UnmarshalJSON([]byte) error {
	return nil
}

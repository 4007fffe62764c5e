//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

/*
Package errors provides the coded errors raised by the execution core.
Errors carry a numeric code, a translation key and a level; EXCEPTION
level errors are fatal and abort the query that raised them.
*/
package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"runtime"
	"strings"
)

const (
	EXCEPTION = iota
	ERROR
	WARNING
	NOTICE
	INFO
	LOG
	DEBUG
)

type ErrorCode int32

type Errors []Error

// Error will eventually include code, message key, and internal error
// object (cause) and message
type Error interface {
	error
	Code() ErrorCode
	TranslationKey() string
	GetICause() error
	Level() int
	IsFatal() bool
	IsWarning() bool
	Object() map[string]interface{}
	Cause() interface{}
	HasCause(ErrorCode) bool
	SetCause(cause interface{})
	ContainsText(text string) bool
}

func NewError(e error, internalMsg string) Error {
	switch e := e.(type) {
	case Error: // if given error is already an Error, just return it:
		return e
	default:
		return &err{level: EXCEPTION, ICode: E_INTERNAL, IKey: "internal_error", ICause: e,
			InternalMsg: internalMsg, InternalCaller: CallerN(1)}
	}
}

func NewWarning(internalMsg string) Error {
	return &err{level: WARNING, InternalMsg: internalMsg, InternalCaller: CallerN(1)}
}

func NewErrors(es []error, internalMsg string) (errs Errors) {
	for _, e := range es {
		errs = append(errs, NewError(e, internalMsg))
	}
	return errs
}

type err struct {
	ICode          ErrorCode
	IKey           string
	ICause         error
	InternalMsg    string
	InternalCaller string
	level          int
	cause          interface{}
}

func (e *err) Error() string {
	switch {
	default:
		return "Unspecified error."
	case e.InternalMsg != "" && e.ICause != nil:
		return e.InternalMsg + " - cause: " + e.ICause.Error()
	case e.InternalMsg != "":
		return e.InternalMsg
	case e.ICause != nil:
		return e.ICause.Error()
	case e.cause != nil: // only as a last resort if InternalMsg & ICause aren't set
		return fmt.Sprintf("%v", e.cause)
	}
}

func (e *err) Object() map[string]interface{} {
	m := map[string]interface{}{
		// only use standard data types in the object
		"code":    int32(e.ICode),
		"key":     e.IKey,
		"message": e.InternalMsg,
	}
	if e.ICause != nil {
		m["icause"] = e.ICause.Error()
	}
	if e.cause != nil {
		m["cause"] = processValue(e.cause)
	}
	return m
}

func processValue(v interface{}) interface{} {
	switch vt := v.(type) {
	case map[string]interface{}:
		rv := make(map[string]interface{}, len(vt))
		for k, v := range vt {
			rv[k] = processValue(v)
		}
		return rv
	case interface{ Object() map[string]interface{} }:
		return vt.Object()
	case interface{ Error() string }:
		return vt.Error()
	case interface{ String() string }:
		return vt.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (e *err) MarshalJSON() ([]byte, error) {
	m := e.Object()
	if e.InternalCaller != "" &&
		!strings.HasPrefix(e.InternalCaller, "unknown:") {
		m["caller"] = e.InternalCaller
	}
	return json.Marshal(m)
}

func (e *err) UnmarshalJSON(body []byte) error {
	var _unmarshalled struct {
		Caller  string      `json:"caller"`
		Code    int32       `json:"code"`
		ICause  string      `json:"icause"`
		Key     string      `json:"key"`
		Message string      `json:"message"`
		Cause   interface{} `json:"cause"`
	}

	unmarshalErr := json.Unmarshal(body, &_unmarshalled)
	if unmarshalErr != nil {
		return unmarshalErr
	}

	e.ICode = ErrorCode(_unmarshalled.Code)
	e.IKey = _unmarshalled.Key
	e.InternalMsg = _unmarshalled.Message
	e.InternalCaller = _unmarshalled.Caller
	e.cause = _unmarshalled.Cause
	if _unmarshalled.ICause != "" {
		e.ICause = errors.New(_unmarshalled.ICause)
	}
	return nil
}

func (e *err) Level() int {
	return e.level
}

func (e *err) IsFatal() bool {
	return e.level == EXCEPTION
}

func (e *err) IsWarning() bool {
	return e.level == WARNING
}

func (e *err) Code() ErrorCode {
	return e.ICode
}

func (e *err) TranslationKey() string {
	return e.IKey
}

func (e *err) GetICause() error {
	return e.ICause
}

func (e *err) Cause() interface{} {
	return e.cause
}

func (e *err) SetCause(cause interface{}) {
	e.cause = cause
}

// Returns "FileName:LineNum" of caller.
func Caller() string {
	return CallerN(1)
}

// Returns "FileName:LineNum" of the Nth caller on the call stack,
// where level of 0 is the caller of CallerN.
func CallerN(level int) string {
	_, fname, lineno, ok := runtime.Caller(1 + level)
	if !ok {
		return "unknown:0"
	}
	return fmt.Sprintf("%s:%d",
		strings.Split(path.Base(fname), ".")[0], lineno)
}

// search initial error text and all cause nesting levels for the given string
func (e *err) ContainsText(text string) bool {
	if strings.Contains(e.Error(), text) {
		return true
	}
	c := e.Cause()
	for c != nil {
		if strings.Contains(fmt.Sprintf("%v", c), text) {
			return true
		}
		cse, ok := c.(Error)
		if !ok {
			return false
		}
		c = cse.Cause()
	}
	return false
}

func (e *err) HasCause(code ErrorCode) bool {
	if e.Code() == code {
		return true
	}
	c := e.Cause()
	for c != nil {
		switch cse := c.(type) {
		case Error:
			if cse.Code() == code {
				return true
			}
			c = cse.Cause()
		default:
			c = nil
		}
	}
	return false
}

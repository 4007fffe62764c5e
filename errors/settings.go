//  Copyright 2025-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package errors

import (
	"fmt"
)

func NewSettingsInvalidValue(setting string, expected string, val interface{}) Error {
	return &err{level: EXCEPTION, ICode: E_SETTINGS_INVALID_VALUE, IKey: "settings.invalid_value",
		InternalMsg:    fmt.Sprintf("Invalid value %v for setting %s (expected %s)", val, setting, expected),
		InternalCaller: CallerN(1)}
}

func NewSettingsInvalidType(setting string, val interface{}) Error {
	return &err{level: EXCEPTION, ICode: E_SETTINGS_INVALID_TYPE, IKey: "settings.invalid_type",
		InternalMsg: fmt.Sprintf("Invalid type %T for %s", val, setting), InternalCaller: CallerN(1)}
}

func NewSettingsLoadError(e error, path string) Error {
	return &err{level: EXCEPTION, ICode: E_SETTINGS_LOAD, IKey: "settings.load_error", ICause: e,
		InternalMsg: fmt.Sprintf("Error loading settings from %s", path), InternalCaller: CallerN(1)}
}

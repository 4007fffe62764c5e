//  Copyright 2014-Present Couchbase, Inc.
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

// Error codes for the mock and bolt datastores

func NewDatastoreInvalidURL(url string, e error) Error {
	return &err{level: EXCEPTION, ICode: E_DATASTORE_INVALID_URL, IKey: "datastore.invalid_url", ICause: e,
		InternalMsg: fmt.Sprintf("Invalid datastore URL: %s", url), InternalCaller: CallerN(1)}
}

func NewKeyspaceNotFoundError(name string) Error {
	return &err{level: EXCEPTION, ICode: E_DATASTORE_KEYSPACE_NOT_FOUND, IKey: "datastore.keyspace_not_found",
		InternalMsg: fmt.Sprintf("Keyspace %s not found.", name), InternalCaller: CallerN(1)}
}

func NewIndexNotFoundError(keyspace, name string) Error {
	return &err{level: EXCEPTION, ICode: E_DATASTORE_INDEX_NOT_FOUND, IKey: "datastore.index_not_found",
		InternalMsg: fmt.Sprintf("Index %s on %s not found.", name, keyspace), InternalCaller: CallerN(1)}
}

func NewSnapshotError(e error, msg string) Error {
	return &err{level: EXCEPTION, ICode: E_DATASTORE_SNAPSHOT, IKey: "datastore.snapshot_error", ICause: e,
		InternalMsg: msg, InternalCaller: CallerN(1)}
}

func NewDocumentNotFoundError(keyspace string, id uint64) Error {
	return &err{level: EXCEPTION, ICode: E_DATASTORE_DOCUMENT_NOT_FOUND, IKey: "datastore.document_not_found",
		InternalMsg: fmt.Sprintf("Document %d not found in %s.", id, keyspace), InternalCaller: CallerN(1)}
}

func NewCodecError(e error, codec string) Error {
	return &err{level: EXCEPTION, ICode: E_DATASTORE_CODEC, IKey: "datastore.codec_error", ICause: e,
		InternalMsg: fmt.Sprintf("Error in %s document codec", codec), InternalCaller: CallerN(1)}
}

func NewBoltError(e error, msg string) Error {
	return &err{level: EXCEPTION, ICode: E_DATASTORE_BOLT, IKey: "datastore.bolt_error", ICause: e,
		InternalMsg: msg, InternalCaller: CallerN(1)}
}

func NewInvalidDocumentError(e error, key string) Error {
	return &err{level: EXCEPTION, ICode: E_DATASTORE_INVALID_DOCUMENT, IKey: "datastore.invalid_document", ICause: e,
		InternalMsg: fmt.Sprintf("Document %s is not a valid JSON object", key), InternalCaller: CallerN(1)}
}

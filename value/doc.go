//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

/*
Package value represents the documents flowing through a pipeline. A
Value is one of four closed variants:

null.go: the explicit null, also written for missing attributes.

scalar.go: an inline boolean, number or string.

owned.go: JSON bytes on the heap, owned by the value (and so by the
block holding it).

borrowed.go: JSON bytes owned by a storage snapshot. A borrowed value
carries a lease generation, and any read after the snapshot is released
panics instead of returning stale bytes.

Attribute lookup on the byte variants uses go-jsonpointer, so projecting
a field never parses the whole document.
*/
package value

//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package resolver

import (
	"fmt"
	"strings"

	"github.com/docflow/pipeline/datastore"
	"github.com/docflow/pipeline/datastore/bolt"
	"github.com/docflow/pipeline/datastore/mock"
	"github.com/docflow/pipeline/errors"
)

func NewDatastore(uri string) (datastore.Datastore, errors.Error) {
	if strings.HasPrefix(uri, "mock:") {
		return mock.NewDatastore(uri)
	}

	if strings.HasPrefix(uri, "bolt:") {
		return bolt.NewDatastore(uri)
	}

	return nil, errors.NewDatastoreInvalidURL(uri, fmt.Errorf("unknown scheme"))
}

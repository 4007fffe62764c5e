//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package execution

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/docflow/pipeline/errors"
	"github.com/docflow/pipeline/logging"
	"github.com/docflow/pipeline/util"
	"github.com/docflow/pipeline/value"
)

/*
Scheduler runs independent queries on a bounded number of goroutines.
Each query is driven by exactly one goroutine from start to finish.
*/
type Scheduler struct {
	parallelism int
}

func NewScheduler(parallelism int) *Scheduler {
	if parallelism < 1 {
		parallelism = util.NumCPU()
	}
	return &Scheduler{parallelism: parallelism}
}

func (this *Scheduler) Parallelism() int {
	return this.parallelism
}

/*
Run executes queries and returns their results in query order. The
first failure stops the queries still running, and is returned.
*/
func (this *Scheduler) Run(ctx context.Context, queries []*Query) ([][]value.Value, errors.Error) {
	results := make([][]value.Value, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(this.parallelism)

	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			if gctx.Err() != nil {
				return errors.NewCancelledError(q.Context().QueryId())
			}
			stop := context.AfterFunc(gctx, q.Stop)
			defer stop()

			rv, err := q.Execute()
			if err != nil {
				return err
			}
			results[i] = rv
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		logging.Debugf("scheduler: %v", err)
		if e, ok := err.(errors.Error); ok {
			return nil, e
		}
		return nil, errors.NewSchedulerError(err)
	}
	return results, nil
}

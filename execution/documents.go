//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package execution

import (
	"fmt"

	"github.com/docflow/pipeline/block"
	"github.com/docflow/pipeline/datastore"
	"github.com/docflow/pipeline/errors"
	"github.com/docflow/pipeline/plan"
	"github.com/docflow/pipeline/value"
)

// Strategy is how a scan turns a stored document into a register value.
type Strategy int

const (
	NO_RESULT Strategy = iota
	PROJECTIONS_COVERED_BY_INDEX
	PROJECTIONS_NOT_COVERED_BY_INDEX
	DOCUMENT_WITH_RAW_POINTER
	DOCUMENT_COPY
)

var _STRATEGY_NAMES = []string{
	NO_RESULT:                        "NoResult",
	PROJECTIONS_COVERED_BY_INDEX:     "ProjectionsCoveredByIndex",
	PROJECTIONS_NOT_COVERED_BY_INDEX: "ProjectionsNotCoveredByIndex",
	DOCUMENT_WITH_RAW_POINTER:        "DocumentWithRawPointer",
	DOCUMENT_COPY:                    "DocumentCopy",
}

func (this Strategy) String() string {
	if int(this) < 0 || int(this) >= len(_STRATEGY_NAMES) {
		return "Unknown"
	}
	return _STRATEGY_NAMES[this]
}

// DocumentProducerOptions is the static configuration of a scan.
type DocumentProducerOptions struct {
	ProduceResult     bool
	Projections       plan.Projections
	CoveringPositions []int
	AllowCovering     bool
	UseRawPointers    bool
}

func ChooseStrategy(options *DocumentProducerOptions) Strategy {
	switch {
	case !options.ProduceResult:
		return NO_RESULT
	case len(options.Projections) > 0 && options.CoveringPositions != nil:
		return PROJECTIONS_COVERED_BY_INDEX
	case len(options.Projections) > 0:
		return PROJECTIONS_NOT_COVERED_BY_INDEX
	case options.UseRawPointers:
		return DOCUMENT_WITH_RAW_POINTER
	default:
		return DOCUMENT_COPY
	}
}

type documentFunc func(this *DocumentProducer, output *block.OutputRow, input block.InputRow,
	id datastore.LocalDocumentId, raw []byte)

type coveringFunc func(this *DocumentProducer, output *block.OutputRow, input block.InputRow,
	id datastore.LocalDocumentId, entry value.Value)

/*
DocumentProducer writes scanned documents into one output register. The
strategy is resolved once, when the producer is built; Document and
Covering then call the chosen function directly.
*/
type DocumentProducer struct {
	strategy      Strategy
	register      block.RegisterId
	snapshot      datastore.Snapshot
	projections   plan.Projections
	paths         []*value.Path
	positions     []int
	allowCovering bool
	builder       *value.ObjectBuilder
	numScanned    int64

	document documentFunc
	covering coveringFunc
}

/*
NewDocumentProducer panics with a contract violation on malformed
projections: those are plan errors, never row errors.
*/
func NewDocumentProducer(options *DocumentProducerOptions, register block.RegisterId,
	snapshot datastore.Snapshot) *DocumentProducer {

	rv := &DocumentProducer{
		strategy:      ChooseStrategy(options),
		register:      register,
		snapshot:      snapshot,
		projections:   options.Projections,
		allowCovering: options.AllowCovering,
	}

	switch rv.strategy {
	case NO_RESULT:
		rv.document = produceNoResult
		rv.covering = coverNoResult
	case PROJECTIONS_COVERED_BY_INDEX:
		rv.compileProjections()
		if len(options.CoveringPositions) != len(options.Projections) {
			panic(errors.NewContractViolation(fmt.Sprintf("%d covering positions for %d projections",
				len(options.CoveringPositions), len(options.Projections))))
		}
		for _, p := range options.CoveringPositions {
			if p < 0 {
				panic(errors.NewContractViolation(fmt.Sprintf("negative covering position %d", p)))
			}
		}
		rv.positions = options.CoveringPositions
		rv.document = produceProjections
		rv.covering = coverProjections
	case PROJECTIONS_NOT_COVERED_BY_INDEX:
		rv.compileProjections()
		rv.document = produceProjections
	case DOCUMENT_WITH_RAW_POINTER:
		if snapshot == nil || !snapshot.Synchronous() {
			panic(errors.NewContractViolation("raw document pointers need a synchronous snapshot"))
		}
		rv.document = produceRawPointer
	default:
		rv.document = produceCopy
	}
	return rv
}

func (this *DocumentProducer) compileProjections() {
	if err := this.projections.Validate(); err != nil {
		panic(errors.NewContractViolation(err.Error()))
	}
	this.paths = make([]*value.Path, len(this.projections))
	for i, p := range this.projections {
		this.paths[i], _ = value.NewPath(p)
	}
	this.builder = value.NewObjectBuilder()
}

func (this *DocumentProducer) Strategy() Strategy {
	return this.strategy
}

/*
Covers is true when index entries are enough to produce the output, so
that no document needs to be fetched.
*/
func (this *DocumentProducer) Covers() bool {
	return this.covering != nil && (this.strategy != PROJECTIONS_COVERED_BY_INDEX || this.allowCovering)
}

// Document produces from a whole stored document.
func (this *DocumentProducer) Document(output *block.OutputRow, input block.InputRow,
	id datastore.LocalDocumentId, raw []byte) {
	this.numScanned++
	this.document(this, output, input, id, raw)
}

// Covering produces from an index entry.
func (this *DocumentProducer) Covering(output *block.OutputRow, input block.InputRow,
	id datastore.LocalDocumentId, entry value.Value) {
	if this.covering == nil {
		panic(errors.NewContractViolation(this.strategy.String() + " cannot produce from index entries"))
	}
	this.numScanned++
	this.covering(this, output, input, id, entry)
}

func (this *DocumentProducer) GetAndResetNumScanned() int64 {
	rv := this.numScanned
	this.numScanned = 0
	return rv
}

func produceNoResult(this *DocumentProducer, output *block.OutputRow, input block.InputRow,
	id datastore.LocalDocumentId, raw []byte) {
	output.CloneValueInto(this.register, input, value.NULL_VALUE)
}

func coverNoResult(this *DocumentProducer, output *block.OutputRow, input block.InputRow,
	id datastore.LocalDocumentId, entry value.Value) {
	output.CloneValueInto(this.register, input, value.NULL_VALUE)
}

// Index entries are arrays in index field order, except for single
// field indexes whose entry is the value itself.
func coverProjections(this *DocumentProducer, output *block.OutputRow, input block.InputRow,
	id datastore.LocalDocumentId, entry value.Value) {
	isArray := entry.Type() == value.ARRAY
	for i, path := range this.paths {
		v := entry
		if isArray {
			var ok bool
			v, ok = entry.Index(this.positions[i])
			if !ok {
				v = value.NULL_VALUE
			}
		}
		this.builder.Set(path, v)
	}
	output.MoveValueInto(this.register, input, block.NewValueGuard(this.builder.Build()))
}

func produceProjections(this *DocumentProducer, output *block.OutputRow, input block.InputRow,
	id datastore.LocalDocumentId, raw []byte) {

	// raw is only read here, and the built object copies what it keeps
	doc := value.NewOwnedValue(raw)
	resolver := this.snapshot.Resolver()
	for i, path := range this.paths {
		var v value.Value
		switch this.projections[i] {
		case datastore.ID_ATTRIBUTE:
			v = resolver.Id(id, doc)
		case datastore.KEY_ATTRIBUTE:
			v = resolver.Key(id, doc)
		default:
			var ok bool
			v, ok = doc.Find(path)
			if !ok {
				v = value.NULL_VALUE
			}
		}
		this.builder.Set(path, v)
	}
	output.MoveValueInto(this.register, input, block.NewValueGuard(this.builder.Build()))
}

func produceRawPointer(this *DocumentProducer, output *block.OutputRow, input block.InputRow,
	id datastore.LocalDocumentId, raw []byte) {
	v := value.NewBorrowedValue(raw, this.snapshot.Lease())
	output.MoveValueInto(this.register, input, block.NewValueGuard(v))
}

func produceCopy(this *DocumentProducer, output *block.OutputRow, input block.InputRow,
	id datastore.LocalDocumentId, raw []byte) {
	output.MoveValueInto(this.register, input, block.NewValueGuard(value.CopyOwnedValue(raw)))
}

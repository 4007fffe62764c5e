//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

package bolt

import (
	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"

	"github.com/docflow/pipeline/errors"
)

const (
	CODEC_NONE   = "none"
	CODEC_SNAPPY = "snappy"
	CODEC_ZSTD   = "zstd"
)

/*
codec converts documents to and from their stored form. A codec that
returns its input from decode lets readers borrow database memory;
the others decode into the dst buffer, which the caller reuses.
*/
type codec interface {
	name() string
	encode(src []byte) ([]byte, error)
	decode(dst, src []byte) ([]byte, error)
	inPlace() bool
}

func newCodec(name string) (codec, errors.Error) {
	switch name {
	case "", CODEC_NONE:
		return noneCodec{}, nil
	case CODEC_SNAPPY:
		return snappyCodec{}, nil
	case CODEC_ZSTD:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, errors.NewCodecError(err, name)
		}
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, errors.NewCodecError(err, name)
		}
		return &zstdCodec{encoder: enc, decoder: dec}, nil
	}
	return nil, errors.NewCodecError(nil, name)
}

type noneCodec struct{}

func (noneCodec) name() string {
	return CODEC_NONE
}

func (noneCodec) encode(src []byte) ([]byte, error) {
	return src, nil
}

func (noneCodec) decode(dst, src []byte) ([]byte, error) {
	return src, nil
}

func (noneCodec) inPlace() bool {
	return true
}

type snappyCodec struct{}

func (snappyCodec) name() string {
	return CODEC_SNAPPY
}

func (snappyCodec) encode(src []byte) ([]byte, error) {
	return snappy.Encode(nil, src), nil
}

func (snappyCodec) decode(dst, src []byte) ([]byte, error) {
	n, err := snappy.DecodedLen(src)
	if err != nil {
		return nil, err
	}
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	return snappy.Decode(dst[:cap(dst)], src)
}

func (snappyCodec) inPlace() bool {
	return false
}

// Encoder and decoder are safe for concurrent use through EncodeAll and
// DecodeAll.
type zstdCodec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func (this *zstdCodec) name() string {
	return CODEC_ZSTD
}

func (this *zstdCodec) encode(src []byte) ([]byte, error) {
	return this.encoder.EncodeAll(src, make([]byte, 0, len(src))), nil
}

func (this *zstdCodec) decode(dst, src []byte) ([]byte, error) {
	return this.decoder.DecodeAll(src, dst[:0])
}

func (this *zstdCodec) inPlace() bool {
	return false
}

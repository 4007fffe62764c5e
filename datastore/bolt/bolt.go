//  Copyright 2014-Present Couchbase, Inc.
//
//  Use of this software is governed by the Business Source License included
//  in the file licenses/BSL-Couchbase.txt.  As of the Change Date specified
//  in that file, in accordance with the Business Source License, use of this
//  software will be governed by the Apache License, Version 2.0, included in
//  the file licenses/APL2.txt.

/*
Package bolt is a persistent datastore on bbolt. Each keyspace is a
bucket holding a "docs" bucket, keyed by big endian document id, and an
"indexes" bucket of index definitions.

A snapshot is a read transaction. With the "none" codec documents are
handed out straight from the memory map, valid until the transaction
ends, and the snapshot is synchronous. Compressed codecs decode into a
buffer reused across documents, and so are not.
*/
package bolt

import (
	"encoding/binary"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/couchbase/go_json"
	"go.etcd.io/bbolt"

	"github.com/docflow/pipeline/datastore"
	"github.com/docflow/pipeline/errors"
	"github.com/docflow/pipeline/logging"
	"github.com/docflow/pipeline/value"
)

var (
	_META_BUCKET    = []byte("_meta")
	_DOCS_BUCKET    = []byte("docs")
	_INDEXES_BUCKET = []byte("indexes")
	_CODEC_KEY      = []byte("codec")
)

const _OPEN_TIMEOUT = 5 * time.Second

type Store struct {
	url   string
	path  string
	db    *bbolt.DB
	codec codec
}

/*
NewDatastore opens the store named by a URL of the form
bolt:<path>[?codec=none|snappy|zstd].
*/
func NewDatastore(uri string) (datastore.Datastore, errors.Error) {
	path := strings.TrimPrefix(uri, "bolt:")
	codecName := ""
	if i := strings.IndexByte(path, '?'); i >= 0 {
		q, err := url.ParseQuery(path[i+1:])
		if err != nil {
			return nil, errors.NewDatastoreInvalidURL(uri, err)
		}
		codecName = q.Get("codec")
		path = path[:i]
	}
	if path == "" {
		return nil, errors.NewDatastoreInvalidURL(uri, fmt.Errorf("missing path"))
	}
	s, err := Open(path, codecName)
	if err != nil {
		return nil, err
	}
	return s, nil
}

/*
Open opens or creates the database at path. A database remembers the
codec it was created with; opening it with another one fails.
*/
func Open(path string, codecName string) (*Store, errors.Error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: _OPEN_TIMEOUT})
	if err != nil {
		return nil, errors.NewBoltError(err, "open "+path)
	}
	stored := ""
	err = db.Update(func(tx *bbolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists(_META_BUCKET)
		if err != nil {
			return err
		}
		if c := meta.Get(_CODEC_KEY); c != nil {
			stored = string(c)
			return nil
		}
		if codecName == "" {
			codecName = CODEC_NONE
		}
		stored = codecName
		return meta.Put(_CODEC_KEY, []byte(codecName))
	})
	if err != nil {
		db.Close()
		return nil, errors.NewBoltError(err, "initialize "+path)
	}
	if codecName != "" && codecName != stored {
		db.Close()
		return nil, errors.NewCodecError(fmt.Errorf("database uses codec %s", stored), codecName)
	}
	c, cerr := newCodec(stored)
	if cerr != nil {
		db.Close()
		return nil, cerr
	}
	logging.Infof("Opened bolt datastore %s with codec %s", path, c.name())
	return &Store{url: "bolt:" + path, path: path, db: db, codec: c}, nil
}

func (s *Store) URL() string {
	return s.url
}

func (s *Store) KeyspaceNames() ([]string, errors.Error) {
	var rv []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bbolt.Bucket) error {
			if string(name) != string(_META_BUCKET) {
				rv = append(rv, string(name))
			}
			return nil
		})
	})
	if err != nil {
		return nil, errors.NewBoltError(err, "list keyspaces")
	}
	return rv, nil
}

func (s *Store) KeyspaceByName(name string) (datastore.Keyspace, errors.Error) {
	found := false
	s.db.View(func(tx *bbolt.Tx) error {
		found = name != string(_META_BUCKET) && tx.Bucket([]byte(name)) != nil
		return nil
	})
	if !found {
		return nil, errors.NewKeyspaceNotFoundError(name)
	}
	return &keyspace{store: s, name: name}, nil
}

func (s *Store) Close() errors.Error {
	if err := s.db.Close(); err != nil {
		return errors.NewBoltError(err, "close "+s.path)
	}
	return nil
}

func (s *Store) CreateKeyspace(name string) errors.Error {
	if name == string(_META_BUCKET) || name == "" {
		return errors.NewBoltError(fmt.Errorf("reserved name"), "create keyspace "+name)
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(name))
		if err != nil {
			return err
		}
		if _, err = b.CreateBucketIfNotExists(_DOCS_BUCKET); err != nil {
			return err
		}
		_, err = b.CreateBucketIfNotExists(_INDEXES_BUCKET)
		return err
	})
	if err != nil {
		return errors.NewBoltError(err, "create keyspace "+name)
	}
	return nil
}

/*
Insert stores docs in one transaction and returns their ids. A document
without a "_key" gets its id as key.
*/
func (s *Store) Insert(name string, docs []map[string]interface{}) ([]datastore.LocalDocumentId, errors.Error) {
	ids := make([]datastore.LocalDocumentId, 0, len(docs))
	var ierr errors.Error
	err := s.db.Update(func(tx *bbolt.Tx) error {
		ks := tx.Bucket([]byte(name))
		if ks == nil {
			ierr = errors.NewKeyspaceNotFoundError(name)
			return ierr
		}
		b := ks.Bucket(_DOCS_BUCKET)
		for _, doc := range docs {
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			id := datastore.LocalDocumentId(seq)
			if _, ok := doc[datastore.KEY_ATTRIBUTE]; !ok {
				d := make(map[string]interface{}, len(doc)+1)
				for k, v := range doc {
					d[k] = v
				}
				d[datastore.KEY_ATTRIBUTE] = strconv.FormatUint(seq, 10)
				doc = d
			}
			raw, err := json.Marshal(doc)
			if err != nil {
				ierr = errors.NewInvalidDocumentError(err, fmt.Sprint(doc[datastore.KEY_ATTRIBUTE]))
				return ierr
			}
			enc, err := s.codec.encode(raw)
			if err != nil {
				ierr = errors.NewCodecError(err, s.codec.name())
				return ierr
			}
			if err = b.Put(itob(id), enc); err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if ierr != nil {
		return nil, ierr
	}
	if err != nil {
		return nil, errors.NewBoltError(err, "insert into "+name)
	}
	return ids, nil
}

func (s *Store) CreateIndex(name, index string, fields []string) errors.Error {
	if len(fields) == 0 {
		return errors.NewBoltError(fmt.Errorf("no fields"), "create index "+index)
	}
	for _, f := range fields {
		if _, ok := value.NewPath(f); !ok {
			return errors.NewBoltError(fmt.Errorf("invalid field %q", f), "create index "+index)
		}
	}
	def, _ := json.Marshal(fields)
	var ierr errors.Error
	err := s.db.Update(func(tx *bbolt.Tx) error {
		ks := tx.Bucket([]byte(name))
		if ks == nil {
			ierr = errors.NewKeyspaceNotFoundError(name)
			return ierr
		}
		return ks.Bucket(_INDEXES_BUCKET).Put([]byte(index), def)
	})
	if ierr != nil {
		return ierr
	}
	if err != nil {
		return errors.NewBoltError(err, "create index "+index)
	}
	return nil
}

func itob(id datastore.LocalDocumentId) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

func btoi(b []byte) datastore.LocalDocumentId {
	return datastore.LocalDocumentId(binary.BigEndian.Uint64(b))
}

type keyspace struct {
	store *Store
	name  string
}

func (b *keyspace) Name() string {
	return b.name
}

func (b *keyspace) Count() (int64, errors.Error) {
	var n int
	err := b.store.db.View(func(tx *bbolt.Tx) error {
		ks := tx.Bucket([]byte(b.name))
		if ks == nil {
			return errors.NewKeyspaceNotFoundError(b.name)
		}
		n = ks.Bucket(_DOCS_BUCKET).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, errors.NewBoltError(err, "count "+b.name)
	}
	return int64(n), nil
}

func (b *keyspace) IndexNames() ([]string, errors.Error) {
	var rv []string
	err := b.store.db.View(func(tx *bbolt.Tx) error {
		ks := tx.Bucket([]byte(b.name))
		if ks == nil {
			return errors.NewKeyspaceNotFoundError(b.name)
		}
		return ks.Bucket(_INDEXES_BUCKET).ForEach(func(k, _ []byte) error {
			rv = append(rv, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, errors.NewBoltError(err, "list indexes of "+b.name)
	}
	return rv, nil
}

func (b *keyspace) IndexByName(name string) (datastore.Index, errors.Error) {
	var def []byte
	b.store.db.View(func(tx *bbolt.Tx) error {
		if ks := tx.Bucket([]byte(b.name)); ks != nil {
			if d := ks.Bucket(_INDEXES_BUCKET).Get([]byte(name)); d != nil {
				def = append(def, d...)
			}
		}
		return nil
	})
	if def == nil {
		return nil, errors.NewIndexNotFoundError(b.name, name)
	}
	var fields []string
	if err := json.Unmarshal(def, &fields); err != nil {
		return nil, errors.NewBoltError(err, "read index "+name)
	}
	return &index{keyspace: b, name: name, fields: fields}, nil
}

func (b *keyspace) Snapshot() (datastore.Snapshot, errors.Error) {
	tx, err := b.store.db.Begin(false)
	if err != nil {
		return nil, errors.NewSnapshotError(err, "begin read transaction on "+b.name)
	}
	ks := tx.Bucket([]byte(b.name))
	if ks == nil {
		tx.Rollback()
		return nil, errors.NewKeyspaceNotFoundError(b.name)
	}
	return &snapshot{
		keyspace: b,
		tx:       tx,
		docs:     ks.Bucket(_DOCS_BUCKET),
		lease:    value.NewLease(),
		resolver: &datastore.KeyResolver{KeyspaceName: b.name},
	}, nil
}

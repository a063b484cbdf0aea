/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: leveldb.go
Description: Persistent store backed by goleveldb so OCR and translation results survive
between runs. Values are stored as JSON under "<namespace>-<key>".
*/

package cache

import (
	"encoding/json"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/syndtr/goleveldb/leveldb"
)

// LevelDBStore persists JSON encoded values
type LevelDBStore[V any] struct {
	db        *leveldb.DB
	namespace string
	logger    *logrus.Logger
}

// NewLevelDBStore wraps an open database. Read and write failures are logged to logger.
func NewLevelDBStore[V any](db *leveldb.DB, namespace string, logger *logrus.Logger) *LevelDBStore[V] {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &LevelDBStore[V]{db: db, namespace: namespace, logger: logger}
}

func (s *LevelDBStore[V]) key(k string) []byte {
	return []byte(s.namespace + "-" + k)
}

func (s *LevelDBStore[V]) Get(key string) (V, bool) {
	var v V
	data, err := s.db.Get(s.key(key), nil)
	if err != nil {
		if err != leveldb.ErrNotFound {
			s.logger.WithFields(logrus.Fields{"key": key, "error": err}).Warn("Cache read failed")
		}
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		s.logger.WithFields(logrus.Fields{"key": key, "error": err}).Warn("Dropping undecodable cache entry")
		return v, false
	}
	return v, true
}

func (s *LevelDBStore[V]) Set(key string, value V) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.WithFields(logrus.Fields{"key": key, "error": err}).Warn("Cache value not encodable")
		return
	}
	if err := s.db.Put(s.key(key), data, nil); err != nil {
		s.logger.WithFields(logrus.Fields{"key": key, "error": err}).Warn("Cache write failed")
	}
}

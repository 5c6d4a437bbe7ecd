// Package dedup tracks document fingerprints across batch runs so the same
// invoice is not ingested twice. Fingerprints are the SHA-1 of the extracted
// raw text, which survives renaming and re-uploading of the same document.
package dedup

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const seenBucket = "seen_documents"

// Entry records where and when a fingerprint was first seen.
type Entry struct {
	File      string    `json:"file"`
	FirstSeen time.Time `json:"first_seen"`
}

// Index is a persistent fingerprint set backed by BoltDB.
type Index struct {
	db *bbolt.DB
}

// Open opens or creates the index file at path.
func Open(path string) (*Index, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening dedup index: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(seenBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating bucket: %w", err)
	}

	return &Index{db: db}, nil
}

// Check atomically tests a fingerprint and records it when new. It returns
// the prior sighting when the fingerprint was already known, or nil when
// this is the first time.
func (i *Index) Check(hash, file string) (*Entry, error) {
	var prior *Entry
	err := i.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(seenBucket))
		if data := bucket.Get([]byte(hash)); data != nil {
			var e Entry
			if err := json.Unmarshal(data, &e); err != nil {
				return fmt.Errorf("unmarshaling entry: %w", err)
			}
			prior = &e
			return nil
		}

		data, err := json.Marshal(Entry{File: file, FirstSeen: time.Now().UTC()})
		if err != nil {
			return fmt.Errorf("marshaling entry: %w", err)
		}
		return bucket.Put([]byte(hash), data)
	})
	return prior, err
}

// Seen looks up a fingerprint without recording anything.
func (i *Index) Seen(hash string) (*Entry, error) {
	var entry *Entry
	err := i.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(seenBucket)).Get([]byte(hash))
		if data == nil {
			return nil
		}
		var e Entry
		if err := json.Unmarshal(data, &e); err != nil {
			return fmt.Errorf("unmarshaling entry: %w", err)
		}
		entry = &e
		return nil
	})
	return entry, err
}

// Count returns the number of known fingerprints.
func (i *Index) Count() (int, error) {
	var n int
	err := i.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket([]byte(seenBucket)).Stats().KeyN
		return nil
	})
	return n, err
}

// Close closes the underlying database.
func (i *Index) Close() error {
	return i.db.Close()
}

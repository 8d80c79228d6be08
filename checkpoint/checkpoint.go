// Package checkpoint stores model states in a bolt database.
package checkpoint

import (
	"encoding/json"
	"errors"

	"github.com/op/go-logging"

	bolt "go.etcd.io/bbolt"
)

// log is the global logging variable.
var log = logging.MustGetLogger("checkpoint")

// MAIN is the bucket name for all the states.
var MAIN = []byte("main")

// ErrModelMismatch is returned when a stored state belongs to a
// different model.
var ErrModelMismatch = errors.New("checkpoint: model mismatch")

// Data is a stored model state.
type Data struct {
	Model      string
	Classes    int
	Parameters map[string]float64
	// Rates is the packed relative rate vector.
	Rates []float64
	Scale float64
}

// IO saves and loads states under a single key.
type IO struct {
	db  *bolt.DB
	key []byte
}

// NewIO creates a new IO. If db is nil, nothing is saved or loaded.
func NewIO(db *bolt.DB, key []byte) *IO {
	return &IO{
		db:  db,
		key: key,
	}
}

// Open opens (or creates) a bolt database.
func Open(fn string) (*bolt.DB, error) {
	return bolt.Open(fn, 0600, nil)
}

// Save serializes and saves the state.
func (s *IO) Save(data *Data) error {
	dataB, err := json.Marshal(data)
	if err != nil {
		log.Error("Error serializing checkpoint", err)
		return err
	}
	err = SaveData(s.db, s.key, dataB)
	if err != nil {
		log.Error("Error saving checkpoint", err)
		return err
	}
	log.Debugf("Saved checkpoint %s (%d bytes)", s.key, len(dataB))
	return nil
}

// Load returns the stored state for the model or nil if there is
// none.
func (s *IO) Load(model string, classes int) (*Data, error) {
	var data *Data

	b, err := LoadData(s.db, s.key)
	if err != nil || b == nil {
		return nil, err
	}

	if err := json.Unmarshal(b, &data); err != nil {
		return nil, err
	}
	if data == nil || len(data.Parameters) == 0 {
		return nil, nil
	}
	if data.Model != model || data.Classes != classes {
		return nil, ErrModelMismatch
	}

	log.Noticef("Found checkpoint for %s with %d classes (scale=%v)", data.Model, data.Classes, data.Scale)
	return data, nil
}

// SaveData saves values in bolt database.
func SaveData(db *bolt.DB, key []byte, data []byte) error {
	if db == nil {
		return nil
	}
	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(MAIN)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
}

// LoadData loads data from bolt database.
func LoadData(db *bolt.DB, key []byte) ([]byte, error) {
	var data []byte
	if db == nil {
		return nil, nil
	}
	err := db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(MAIN)
		if b == nil {
			return nil
		}

		// v is only valid during the transaction
		if v := b.Get(key); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

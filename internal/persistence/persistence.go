package persistence

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fanpilot/fanpilot/internal/orchestrator"
	"github.com/fanpilot/fanpilot/internal/ui"
	bolt "go.etcd.io/bbolt"
)

const (
	BucketDirectives       = "directives"
	BucketPowerTransitions = "powerTransitions"

	keyLastDirective = "last"
)

type Persistence interface {
	Init() error

	SaveLastDirective(directive orchestrator.Directive) error
	LoadLastDirective() (orchestrator.Directive, error)

	AppendPowerTransition(onFullPower bool, at time.Time) error
	LoadPowerTransitions() ([]PowerTransition, error)
}

// PowerTransition is one persisted AC/battery switch.
type PowerTransition struct {
	At          time.Time `json:"at"`
	OnFullPower bool      `json:"onFullPower"`
}

type persistence struct {
	dbPath string
}

func NewPersistence(dbPath string) Persistence {
	p := &persistence{
		dbPath: dbPath,
	}
	return p
}

func (p persistence) Init() (err error) {
	parentDir := filepath.Dir(p.dbPath)
	_, err = os.Stat(parentDir)
	if errors.Is(err, os.ErrNotExist) {
		ui.Info("Creating directory for db: %s", parentDir)
		err = os.MkdirAll(parentDir, 0755)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p persistence) openPersistence() (db *bolt.DB, err error) {
	db, err = bolt.Open(p.dbPath, 0600, &bolt.Options{Timeout: 1 * time.Minute})
	if err != nil {
		return nil, err
	}
	return db, nil
}

// SaveLastDirective stores the most recently applied fan control directive.
func (p persistence) SaveLastDirective(directive orchestrator.Directive) (err error) {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	data, err := json.Marshal(directive)
	if err != nil {
		return err
	}

	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(BucketDirectives))
		if err != nil {
			return fmt.Errorf("create bucket: %s", err)
		}
		return b.Put([]byte(keyLastDirective), data)
	})
}

// LoadLastDirective returns the most recently applied directive.
func (p persistence) LoadLastDirective() (orchestrator.Directive, error) {
	var directive orchestrator.Directive

	db, err := p.openPersistence()
	if err != nil {
		return directive, err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	err = db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketDirectives))
		if b == nil {
			return os.ErrNotExist
		}
		v := b.Get([]byte(keyLastDirective))
		if v == nil {
			return os.ErrNotExist
		}

		err := json.Unmarshal(v, &directive)
		if err != nil {
			// if we cannot read the saved data, delete it
			ui.Warning("Unable to unmarshal saved directive: %v", err)
			err := b.Delete([]byte(keyLastDirective))
			if err != nil {
				ui.Error("Unable to delete corrupt data key %s: %v", keyLastDirective, err)
			}
			return nil
		}

		return err
	})

	return directive, err
}

// AppendPowerTransition records one AC/battery switch.
func (p persistence) AppendPowerTransition(onFullPower bool, at time.Time) (err error) {
	db, err := p.openPersistence()
	if err != nil {
		return err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	entry := PowerTransition{
		At:          at,
		OnFullPower: onFullPower,
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(BucketPowerTransitions))
		if err != nil {
			return fmt.Errorf("create bucket: %s", err)
		}
		key := at.UTC().Format(time.RFC3339Nano)
		return b.Put([]byte(key), data)
	})
}

// LoadPowerTransitions returns all recorded transitions, oldest first.
func (p persistence) LoadPowerTransitions() ([]PowerTransition, error) {
	db, err := p.openPersistence()
	if err != nil {
		return nil, err
	}
	defer func(db *bolt.DB) {
		_ = db.Close()
	}(db)

	var transitions []PowerTransition
	err = db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BucketPowerTransitions))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var entry PowerTransition
			if err := json.Unmarshal(v, &entry); err != nil {
				ui.Warning("Unable to unmarshal power transition %s: %v", string(k), err)
				return nil
			}
			transitions = append(transitions, entry)
			return nil
		})
	})

	return transitions, err
}

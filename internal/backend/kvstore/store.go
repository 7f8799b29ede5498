// Package kvstore implements the store.TaskStore interface on an embedded
// nutsdb key-value database kept in a single local directory.
package kvstore

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/fxamacker/cbor/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/nutsdb/nutsdb"

	"todo/internal/store"
)

const (
	// SchemaVersion is the version marker written by this build.
	SchemaVersion = 1

	bucketTasks = "tasks"
	bucketMeta  = "meta"

	segmentSize = 8 << 20
)

var (
	keySeq     = []byte("seq")
	keyVersion = []byte("version")
)

// record is the on-disk form of a task.
type record struct {
	ID          int64  `cbor:"1,keyasint"`
	Description string `cbor:"2,keyasint"`
}

// Options configures Open.
type Options struct {
	// Dir is the directory holding the data files. Created if missing.
	Dir string

	// SchemaVersion is compared with the stored marker on open.
	// A mismatch drops every task and resets the ID sequence.
	// Zero means SchemaVersion.
	SchemaVersion int

	// Logger defaults to the kratos global logger.
	Logger log.Logger
}

// Store implements store.TaskStore using nutsdb.
type Store struct {
	db  *nutsdb.DB
	log *log.Helper
}

var _ store.TaskStore = (*Store)(nil)

// Open opens or creates the store in opts.Dir.
// All failures wrap store.ErrStorageInit.
func Open(opts Options) (*Store, error) {
	if opts.SchemaVersion == 0 {
		opts.SchemaVersion = SchemaVersion
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.GetLogger()
	}

	if err := os.MkdirAll(opts.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrStorageInit, err)
	}

	nopts := nutsdb.DefaultOptions
	nopts.Dir = opts.Dir
	nopts.SegmentSize = segmentSize
	db, err := nutsdb.Open(nopts)
	if err != nil {
		return nil, fmt.Errorf("%w: open nutsdb: %w", store.ErrStorageInit, err)
	}

	s := &Store{
		db:  db,
		log: log.NewHelper(log.With(logger, "module", "store/kv")),
	}
	if err := s.prepare(opts.SchemaVersion); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", store.ErrStorageInit, err)
	}
	s.log.Debugf("opened store at %s (schema %d)", opts.Dir, opts.SchemaVersion)
	return s, nil
}

// prepare creates the buckets and applies the version policy.
func (s *Store) prepare(version int) error {
	for _, bucket := range []string{bucketTasks, bucketMeta} {
		if err := s.ensureBucket(bucket); err != nil {
			return err
		}
	}

	current, found, err := s.storedVersion()
	if err != nil {
		return err
	}
	if found && current == version {
		return nil
	}

	if found {
		dropped, err := s.drop()
		if err != nil {
			return fmt.Errorf("drop tasks: %w", err)
		}
		s.log.Warnf("schema version changed from %d to %d: dropped %d tasks", current, version, dropped)
	}

	return s.db.Update(func(tx *nutsdb.Tx) error {
		return tx.Put(bucketMeta, keyVersion, encodeUint(uint64(version)), 0)
	})
}

func (s *Store) ensureBucket(name string) error {
	err := s.db.Update(func(tx *nutsdb.Tx) error {
		return tx.NewBucket(nutsdb.DataStructureBTree, name)
	})
	if err != nil && !errors.Is(err, nutsdb.ErrBucketAlreadyExist) {
		return fmt.Errorf("create bucket %s: %w", name, err)
	}
	return nil
}

func (s *Store) storedVersion() (int, bool, error) {
	var (
		version uint64
		found   bool
	)
	err := s.db.View(func(tx *nutsdb.Tx) error {
		v, ok, err := getUint(tx, bucketMeta, keyVersion)
		version, found = v, ok
		return err
	})
	if err != nil {
		return 0, false, fmt.Errorf("read version: %w", err)
	}
	return int(version), found, nil
}

// drop deletes every task and resets the ID sequence.
func (s *Store) drop() (int, error) {
	var n int
	err := s.db.Update(func(tx *nutsdb.Tx) error {
		keys, _, err := tx.GetAll(bucketTasks)
		if err != nil && !isNotFound(err) {
			return err
		}
		for _, k := range keys {
			if err := tx.Delete(bucketTasks, k); err != nil {
				return err
			}
		}
		n = len(keys)
		return tx.Put(bucketMeta, keySeq, encodeUint(0), 0)
	})
	return n, err
}

// Add implements store.TaskStore.
func (s *Store) Add(ctx context.Context, description string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", store.ErrStorageWrite, err)
	}

	var id int64
	err := s.db.Update(func(tx *nutsdb.Tx) error {
		seq, _, err := getUint(tx, bucketMeta, keySeq)
		if err != nil {
			return err
		}
		next := seq + 1

		data, err := cbor.Marshal(record{ID: int64(next), Description: description})
		if err != nil {
			return fmt.Errorf("encode task: %w", err)
		}
		if err := tx.Put(bucketMeta, keySeq, encodeUint(next), 0); err != nil {
			return err
		}
		if err := tx.Put(bucketTasks, encodeUint(next), data, 0); err != nil {
			return err
		}
		id = int64(next)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: add task: %w", store.ErrStorageWrite, err)
	}
	s.log.Debugf("added task %d", id)
	return id, nil
}

// ListAll implements store.TaskStore.
func (s *Store) ListAll(ctx context.Context) ([]store.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", store.ErrStorageRead, err)
	}

	tasks := make([]store.Task, 0)
	err := s.db.View(func(tx *nutsdb.Tx) error {
		_, values, err := tx.GetAll(bucketTasks)
		if err != nil {
			if isNotFound(err) {
				return nil
			}
			return err
		}
		for _, v := range values {
			var r record
			if err := cbor.Unmarshal(v, &r); err != nil {
				return fmt.Errorf("decode task: %w", err)
			}
			tasks = append(tasks, store.Task{ID: r.ID, Description: r.Description})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list tasks: %w", store.ErrStorageRead, err)
	}

	// IDs are issued in insertion order.
	slices.SortFunc(tasks, func(a, b store.Task) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return tasks, nil
}

// Remove implements store.TaskStore.
func (s *Store) Remove(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrStorageWrite, err)
	}
	if id < 1 {
		return nil
	}

	removed := false
	err := s.db.Update(func(tx *nutsdb.Tx) error {
		key := encodeUint(uint64(id))
		if _, err := tx.Get(bucketTasks, key); err != nil {
			if isNotFound(err) {
				return nil
			}
			return err
		}
		removed = true
		return tx.Delete(bucketTasks, key)
	})
	if err != nil {
		return fmt.Errorf("%w: remove task %d: %w", store.ErrStorageWrite, id, err)
	}
	if removed {
		s.log.Debugf("removed task %d", id)
	}
	return nil
}

// Close implements store.TaskStore.
func (s *Store) Close() error {
	return s.db.Close()
}

// getUint reads a big-endian counter. A missing key reads as zero.
func getUint(tx *nutsdb.Tx, bucket string, key []byte) (uint64, bool, error) {
	v, err := tx.Get(bucket, key)
	if err != nil {
		if isNotFound(err) {
			return 0, false, nil
		}
		return 0, false, err
	}
	if len(v) != 8 {
		return 0, false, fmt.Errorf("corrupt %s/%s: %d bytes", bucket, key, len(v))
	}
	return binary.BigEndian.Uint64(v), true, nil
}

// encodeUint encodes n big-endian so that byte order matches numeric order.
func encodeUint(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}

func isNotFound(err error) bool {
	return errors.Is(err, nutsdb.ErrKeyNotFound) || errors.Is(err, nutsdb.ErrBucketEmpty)
}

// Package store persists periodic snapshots of the chain engine to a
// local bbolt database. The node process keeps a local chain file; the
// reference implementation writes a flat CBOR file on a timer, here that
// snapshot lives in a single bbolt bucket keyed by a fixed name. The
// mempool is intentionally excluded from the snapshot: no durability
// guarantee is specified for pending transactions.
package store

import (
	"fmt"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/dkwon/toychain/internal/chain"
	"github.com/dkwon/toychain/pkg/encoding"
	"github.com/dkwon/toychain/pkg/u256"
)

var (
	bucketName = []byte("chain")
	snapshotKey = []byte("snapshot")
)

// snapshot is the on-disk representation of a Blockchain, omitting the
// mempool.
type snapshot struct {
	Blocks []chain.Block `cbor:"1,keyasint"`
	Target u256.U256     `cbor:"2,keyasint"`
}

// Store wraps a bbolt database holding chain snapshots.
type Store struct {
	db *bbolt.DB
}

// Open opens (creating if necessary) the bbolt database at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open chain store: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create chain bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save writes a snapshot of bc, overwriting whatever was there before.
func (s *Store) Save(bc *chain.Blockchain) error {
	snap := snapshot{Blocks: bc.Blocks, Target: bc.Target}
	data, err := encoding.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketName).Put(snapshotKey, data)
	})
}

// Load reads the most recently saved snapshot, if any. ok is false if no
// snapshot has ever been saved.
func (s *Store) Load() (bc *chain.Blockchain, ok bool, err error) {
	var data []byte
	err = s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketName).Get(snapshotKey)
		if v != nil {
			data = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("read snapshot: %w", err)
	}
	if data == nil {
		return nil, false, nil
	}

	var snap snapshot
	if err := encoding.Unmarshal(data, &snap); err != nil {
		return nil, false, fmt.Errorf("decode snapshot: %w", err)
	}

	loaded := chain.New()
	loaded.Blocks = snap.Blocks
	loaded.Target = snap.Target
	loaded.RebuildUTXOs()
	loaded.TryAdjustTarget()
	return loaded, true, nil
}

// RunPeriodicSnapshots saves bc every interval until stop is closed,
// matching the reference node's background save task.
func RunPeriodicSnapshots(s *Store, bc *chain.Blockchain, interval time.Duration, stop <-chan struct{}, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := s.Save(bc); err != nil {
				logger.Warn("periodic chain snapshot failed", zap.Error(err))
			}
		}
	}
}

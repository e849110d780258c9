// Package peerstore persists the set of known peer addresses across
// restarts, backed by a leveldb-based datastore. Bootstrap dials peer
// addresses given at startup; this package lets a node remember peers
// it has seen beyond what was passed on the command line.
package peerstore

import (
	"context"
	"fmt"

	"github.com/ipfs/go-datastore"
	"github.com/ipfs/go-datastore/query"
	levelds "github.com/ipfs/go-ds-leveldb"
)

// namespace prefixes every key this package writes, so a peer address
// book can share a leveldb directory with other datastore consumers
// without key collisions.
var namespace = datastore.NewKey("/peers")

// Store is a small persisted address book.
type Store struct {
	ds *levelds.Datastore
}

// Open opens (creating if necessary) the leveldb store at path.
func Open(path string) (*Store, error) {
	ds, err := levelds.NewDatastore(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open peerstore: %w", err)
	}
	return &Store{ds: ds}, nil
}

// Close closes the underlying datastore.
func (s *Store) Close() error {
	return s.ds.Close()
}

// Add records addr as a known peer.
func (s *Store) Add(ctx context.Context, addr string) error {
	return s.ds.Put(ctx, namespace.ChildString(addr), []byte(addr))
}

// Remove forgets addr.
func (s *Store) Remove(ctx context.Context, addr string) error {
	return s.ds.Delete(ctx, namespace.ChildString(addr))
}

// All returns every known peer address.
func (s *Store) All(ctx context.Context) ([]string, error) {
	results, err := s.ds.Query(ctx, query.Query{Prefix: namespace.String()})
	if err != nil {
		return nil, fmt.Errorf("query peerstore: %w", err)
	}
	defer results.Close()

	var addrs []string
	for entry := range results.Next() {
		if entry.Error != nil {
			return nil, fmt.Errorf("iterate peerstore: %w", entry.Error)
		}
		addrs = append(addrs, string(entry.Value))
	}
	return addrs, nil
}

// Package config holds the plain settings structs populated by each
// executable's CLI layer; argument parsing itself stays out of core
// scope, so cobra/viper stay confined to cmd/*.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/dkwon/toychain/pkg/btckey"
)

// Node holds everything cmd/node needs to start a chain server.
type Node struct {
	ListenAddr     string
	DataDir        string
	Peers          []string
	SnapshotPath   string
	PeerstorePath  string
	SnapshotPeriod time.Duration
}

// Miner holds everything cmd/miner needs to connect to a node and mine.
type Miner struct {
	NodeAddr string
	KeyPath  string
}

// Wallet holds everything cmd/wallet needs to talk to a node.
type Wallet struct {
	NodeAddr string
	KeyPath  string
}

// LoadOrCreateKey reads the private key stored at path, generating and
// writing a fresh one if the file does not exist. The on-disk format is
// the raw 32-byte scalar; key storage format is out of scope here, so
// there is no encryption or HD derivation.
func LoadOrCreateKey(path string) (btckey.PrivateKey, error) {
	b, err := os.ReadFile(path)
	if err == nil {
		return btckey.PrivateKeyFromBytes(b)
	}
	if !os.IsNotExist(err) {
		return btckey.PrivateKey{}, fmt.Errorf("read key file: %w", err)
	}

	key, err := btckey.NewPrivateKey()
	if err != nil {
		return btckey.PrivateKey{}, fmt.Errorf("generate key: %w", err)
	}
	if err := os.WriteFile(path, key.Bytes(), 0600); err != nil {
		return btckey.PrivateKey{}, fmt.Errorf("write key file: %w", err)
	}
	return key, nil
}

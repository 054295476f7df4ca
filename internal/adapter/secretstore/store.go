// Package secretstore persists the wallet's private key material in a
// local sqlite database and derives the wallet address from it.
package secretstore

import (
	"crypto/ed25519"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/sha3"

	"github.com/loyaltyware/walletcore/internal/adapter/relay"
)

var (
	// ErrNoKey indicates that no key has been generated or imported yet.
	ErrNoKey = errors.New("no key stored")
	// ErrInvalidKey indicates imported key material of the wrong shape.
	ErrInvalidKey = errors.New("invalid private key")
)

// Store is a sqlite-backed secret store. One key row is kept; generating
// or importing replaces it.
type Store struct {
	db *sql.DB
}

// Open opens (and initializes) the store at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS wallet_key (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		address TEXT NOT NULL,
		private_key TEXT NOT NULL,
		created_at INTEGER NOT NULL
	)`)
	return err
}

// GenerateKey creates a fresh keypair, stores it, and returns the
// derived address.
func (s *Store) GenerateKey() (string, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	address := DeriveAddress(pub)
	if err := s.SaveKey(address, hex.EncodeToString(priv.Seed())); err != nil {
		return "", err
	}
	return address, nil
}

// ImportKey stores an existing 32-byte seed (hex) and returns the
// derived address.
func (s *Store) ImportKey(seedHex string) (string, error) {
	seed, err := hex.DecodeString(seedHex)
	if err != nil || len(seed) != ed25519.SeedSize {
		return "", ErrInvalidKey
	}
	priv := ed25519.NewKeyFromSeed(seed)
	address := DeriveAddress(priv.Public().(ed25519.PublicKey))
	if err := s.SaveKey(address, seedHex); err != nil {
		return "", err
	}
	return address, nil
}

// SaveKey implements domain.SecretStore.
func (s *Store) SaveKey(address, privateKeyHex string) error {
	_, err := s.db.Exec(
		`INSERT INTO wallet_key (id, address, private_key, created_at) VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET address = excluded.address,
		 private_key = excluded.private_key, created_at = excluded.created_at`,
		address, privateKeyHex, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("save key: %w", err)
	}
	return nil
}

// LoadKey implements domain.SecretStore.
func (s *Store) LoadKey() (string, string, error) {
	var address, privateKey string
	err := s.db.QueryRow(`SELECT address, private_key FROM wallet_key WHERE id = 1`).
		Scan(&address, &privateKey)
	if err == sql.ErrNoRows {
		return "", "", ErrNoKey
	}
	if err != nil {
		return "", "", fmt.Errorf("load key: %w", err)
	}
	return address, privateKey, nil
}

// Address implements domain.SecretStore.
func (s *Store) Address() (string, error) {
	address, _, err := s.LoadKey()
	return address, err
}

// BoundClient returns a relay client bound to the stored key's address.
func (s *Store) BoundClient(base *relay.Client) (*relay.Client, error) {
	address, err := s.Address()
	if err != nil {
		return nil, err
	}
	return base.Bound(address), nil
}

// DeriveAddress renders the wallet address for a public key: the last 20
// bytes of its keccak256 digest, hex-encoded with a 0x prefix.
func DeriveAddress(pub ed25519.PublicKey) string {
	h := sha3.NewLegacyKeccak256()
	h.Write(pub)
	digest := h.Sum(nil)
	return "0x" + hex.EncodeToString(digest[len(digest)-20:])
}

package repository

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/creditai/pricing-service/internal/models"
	"github.com/creditai/pricing-service/internal/utils"
)

// snapshotVersion tags the encrypted envelope layout.
const snapshotVersion = 1

// LedgerStore persists the full decision history as a single snapshot.
type LedgerStore interface {
	Save(decisions []models.Decision) error
	Load() ([]models.Decision, error)
}

// FileStore keeps the snapshot as an indented JSON array in one flat file.
// A non-empty passphrase switches the on-disk format to an AES-encrypted
// envelope with an HMAC over the ciphertext. Writes go through a temp file
// and rename so a crash never leaves a half-written snapshot behind.
type FileStore struct {
	path       string
	passphrase string
}

// encryptedSnapshot is the on-disk envelope for passphrase-protected
// snapshots. Salt, ciphertext and MAC are hex encoded.
type encryptedSnapshot struct {
	Version int    `json:"version"`
	Salt    string `json:"salt"`
	Data    string `json:"data"`
	HMAC    string `json:"hmac"`
}

// NewFileStore creates a store writing to path. An empty passphrase stores
// snapshots as plain JSON.
func NewFileStore(path, passphrase string) *FileStore {
	return &FileStore{path: path, passphrase: passphrase}
}

// Save serializes the decisions and atomically replaces the snapshot file.
// An empty history is stored as an empty JSON array, never null.
func (s *FileStore) Save(decisions []models.Decision) error {
	if decisions == nil {
		decisions = []models.Decision{}
	}
	payload, err := json.MarshalIndent(decisions, "", "  ")
	if err != nil {
		return &models.SerializationError{Cause: fmt.Errorf("encode decisions: %w", err)}
	}

	if s.passphrase != "" {
		payload, err = s.seal(payload)
		if err != nil {
			return &models.SerializationError{Cause: err}
		}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &models.SerializationError{Cause: fmt.Errorf("create snapshot dir: %w", err)}
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return &models.SerializationError{Cause: fmt.Errorf("create temp snapshot: %w", err)}
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return &models.SerializationError{Cause: fmt.Errorf("write snapshot: %w", err)}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return &models.SerializationError{Cause: fmt.Errorf("close snapshot: %w", err)}
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return &models.SerializationError{Cause: fmt.Errorf("replace snapshot: %w", err)}
	}
	return nil
}

// Load reads and decodes the snapshot file. The caller's state is never
// touched here, so a failed load leaves any in-memory history intact.
func (s *FileStore) Load() ([]models.Decision, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &models.SerializationError{Cause: fmt.Errorf("read snapshot: %w", err)}
	}

	if s.passphrase != "" {
		payload, err = s.open(payload)
		if err != nil {
			return nil, &models.SerializationError{Cause: err}
		}
	}

	var decisions []models.Decision
	if err := json.Unmarshal(payload, &decisions); err != nil {
		return nil, &models.SerializationError{Cause: fmt.Errorf("decode decisions: %w", err)}
	}
	return decisions, nil
}

// Path returns the snapshot file location.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) seal(payload []byte) ([]byte, error) {
	salt, err := utils.NewSalt(16)
	if err != nil {
		return nil, err
	}
	key := utils.DeriveKey(s.passphrase, salt)
	ciphertext, err := utils.Encrypt(string(payload), key)
	if err != nil {
		return nil, fmt.Errorf("encrypt snapshot: %w", err)
	}
	envelope := encryptedSnapshot{
		Version: snapshotVersion,
		Salt:    hex.EncodeToString(salt),
		Data:    ciphertext,
		HMAC:    utils.GenerateHMAC(ciphertext, key),
	}
	out, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return out, nil
}

func (s *FileStore) open(payload []byte) ([]byte, error) {
	var envelope encryptedSnapshot
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if envelope.Version != snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version: %d", envelope.Version)
	}
	salt, err := hex.DecodeString(envelope.Salt)
	if err != nil {
		return nil, fmt.Errorf("decode salt: %w", err)
	}
	key := utils.DeriveKey(s.passphrase, salt)
	if !utils.VerifyHMAC(envelope.Data, envelope.HMAC, key) {
		return nil, fmt.Errorf("snapshot integrity check failed")
	}
	plaintext, err := utils.Decrypt(envelope.Data, key)
	if err != nil {
		return nil, fmt.Errorf("decrypt snapshot: %w", err)
	}
	return []byte(plaintext), nil
}

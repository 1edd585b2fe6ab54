// internal/auth/store.go
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/scrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrRateLimited        = errors.New("too many login attempts")
	ErrBadRequest         = errors.New("missing or malformed credentials")
	ErrUnauthorized       = errors.New("unauthorized")
)

// StorageError wraps failures of the backing auth files so callers can map
// them to an internal error without leaking file paths to clients.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("auth storage %s: %v", e.Op, e.Err) }
func (e *StorageError) Unwrap() error { return e.Err }

// AuthState is the single administrator credential record. Exactly one record
// exists after first access; password changes rotate Salt and PasswordHash and
// leave Username and SessionSecret untouched.
type AuthState struct {
	Username      string `json:"username"`
	PasswordHash  string `json:"passwordHash"`
	Salt          string `json:"salt"`
	SessionSecret string `json:"sessionSecret"`
}

// Store is the durable source of truth for the administrator credential and
// the session signing secret.
type Store interface {
	Ensure() error
	Read() (AuthState, error)
	UpdatePassword(newPassword string) error
	VerifyPassword(candidate string) (bool, error)
}

// Bootstrap holds the defaults used when no auth record exists yet. If
// PasswordHash is set it is stored verbatim, otherwise Password is hashed
// with Salt.
type Bootstrap struct {
	Username      string
	Password      string
	Salt          string
	PasswordHash  string
	SessionSecret string
}

const (
	scryptN      = 32768
	scryptR      = 8
	scryptP      = 1
	scryptKeyLen = 64
)

// HashPassword derives the hex-encoded scrypt hash for a password and salt.
func HashPassword(password, salt string) (string, error) {
	key, err := scrypt.Key([]byte(password), []byte(salt), scryptN, scryptR, scryptP, scryptKeyLen)
	if err != nil {
		return "", fmt.Errorf("scrypt derivation: %w", err)
	}
	return hex.EncodeToString(key), nil
}

// FileStore persists the AuthState as a JSON file under the data directory.
// Writes are serialized with a mutex; concurrent password changes are
// last-writer-wins beyond that, acceptable for a single administrator.
type FileStore struct {
	path      string
	bootstrap Bootstrap
	mu        sync.Mutex
}

func NewFileStore(path string, bootstrap Bootstrap) *FileStore {
	return &FileStore{path: path, bootstrap: bootstrap}
}

// Ensure creates the auth record from bootstrap values if none exists yet.
// Idempotent.
func (s *FileStore) Ensure() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLocked()
}

func (s *FileStore) ensureLocked() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return &StorageError{Op: "stat", Err: err}
	}

	hash := s.bootstrap.PasswordHash
	if hash == "" {
		var err error
		hash, err = HashPassword(s.bootstrap.Password, s.bootstrap.Salt)
		if err != nil {
			return &StorageError{Op: "bootstrap", Err: err}
		}
	}
	state := AuthState{
		Username:      s.bootstrap.Username,
		PasswordHash:  hash,
		Salt:          s.bootstrap.Salt,
		SessionSecret: s.bootstrap.SessionSecret,
	}
	return s.writeLocked(state)
}

// Read returns the current AuthState, creating it on first access.
func (s *FileStore) Read() (AuthState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

func (s *FileStore) readLocked() (AuthState, error) {
	if err := s.ensureLocked(); err != nil {
		return AuthState{}, err
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return AuthState{}, &StorageError{Op: "read", Err: err}
	}
	var state AuthState
	if err := json.Unmarshal(raw, &state); err != nil {
		return AuthState{}, &StorageError{Op: "decode", Err: err}
	}
	return state, nil
}

// UpdatePassword generates a fresh random salt, recomputes the hash and
// persists the record. Username and SessionSecret are preserved, so session
// tokens issued before the change stay valid until they expire.
func (s *FileStore) UpdatePassword(newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.readLocked()
	if err != nil {
		return err
	}
	saltBytes := make([]byte, 16)
	if _, err := rand.Read(saltBytes); err != nil {
		return &StorageError{Op: "salt", Err: err}
	}
	state.Salt = hex.EncodeToString(saltBytes)
	state.PasswordHash, err = HashPassword(newPassword, state.Salt)
	if err != nil {
		return &StorageError{Op: "hash", Err: err}
	}
	return s.writeLocked(state)
}

// VerifyPassword recomputes the KDF over the candidate and compares it to the
// stored hash in constant time.
func (s *FileStore) VerifyPassword(candidate string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.readLocked()
	if err != nil {
		return false, err
	}
	candidateHash, err := HashPassword(candidate, state.Salt)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare([]byte(candidateHash), []byte(state.PasswordHash)) == 1, nil
}

func (s *FileStore) writeLocked(state AuthState) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return &StorageError{Op: "mkdir", Err: err}
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return &StorageError{Op: "encode", Err: err}
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return &StorageError{Op: "write", Err: err}
	}
	return nil
}

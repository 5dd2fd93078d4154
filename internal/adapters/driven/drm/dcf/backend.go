package dcf

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/mediaindex/internal/core/domain"
	"github.com/custodia-labs/mediaindex/internal/core/ports/driven"
	"github.com/custodia-labs/mediaindex/internal/logger"
)

// Ensure Backend implements the interface.
var _ driven.DrmBackend = (*Backend)(nil)

// KeySize is the AES-128 key length.
const KeySize = 16

// maxPayload caps how much ciphertext a session reads into memory.
const maxPayload = 64 << 20

// Backend opens sessions backed by a keyring file.
type Backend struct {
	keyringPath string
}

// NewBackend creates a backend. An empty keyringPath yields sessions that
// report mime types but cannot decrypt.
func NewBackend(keyringPath string) *Backend {
	return &Backend{keyringPath: keyringPath}
}

// Open loads the keyring and returns a new session.
func (b *Backend) Open(ctx context.Context) (driven.DrmSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	keys, err := LoadKeyring(b.keyringPath)
	if err != nil {
		return nil, err
	}
	logger.Debug("dcf: session opened with %d keys", len(keys))
	return &session{keys: keys, headers: make(map[string]*Header)}, nil
}

type keyringFile struct {
	Keys map[string]string `toml:"keys"`
}

// LoadKeyring reads a TOML keyring mapping content URIs to hex keys.
// An empty path returns an empty keyring.
func LoadKeyring(path string) (map[string][]byte, error) {
	keys := make(map[string][]byte)
	if path == "" {
		return keys, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading keyring: %w", err)
	}
	var kf keyringFile
	if err := toml.Unmarshal(data, &kf); err != nil {
		return nil, fmt.Errorf("parsing keyring %s: %w", path, err)
	}

	for uri, encoded := range kf.Keys {
		key, err := hex.DecodeString(strings.TrimSpace(encoded))
		if err != nil {
			return nil, fmt.Errorf("keyring entry %q: %w", uri, err)
		}
		if len(key) != KeySize {
			return nil, fmt.Errorf("keyring entry %q: key must be %d bytes, got %d", uri, KeySize, len(key))
		}
		keys[uri] = key
	}
	return keys, nil
}

// session caches parsed headers by path for the lifetime of a scan batch.
type session struct {
	mu      sync.Mutex
	keys    map[string][]byte
	headers map[string]*Header
	closed  bool
}

func (s *session) header(path string) (*Header, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, domain.ErrSessionReleased
	}
	if h, ok := s.headers[path]; ok {
		return h, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h, err := ReadHeader(f)
	if err != nil {
		return nil, err
	}
	s.headers[path] = h
	return h, nil
}

// CanHandle reports whether path is a readable container with a supported
// encryption method.
func (s *session) CanHandle(path string) bool {
	if !strings.EqualFold(strings.TrimPrefix(filepath.Ext(path), "."), domain.DRMExtension) {
		return false
	}
	h, err := s.header(path)
	if err != nil {
		logger.Debug("dcf: %s: %v", path, err)
		return false
	}
	return h.EncryptionMethod() == methodAES128CBC
}

// OriginalMimeType returns the content type from the container header.
func (s *session) OriginalMimeType(path string) (string, bool) {
	h, err := s.header(path)
	if err != nil || h.ContentType == "" {
		return "", false
	}
	return h.ContentType, true
}

// OpenDecryptHandle decrypts the payload. It returns nil, nil when the
// keyring has no key for the container.
func (s *session) OpenDecryptHandle(path string) (io.ReadCloser, error) {
	h, err := s.header(path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	key, ok := s.keys[h.ContentURI]
	s.mu.Unlock()
	if !ok {
		logger.Debug("dcf: no key for %s", h.ContentURI)
		return nil, nil
	}

	if h.DataLength < IVSize+aes.BlockSize {
		return nil, fmt.Errorf("%w: data section too short", domain.ErrMalformedContainer)
	}
	if h.DataLength > maxPayload {
		return nil, fmt.Errorf("%w: payload of %d bytes exceeds limit", domain.ErrInvalidInput, h.DataLength)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data := make([]byte, h.DataLength)
	if _, err := f.ReadAt(data, h.DataOffset()); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: truncated data", domain.ErrMalformedContainer)
		}
		return nil, err
	}

	plain, err := decrypt(key, data)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(plain)), nil
}

// Close releases the session. Later calls fail with ErrSessionReleased.
func (s *session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.headers = nil
	s.keys = nil
	return nil
}

func decrypt(key, data []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	iv, ciphertext := data[:IVSize], data[IVSize:]
	if len(ciphertext)%block.BlockSize() != 0 {
		return nil, fmt.Errorf("%w: ciphertext is not block aligned", domain.ErrMalformedContainer)
	}
	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ciphertext)
	return unpad(plain, block.BlockSize())
}

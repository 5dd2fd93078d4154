package dcf

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
	"sort"

	"github.com/custodia-labs/mediaindex/internal/core/domain"
)

const methodAES128CBC = "AES128CBC"

// Seal writes plaintext as a container. Headers are written in sorted
// order; an Encryption-Method header is added when absent.
func Seal(w io.Writer, contentType, contentURI string, headers map[string]string, key, plaintext []byte) error {
	if len(contentType) > 0xff || len(contentURI) > 0xff {
		return fmt.Errorf("%w: content type or uri longer than 255 bytes", domain.ErrInvalidInput)
	}
	if len(key) != KeySize {
		return fmt.Errorf("%w: key must be %d bytes, got %d", domain.ErrInvalidInput, KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	iv := make([]byte, IVSize)
	if _, err := rand.Read(iv); err != nil {
		return fmt.Errorf("generating iv: %w", err)
	}
	padded := pad(plaintext, block.BlockSize())
	data := make([]byte, IVSize+len(padded))
	copy(data, iv)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(data[IVSize:], padded)

	var hdr bytes.Buffer
	if _, ok := headers["Encryption-Method"]; !ok {
		fmt.Fprintf(&hdr, "Encryption-Method: %s;padding=RFC2630\r\n", methodAES128CBC)
	}
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&hdr, "%s: %s\r\n", name, headers[name])
	}

	out := []byte{Version, byte(len(contentType)), byte(len(contentURI))}
	out = append(out, contentType...)
	out = append(out, contentURI...)
	out = appendUintvar(out, uint32(hdr.Len()))
	out = appendUintvar(out, uint32(len(data)))
	out = append(out, hdr.Bytes()...)
	out = append(out, data...)

	_, err = w.Write(out)
	return err
}

func pad(b []byte, blockSize int) []byte {
	n := blockSize - len(b)%blockSize
	return append(append([]byte(nil), b...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte, blockSize int) ([]byte, error) {
	if len(b) == 0 || len(b)%blockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext is not block aligned", domain.ErrMalformedContainer)
	}
	n := int(b[len(b)-1])
	if n == 0 || n > blockSize {
		return nil, fmt.Errorf("%w: bad padding", domain.ErrMalformedContainer)
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, fmt.Errorf("%w: bad padding", domain.ErrMalformedContainer)
		}
	}
	return b[:len(b)-n], nil
}

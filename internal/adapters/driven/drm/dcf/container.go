package dcf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/custodia-labs/mediaindex/internal/core/domain"
)

// Version is the only container version understood.
const Version = 1

// IVSize is the length of the AES-CBC initialisation vector.
const IVSize = 16

// maxUintvarBytes bounds a uintvar to 32 bits of payload.
const maxUintvarBytes = 5

// maxHeaderBytes caps the headers section read into memory.
const maxHeaderBytes = 64 << 10

// Header is the clear part of a container.
type Header struct {
	Version     uint8
	ContentType string
	ContentURI  string
	Headers     map[string]string
	DataLength  uint32

	// headerSize is the byte offset of the data section.
	headerSize int64
}

// EncryptionMethod returns the declared encryption method, defaulting to
// AES128CBC when the container does not name one.
func (h *Header) EncryptionMethod() string {
	method := h.Headers["encryption-method"]
	if method == "" {
		return methodAES128CBC
	}
	if i := strings.IndexByte(method, ';'); i >= 0 {
		method = method[:i]
	}
	return strings.TrimSpace(method)
}

// DataOffset returns the byte offset of the encrypted data section.
func (h *Header) DataOffset() int64 {
	return h.headerSize
}

// ReadHeader parses the clear header of a container.
// Errors wrap domain.ErrMalformedContainer.
func ReadHeader(r io.Reader) (*Header, error) {
	br := bufio.NewReader(r)
	cr := &countingReader{r: br}

	var fixed [3]byte
	if _, err := io.ReadFull(cr, fixed[:]); err != nil {
		return nil, malformed("fixed header", err)
	}
	h := &Header{Version: fixed[0]}
	if h.Version != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", domain.ErrMalformedContainer, h.Version)
	}

	ct := make([]byte, fixed[1])
	if _, err := io.ReadFull(cr, ct); err != nil {
		return nil, malformed("content type", err)
	}
	uri := make([]byte, fixed[2])
	if _, err := io.ReadFull(cr, uri); err != nil {
		return nil, malformed("content uri", err)
	}
	h.ContentType = string(ct)
	h.ContentURI = string(uri)

	hdrLen, err := readUintvar(cr)
	if err != nil {
		return nil, malformed("headers length", err)
	}
	dataLen, err := readUintvar(cr)
	if err != nil {
		return nil, malformed("data length", err)
	}
	h.DataLength = dataLen

	if hdrLen > maxHeaderBytes {
		return nil, fmt.Errorf("%w: headers length %d exceeds %d bytes",
			domain.ErrMalformedContainer, hdrLen, maxHeaderBytes)
	}
	raw := make([]byte, hdrLen)
	if _, err := io.ReadFull(cr, raw); err != nil {
		return nil, malformed("headers", err)
	}
	h.Headers = parseHeaders(string(raw))
	h.headerSize = cr.n

	return h, nil
}

func malformed(field string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: truncated %s", domain.ErrMalformedContainer, field)
	}
	return fmt.Errorf("%w: %s: %w", domain.ErrMalformedContainer, field, err)
}

// parseHeaders reads CRLF (or LF) separated "Name: value" lines.
// Names are lower-cased.
func parseHeaders(raw string) map[string]string {
	headers := make(map[string]string)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers
}

// readUintvar decodes a WAP variable length unsigned integer: big-endian
// groups of 7 bits with the high bit set on every byte but the last.
func readUintvar(r io.ByteReader) (uint32, error) {
	var v uint32
	for i := 0; i < maxUintvarBytes; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		if v > math.MaxUint32>>7 {
			return 0, errors.New("uintvar overflows 32 bits")
		}
		v = v<<7 | uint32(b&0x7f)
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, errors.New("uintvar too long")
}

// appendUintvar is the inverse of readUintvar.
func appendUintvar(dst []byte, v uint32) []byte {
	var buf [maxUintvarBytes]byte
	i := len(buf) - 1
	buf[i] = byte(v & 0x7f)
	for v >>= 7; v > 0; v >>= 7 {
		i--
		buf[i] = byte(v&0x7f) | 0x80
	}
	return append(dst, buf[i:]...)
}

type countingReader struct {
	r *bufio.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func (c *countingReader) ReadByte() (byte, error) {
	b, err := c.r.ReadByte()
	if err == nil {
		c.n++
	}
	return b, err
}

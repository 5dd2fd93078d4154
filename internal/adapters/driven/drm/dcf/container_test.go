package dcf

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mediaindex/internal/core/domain"
)

var testKey = []byte("0123456789abcdef")

func TestUintvar_RoundTrip(t *testing.T) {
	tests := []struct {
		value uint32
		wire  []byte
	}{
		{0, []byte{0x00}},
		{0x7f, []byte{0x7f}},
		{0x80, []byte{0x81, 0x00}},
		{0x3fff, []byte{0xff, 0x7f}},
		{0xffffffff, []byte{0x8f, 0xff, 0xff, 0xff, 0x7f}},
	}

	for _, tt := range tests {
		got := appendUintvar(nil, tt.value)
		assert.Equal(t, tt.wire, got, "encode %d", tt.value)

		decoded, err := readUintvar(bufio.NewReader(bytes.NewReader(tt.wire)))
		require.NoError(t, err)
		assert.Equal(t, tt.value, decoded)
	}
}

func TestUintvar_TooLong(t *testing.T) {
	_, err := readUintvar(bufio.NewReader(bytes.NewReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01})))

	assert.Error(t, err)
}

func TestUintvar_Overflow(t *testing.T) {
	// 35 bits of payload: the top bits do not fit a uint32.
	_, err := readUintvar(bufio.NewReader(bytes.NewReader([]byte{0x90, 0x80, 0x80, 0x80, 0x00})))

	assert.Error(t, err)
}

func TestReadHeader_OversizedHeaders(t *testing.T) {
	data := []byte{Version, 0, 0}
	data = appendUintvar(data, 0x7fffffff)
	data = appendUintvar(data, 0)

	_, err := ReadHeader(bytes.NewReader(data))

	require.ErrorIs(t, err, domain.ErrMalformedContainer)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestReadHeader_HeadersAtLimit(t *testing.T) {
	data := []byte{Version, 0, 0}
	data = appendUintvar(data, maxHeaderBytes)
	data = appendUintvar(data, 0)
	data = append(data, bytes.Repeat([]byte{'x'}, maxHeaderBytes)...)

	h, err := ReadHeader(bytes.NewReader(data))

	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), h.DataOffset())
}

func TestReadHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Seal(&buf, "image/jpeg", "cid:photo@example.com",
		map[string]string{"Content-Name": "Beach"}, testKey, []byte("payload")))

	h, err := ReadHeader(bytes.NewReader(buf.Bytes()))

	require.NoError(t, err)
	assert.Equal(t, uint8(Version), h.Version)
	assert.Equal(t, "image/jpeg", h.ContentType)
	assert.Equal(t, "cid:photo@example.com", h.ContentURI)
	assert.Equal(t, "Beach", h.Headers["content-name"])
	assert.Equal(t, methodAES128CBC, h.EncryptionMethod())
	assert.Equal(t, uint32(IVSize+16), h.DataLength)
	assert.Equal(t, int64(buf.Len())-int64(h.DataLength), h.DataOffset())
}

func TestReadHeader_Malformed(t *testing.T) {
	var valid bytes.Buffer
	require.NoError(t, Seal(&valid, "image/png", "cid:x", nil, testKey, []byte("p")))

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"wrong version", []byte{2, 0, 0, 0, 0}},
		{"truncated content type", []byte{1, 10, 0, 'i', 'm'}},
		{"truncated headers", valid.Bytes()[:20]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadHeader(bytes.NewReader(tt.data))

			assert.ErrorIs(t, err, domain.ErrMalformedContainer)
		})
	}
}

func TestHeader_EncryptionMethod(t *testing.T) {
	tests := []struct {
		headers map[string]string
		want    string
	}{
		{map[string]string{}, "AES128CBC"},
		{map[string]string{"encryption-method": "AES128CBC;padding=RFC2630"}, "AES128CBC"},
		{map[string]string{"encryption-method": "NULL"}, "NULL"},
	}

	for _, tt := range tests {
		h := &Header{Headers: tt.headers}
		assert.Equal(t, tt.want, h.EncryptionMethod())
	}
}

func TestParseHeaders(t *testing.T) {
	got := parseHeaders("Content-Name: A: B\r\ngarbage\r\n: empty\nRights-Issuer:  http://ri \r\n")

	assert.Equal(t, map[string]string{
		"content-name":  "A: B",
		"rights-issuer": "http://ri",
	}, got)
}

func TestUnpad(t *testing.T) {
	_, err := unpad([]byte{1, 2, 3}, 16)
	assert.ErrorIs(t, err, domain.ErrMalformedContainer)

	bad := bytes.Repeat([]byte{0}, 16)
	_, err = unpad(bad, 16)
	assert.ErrorIs(t, err, domain.ErrMalformedContainer)

	got, err := unpad(pad([]byte("abc"), 16), 16)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
}

func TestSeal_RejectsBadInput(t *testing.T) {
	var buf bytes.Buffer

	assert.ErrorIs(t, Seal(&buf, "image/png", "cid:x", nil, []byte("short"), nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, Seal(&buf, string(bytes.Repeat([]byte("a"), 256)), "cid:x", nil, testKey, nil), domain.ErrInvalidInput)
}

// Package dcf implements the driven DrmBackend for OMA DRM v1 content
// format (DCF) containers.
//
// A container carries its payload mime type and content URI in a clear
// header, followed by an AES-128-CBC encrypted payload:
//
//	version  uint8 (1)
//	ctLen    uint8
//	uriLen   uint8
//	ct       [ctLen]byte
//	uri      [uriLen]byte
//	hdrLen   uintvar
//	dataLen  uintvar
//	headers  [hdrLen]byte   "Name: value" lines, CRLF separated
//	data     [dataLen]byte  16 byte IV, then PKCS#7 padded ciphertext
//
// Keys are looked up by content URI in a TOML keyring:
//
//	[keys]
//	"cid:photo-1@example.com" = "000102030405060708090a0b0c0d0e0f"
//
// Without a key for a container its mime type is still reported; only
// the decrypted payload is unavailable.
package dcf

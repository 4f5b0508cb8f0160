package imaging

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// StripDataURL removes a data-URL header. Everything up to and including
// the first comma is dropped; strings without a comma are returned as is.
func StripDataURL(encoded string) string {
	if i := strings.IndexByte(encoded, ','); i >= 0 {
		return encoded[i+1:]
	}
	return encoded
}

// DecodePayload strips an optional data-URL header and base64-decodes the rest
func DecodePayload(encoded string) ([]byte, error) {
	payload := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, StripDataURL(encoded))

	if payload == "" {
		return nil, errors.New("empty image payload")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("base64 decode: %w", err)
	}
	return data, nil
}

// EncodeBase64 encodes raw image bytes as standard base64
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// EncodeDataURL encodes raw image bytes as a data-URL with the given MIME type
func EncodeDataURL(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + EncodeBase64(data)
}

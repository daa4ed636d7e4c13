package vfs

import (
	"encoding/base64"
	"errors"
	"strings"
	"unicode/utf8"
)

// BinaryContent is what a file reads as when its payload is not base64 of
// UTF-8 text.
const BinaryContent = "[Binary data]"

var errNotUTF8 = errors.New("decoded payload is not valid UTF-8")

// DecodePayload strips all whitespace from payload, so wrapped and indented
// text decodes, and decodes it as standard base64 of UTF-8 text. An empty
// payload decodes to "".
func DecodePayload(payload string) (string, error) {
	payload = strings.Join(strings.Fields(payload), "")
	if payload == "" {
		return "", nil
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(raw) {
		return "", errNotUTF8
	}
	return string(raw), nil
}

// EncodeText is the inverse of DecodePayload.
func EncodeText(text string) string {
	return base64.StdEncoding.EncodeToString([]byte(text))
}

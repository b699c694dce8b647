package util

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidDataURI = errors.New("expected a data URI of the form data:<mimetype>;base64,<data>")

// DataURI is a decoded base64 data URI.
type DataURI struct {
	MIMEType string
	Data     []byte
}

// BuildDataURI encodes data the way browsers do for a FileReader upload.
func BuildDataURI(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// ParseDataURI decodes a base64 data URI. Parameters other than base64
// (charset, name) are ignored.
func ParseDataURI(uri string) (*DataURI, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, ErrInvalidDataURI
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, ErrInvalidDataURI
	}

	params := strings.Split(header, ";")
	mimeType := strings.TrimSpace(params[0])
	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}
	if mimeType == "" || !strings.Contains(mimeType, "/") || !isBase64 {
		return nil, ErrInvalidDataURI
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidDataURI)
	}
	return &DataURI{MIMEType: strings.ToLower(mimeType), Data: data}, nil
}

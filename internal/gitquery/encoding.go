package gitquery

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
)

// ErrUnsupportedEncoding is returned for encoding names that cannot be
// resolved.
var ErrUnsupportedEncoding = errors.New("unsupported encoding")

// LookupEncoding resolves an IANA (or WHATWG) charset name.
func LookupEncoding(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrUnsupportedEncoding)
	}
	if e, err := ianaindex.IANA.Encoding(name); err == nil && e != nil {
		return e, nil
	}
	if e, err := htmlindex.Get(name); err == nil && e != nil {
		return e, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, name)
}

// IsSupported reports whether name resolves to an encoding.
func IsSupported(name string) bool {
	_, err := LookupEncoding(name)
	return err == nil
}

// Decode converts raw bytes in the named encoding to UTF-8.
func Decode(raw []byte, name string) (string, error) {
	e, err := LookupEncoding(name)
	if err != nil {
		return "", err
	}
	out, err := e.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", name, err)
	}
	return string(out), nil
}

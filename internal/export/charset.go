package export

import (
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// EncodeText converts UTF-8 text to the named charset (any WHATWG label,
// e.g. "windows-1252" or "iso-8859-1"). Characters the charset cannot
// represent are replaced.
func EncodeText(b []byte, charset string) ([]byte, error) {
	if isUTF8(charset) {
		return b, nil
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, eris.Wrapf(err, "export: unknown charset %q", charset)
	}

	out, err := encoding.ReplaceUnsupported(enc.NewEncoder()).Bytes(b)
	if err != nil {
		return nil, eris.Wrapf(err, "export: encode %s", charset)
	}
	return out, nil
}

// ValidateCharset reports an error for labels EncodeText cannot use.
func ValidateCharset(charset string) error {
	if isUTF8(charset) {
		return nil
	}
	if _, err := htmlindex.Get(charset); err != nil {
		return eris.Wrapf(err, "export: unknown charset %q", charset)
	}
	return nil
}

func isUTF8(charset string) bool {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return true
	}
	return false
}

package executor

import (
	"strings"
	"sync"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// NativeEncoding returns the text encoding child processes are assumed to
// write, as configured for this platform. The lookup happens once per
// process. A nil result means output is already UTF-8 and is passed through.
var NativeEncoding = sync.OnceValue(nativeEncoding)

// LookupEncoding resolves an IANA or platform charset name. Names that
// denote UTF-8 or plain ASCII resolve to nil.
func LookupEncoding(name string) (encoding.Encoding, error) {
	if isPassthroughCharset(name) {
		return nil, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, err
	}
	return enc, nil
}

// charsetFromLocale extracts the charset from a POSIX locale name such as
// "de_DE.ISO-8859-1@euro".
func charsetFromLocale(locale string) string {
	if i := strings.IndexByte(locale, '@'); i >= 0 {
		locale = locale[:i]
	}
	i := strings.IndexByte(locale, '.')
	if i < 0 {
		return ""
	}
	return locale[i+1:]
}

func isPassthroughCharset(name string) bool {
	n := strings.ToLower(strings.ReplaceAll(name, "-", ""))
	switch n {
	case "", "utf8", "ascii", "usascii", "ansi_x3.41968", "ansix3.41968", "646":
		return true
	}
	return false
}

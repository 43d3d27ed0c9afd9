//go:build !windows

package executor

import (
	"os"

	"golang.org/x/text/encoding"
)

// nativeEncoding reads the charset of the first non-empty locale variable,
// in the precedence order the C library uses.
func nativeEncoding() encoding.Encoding {
	return encodingFromEnv(os.Getenv)
}

func encodingFromEnv(getenv func(string) string) encoding.Encoding {
	for _, key := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		locale := getenv(key)
		if locale == "" {
			continue
		}
		enc, err := LookupEncoding(charsetFromLocale(locale))
		if err != nil {
			return nil
		}
		return enc
	}
	return nil
}

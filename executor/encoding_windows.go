//go:build windows

package executor

import (
	"fmt"

	"golang.org/x/sys/windows"
	"golang.org/x/text/encoding"
)

const codePageUTF8 = 65001

// nativeEncoding maps the active ANSI code page to an encoding.
func nativeEncoding() encoding.Encoding {
	cp := windows.GetACP()
	if cp == codePageUTF8 {
		return nil
	}
	for _, name := range []string{fmt.Sprintf("windows-%d", cp), fmt.Sprintf("IBM%d", cp)} {
		if enc, err := LookupEncoding(name); err == nil && enc != nil {
			return enc
		}
	}
	return nil
}

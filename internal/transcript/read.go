package transcript

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadFile loads an input file and decodes it to UTF-8.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read input file: %w", err)
	}
	return Decode(data), nil
}

// Decode converts raw bytes to a normalised UTF-8 string. Valid UTF-8 is used
// as is; otherwise GBK is tried, then Latin-1, which accepts any byte.
// A leading BOM is dropped and CRLF line endings become LF.
func Decode(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)

	var text string
	switch {
	case utf8.Valid(data):
		text = string(data)
	default:
		if decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(data); err == nil &&
			!bytes.ContainsRune(decoded, utf8.RuneError) {
			text = string(decoded)
		} else {
			latin, _ := charmap.ISO8859_1.NewDecoder().Bytes(data)
			text = string(latin)
		}
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

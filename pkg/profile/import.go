package profile

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/stackflame/pkg/errors"
)

// Format identifies a profile encoding.
type Format string

const (
	FormatAuto      Format = ""
	FormatCollapsed Format = "collapsed"
	FormatJSON      Format = "json"
)

// ParseFormat parses a format name. "folded" is accepted for collapsed.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "collapsed", "folded":
		return FormatCollapsed, nil
	case "json":
		return FormatJSON, nil
	}
	return FormatAuto, errors.New(errors.ErrCodeInvalidFormat, "unknown profile format %q (want collapsed or json)", s)
}

// Read decodes a profile from r. With [FormatAuto] the input is treated as
// JSON when its first non-blank byte is '{'.
func Read(r io.Reader, format Format, rootName string) (*Node, Format, error) {
	br := bufio.NewReader(r)
	if format == FormatAuto {
		format = sniff(br)
	}
	switch format {
	case FormatJSON:
		root, err := ReadJSON(br)
		if err == nil && rootName != "" {
			root.Name = rootName
		}
		return root, format, err
	default:
		root, err := ReadCollapsed(br, rootName)
		return root, FormatCollapsed, err
	}
}

func sniff(br *bufio.Reader) Format {
	peek, _ := br.Peek(512)
	trimmed := bytes.TrimLeft(peek, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSON
	}
	return FormatCollapsed
}

// Import reads the profile at path. Files ending in .json are decoded as
// JSON trees, anything else is sniffed. The root is named after the file.
func Import(path string) (*Node, Format, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, FormatAuto, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, FormatAuto, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, FormatAuto, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer f.Close()

	format := FormatAuto
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = FormatJSON
	}
	return Read(f, format, Title(path))
}

// Title derives a display title from a profile path: the base name without
// its extension.
func Title(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

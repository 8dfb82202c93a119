package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/stackflame/pkg/errors"
	"github.com/matzehuels/stackflame/pkg/observability"
	"github.com/matzehuels/stackflame/pkg/profile"
)

// ReadInput returns the raw profile bytes named by opts, reading the file
// when no data was supplied.
func ReadInput(opts Options) ([]byte, error) {
	if len(opts.Data) > 0 {
		return opts.Data, nil
	}
	data, err := os.ReadFile(opts.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "read %s", opts.Path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", opts.Path)
	}
	return data, nil
}

// Parse decodes raw profile bytes into a call tree.
func Parse(ctx context.Context, data []byte, opts Options) (*profile.Node, error) {
	format := opts.Format
	if format == profile.FormatAuto && strings.EqualFold(filepath.Ext(opts.Path), ".json") {
		format = profile.FormatJSON
	}

	source := opts.Path
	if source == "" {
		source = "<data>"
	}
	observability.Pipeline().OnParseStart(ctx, string(format), source)
	start := time.Now()

	root, detected, err := profile.Read(bytes.NewReader(data), format, opts.Title)
	count := 0
	if err == nil {
		count = root.Count()
		if opts.Sort {
			root.Sort()
		}
	}
	observability.Pipeline().OnParseComplete(ctx, string(detected), source, count, time.Since(start), err)
	return root, err
}

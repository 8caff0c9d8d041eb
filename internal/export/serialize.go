package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatXLSX = "xlsx"
)

// Encode writes docs to w as json or yaml. JSON output is validated before anything is written.
func Encode(w io.Writer, format string, docs []Document) error {
	if docs == nil {
		docs = []Document{}
	}

	var (
		b   []byte
		err error
	)
	switch format {
	case FormatJSON:
		if b, err = json.MarshalIndent(docs, "", "  "); err != nil {
			return fmt.Errorf("%w: encode json: %w", common.ErrInternal, err)
		}
		if err := ValidateJSON(b); err != nil {
			return err
		}
		b = append(b, '\n')
	case FormatYAML:
		if b, err = yaml.Marshal(docs); err != nil {
			return fmt.Errorf("%w: encode yaml: %w", common.ErrInternal, err)
		}
	default:
		return fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, format)
	}

	_, err = w.Write(b)
	return err
}

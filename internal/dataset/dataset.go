// Package dataset loads span datasets from JSON files, validating them
// against an embedded schema before they reach the store. Files with an
// .lz4 suffix are decompressed transparently.
package dataset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pierrec/lz4/v4"
	"github.com/xeipuuv/gojsonschema"

	"github.com/spantree/spantree/pkg/spanstore"
)

// lz4Suffix marks datasets stored as LZ4 frames.
const lz4Suffix = ".lz4"

// ErrSchema is returned when a dataset fails schema validation.
var ErrSchema = errors.New("dataset schema violation")

// ErrSpanOrder is returned when a span's end lies before its start.
var ErrSpanOrder = errors.New("span end before start")

// spanSchema constrains a dataset to an array of {start, end, id} records
// over uint32 positions. End-after-start cannot be expressed in the schema
// and is checked separately.
const spanSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "array",
	"items": {
		"type": "object",
		"required": ["start", "end"],
		"properties": {
			"start": {"type": "integer", "minimum": 0, "maximum": 4294967295},
			"end": {"type": "integer", "minimum": 0, "maximum": 4294967295},
			"id": {"type": "integer", "minimum": 0, "maximum": 4294967295}
		},
		"additionalProperties": false
	}
}`

// record is the wire form of one span.
type record struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
	ID    uint32 `json:"id"`
}

// Load reads, validates, and decodes the dataset at path. "-" reads stdin.
func Load(path string) ([]spanstore.Span, error) {
	reader, closer, err := openInput(path)
	if err != nil {
		return nil, err
	}
	defer closer()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	return Parse(data)
}

// Parse validates and decodes a JSON dataset.
func Parse(data []byte) ([]spanstore.Span, error) {
	schemaLoader := gojsonschema.NewStringLoader(spanSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validate dataset: %w", err)
	}

	if !result.Valid() {
		descriptions := make([]string, 0, len(result.Errors()))
		for _, verr := range result.Errors() {
			descriptions = append(descriptions, fmt.Sprintf("%s: %s", verr.Field(), verr.Description()))
		}

		return nil, fmt.Errorf("%w: %s", ErrSchema, strings.Join(descriptions, "; "))
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}

	spans := make([]spanstore.Span, len(records))

	for idx, rec := range records {
		if rec.End < rec.Start {
			return nil, fmt.Errorf("%w: record %d [%d - %d]", ErrSpanOrder, idx, rec.Start, rec.End)
		}

		spans[idx] = spanstore.Span{Start: rec.Start, End: rec.End, ID: rec.ID}
	}

	return spans, nil
}

// openInput opens path for reading, unwrapping LZ4 frames by suffix.
func openInput(path string) (io.Reader, func(), error) {
	if path == "-" {
		return os.Stdin, func() {}, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open dataset: %w", err)
	}

	if strings.HasSuffix(path, lz4Suffix) {
		return lz4.NewReader(file), func() { file.Close() }, nil
	}

	return file, func() { file.Close() }, nil
}

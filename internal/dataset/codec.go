package dataset

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/userclean/internal/model"
)

// ErrInputShape is returned when the input is not a JSON array.
// No partial result is produced in that case.
var ErrInputShape = errors.New("malformed input: expected a JSON array of records")

// Decode parses data as a JSON array of records.
//
// Array elements that are not JSON objects decode to an empty record, which
// the validator later rejects as missing fields. Anything other than a
// top-level array, including null, is an ErrInputShape.
func Decode(data []byte) ([]model.RawRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrInputShape
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(trimmed, &elements); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInputShape, err)
	}

	records := make([]model.RawRecord, len(elements))
	for i, el := range elements {
		var rec map[string]any
		if err := json.Unmarshal(el, &rec); err != nil {
			rec = nil
		}
		records[i] = rec
	}
	return records, nil
}

// EncodeJSON renders v as 2-space indented JSON followed by a newline.
// HTML characters are written as-is.
func EncodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Digest returns the hex encoded SHA3-256 of data.
func Digest(data []byte) string {
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

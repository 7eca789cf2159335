package metadata

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/krisalay/kiro/logger"
	"github.com/krisalay/kiro/types"
)

// Loader reads, validates and builds kiro files.
type Loader struct {
	// Validator is optional. When nil, validation is skipped with a warning and the
	// document is trusted as is.
	Validator Validator

	Log *logger.Logger
}

// NewLoader returns a loader using the built-in schema.
func NewLoader(log *logger.Logger) *Loader {
	if log == nil {
		log = logger.Discard()
	}
	return &Loader{Validator: NewSchemaValidator(), Log: log}
}

// document mirrors the file layout for decoding.
type document struct {
	Version     *float64               `json:"version"`
	Name        string                 `json:"name"`
	Description *string                `json:"description"`
	Keysets     map[string]keysetEntry `json:"keysets"`
}

type keysetEntry struct {
	Cols       int               `json:"cols"`
	Rows       int               `json:"rows"`
	Start      int               `json:"start"`
	Length     *int              `json:"length"`
	DefaultKey int               `json:"default_key"`
	AltFor     *string           `json:"alt_for"`
	Keys       []json.RawMessage `json:"keys"`
}

/*
Load reads path and returns the metadata in it.

ERRORS:
-------
- file errors from os.ReadFile, unwrapped by errors.Is as usual
- *ValidationError wrapping ErrParse when the file is not JSON
- *ValidationError when the schema rejects the document
*/
func (l *Loader) Load(path string) (*MetaData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	md, _, err := l.Parse(data, path)
	return md, err
}

// Parse is Load for bytes already in memory. label names the document in messages.
func (l *Loader) Parse(data []byte, label string) (*MetaData, types.Outcome, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, types.OK(), &ValidationError{Label: label, Message: ErrParse.Error(), Err: fmt.Errorf("%w: %v", ErrParse, err)}
	}

	outcome, err := l.Validate(raw, label, false)
	if err != nil {
		return nil, outcome, err
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		// valid JSON of the wrong shape, only reachable without a validator
		return nil, outcome, &ValidationError{Label: label, Message: err.Error(), Err: err}
	}
	return l.build(doc, label), outcome, nil
}

/*
Validate checks doc against the schema.

Without a validator it returns a degraded outcome and no error: the caller may go
on, accepting that the data is unchecked.
*/
func (l *Loader) Validate(doc any, label string, strict bool) (types.Outcome, error) {
	if l.Validator == nil {
		l.Log.Warn("no schema validator available, skipping validation of %s", label)
		return types.Degrade("schema validation skipped for %s", label), nil
	}

	err := l.Validator.Validate(doc, strict)
	if err == nil {
		return types.OK(), nil
	}
	if ve, ok := err.(*ValidationError); ok {
		ve.Label = label
		return types.OK(), ve
	}
	return types.OK(), &ValidationError{Label: label, Message: err.Error(), Err: err}
}

func (l *Loader) build(doc document, label string) *MetaData {
	version := DefaultVersion
	if doc.Version != nil {
		version = *doc.Version
	}
	description := ""
	if doc.Description != nil {
		description = *doc.Description
	}

	keysets := make([]*Keyset, 0, len(doc.Keysets))
	for name, e := range doc.Keysets {
		length := -1
		if e.Length != nil {
			length = *e.Length
		}

		var ks *Keyset
		if e.AltFor != nil {
			ks = NewAltKeyset(name, e.Cols, e.Rows, e.Start, e.DefaultKey, length, *e.AltFor)
		} else {
			ks = NewKeyset(name, e.Cols, e.Rows, e.Start, e.DefaultKey, length, l.normalizeKeys(e.Keys, e.Cols, label, name))
		}
		ks.Version = version
		keysets = append(keysets, ks)
	}
	return New(version, doc.Name, description, keysets)
}

/*
normalizeKeys expands the raw "keys" array into a positional table.

  - "A"            → "A"
  - null           → blank
  - {"gap": N}     → N blanks
  - {"row_gap": N} → N*cols blanks
  - anything else  → one blank and a warning

A gap that would grow the table past MaxKeys counts as "anything else".
*/
func (l *Loader) normalizeKeys(raw []json.RawMessage, cols int, label, keyset string) []string {
	keys := make([]string, 0, len(raw))
	for _, r := range raw {
		var v any
		if err := json.Unmarshal(r, &v); err != nil {
			l.Log.Warn("%s: keyset %q: unreadable key %s", label, keyset, string(r))
			keys = append(keys, "")
			continue
		}

		switch k := v.(type) {
		case nil:
			keys = append(keys, "")
		case string:
			keys = append(keys, k)
		case map[string]any:
			n, ok := blanks(k, cols)
			if ok && n > MaxKeys-len(keys) {
				l.Log.Warn("%s: keyset %q: gap %s exceeds %d cells", label, keyset, string(r), MaxKeys)
				ok = false
			} else if !ok {
				l.Log.Warn("%s: keyset %q: invalid keys value %s", label, keyset, string(r))
			}
			if !ok {
				n = 1
			}
			keys = append(keys, make([]string, n)...)
		default:
			l.Log.Warn("%s: keyset %q: invalid keys value %s", label, keyset, string(r))
			keys = append(keys, "")
		}
	}
	return keys
}

// MaxKeys bounds the size of one glyph table.
const MaxKeys = 1 << 16

// blanks returns how many blank cells a gap directive stands for.
func blanks(m map[string]any, cols int) (int, bool) {
	if n, ok := count(m, "gap"); ok {
		return n, true
	}
	n, ok := count(m, "row_gap")
	if !ok || cols < 1 || n > MaxKeys/cols {
		return 0, false
	}
	return n * cols, true
}

// count reads a non-negative integer field from a gap directive. Values above
// MaxKeys are rejected before conversion.
func count(m map[string]any, field string) (int, bool) {
	f, ok := m[field].(float64)
	if !ok || f < 0 || f > MaxKeys || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

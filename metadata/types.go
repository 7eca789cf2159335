package metadata

import "fmt"

// DefaultVersion is assumed for documents that carry no "version".
const DefaultVersion = 1.0

// MetaData is one loaded kiro file. It is immutable once built.
type MetaData struct {
	Version     float64
	Name        string
	Description string
	Keysets     map[string]*Keyset
}

// Keyset is a named grid of glyphs on the legend sheet.
type Keyset struct {
	Name    string
	Version float64
	Cols    int
	Rows    int

	// Start is the glyph index of the grid's first cell.
	Start int

	// Length is the declared length, or the glyph-table size when none was declared.
	Length         int
	LengthExplicit bool

	DefaultKey int

	// AltFor names the sibling keyset whose glyph table this one shares. Empty when
	// the keyset owns its table.
	AltFor string

	// keys is the owned table, "" for blank cells. nil for alt_for keysets.
	keys []string
}

// IsAlternate reports whether ks borrows its glyph table.
func (ks *Keyset) IsAlternate() bool {
	return ks.AltFor != ""
}

// New builds a MetaData from keysets and fills in inferred lengths. Keysets whose
// alt_for is broken keep a zero inferred length; the error surfaces from Keys.
func New(version float64, name, description string, keysets []*Keyset) *MetaData {
	md := &MetaData{
		Version:     version,
		Name:        name,
		Description: description,
		Keysets:     make(map[string]*Keyset, len(keysets)),
	}
	for _, ks := range keysets {
		md.Keysets[ks.Name] = ks
	}
	for _, ks := range keysets {
		if ks.LengthExplicit {
			continue
		}
		if keys, err := md.Keys(ks.Name); err == nil {
			ks.Length = len(keys)
		}
	}
	return md
}

// NewKeyset builds an owning keyset. length < 0 means "infer from keys".
func NewKeyset(name string, cols, rows, start, defaultKey, length int, keys []string) *Keyset {
	ks := &Keyset{
		Name:       name,
		Version:    DefaultVersion,
		Cols:       cols,
		Rows:       rows,
		Start:      start,
		DefaultKey: defaultKey,
		keys:       keys,
	}
	ks.setLength(length, len(keys))
	return ks
}

// NewAltKeyset builds a keyset that shares altFor's glyph table.
func NewAltKeyset(name string, cols, rows, start, defaultKey, length int, altFor string) *Keyset {
	ks := &Keyset{
		Name:       name,
		Version:    DefaultVersion,
		Cols:       cols,
		Rows:       rows,
		Start:      start,
		DefaultKey: defaultKey,
		AltFor:     altFor,
	}
	ks.setLength(length, 0)
	return ks
}

func (ks *Keyset) setLength(declared, inferred int) {
	if declared >= 0 {
		ks.Length, ks.LengthExplicit = declared, true
		return
	}
	ks.Length = inferred
}

// Keyset returns the named keyset.
func (md *MetaData) Keyset(name string) (*Keyset, bool) {
	ks, ok := md.Keysets[name]
	return ks, ok
}

/*
Keys returns the effective glyph table of the named keyset.

For an owning keyset this is its own table. For an alt_for keyset it is the
referenced keyset's table. A missing target, a target that is itself an alternate,
or a target without a table is a StructuralError.
*/
func (md *MetaData) Keys(name string) ([]string, error) {
	ks, ok := md.Keysets[name]
	if !ok {
		return nil, fmt.Errorf("metadata %q has no keyset %q", md.Name, name)
	}
	if !ks.IsAlternate() {
		return ks.keys, nil
	}

	target, ok := md.Keysets[ks.AltFor]
	if !ok {
		return nil, &StructuralError{Keyset: ks.Name, AltFor: ks.AltFor, Reason: "referenced keyset does not exist"}
	}
	if target.IsAlternate() {
		return nil, &StructuralError{
			Keyset: ks.Name,
			AltFor: ks.AltFor,
			Reason: fmt.Sprintf("referenced keyset is itself an alternate for %q; only one level of alt_for is supported", target.AltFor),
		}
	}
	if target.keys == nil {
		return nil, &StructuralError{Keyset: ks.Name, AltFor: ks.AltFor, Reason: "referenced keyset has no keys"}
	}
	return target.keys, nil
}

// Primary returns the keysets that own their glyph table, in no particular order.
func (md *MetaData) Primary() []*Keyset {
	out := make([]*Keyset, 0, len(md.Keysets))
	for _, ks := range md.Keysets {
		if !ks.IsAlternate() {
			out = append(out, ks)
		}
	}
	return out
}

// ImageMeta associates a host image with the kiro file next to it. Produced by an
// image scan and never persisted.
type ImageMeta struct {
	Name     string
	NameFull string

	// ImagePath and JSONPath are empty when unknown or absent.
	ImagePath string
	JSONPath  string
}

// HasMetadata reports whether both the image and its kiro file were found.
func (im ImageMeta) HasMetadata() bool {
	return im.ImagePath != "" && im.JSONPath != ""
}

/*
Package layout walks physical keyboard layouts.

A layout is the row-major list of legends on a real keyboard ("Q", "W", "E", ...).
Given a starting glyph, Sequence follows the layout from that glyph's position
forwards or backwards and turns the visited legends back into glyph indices.
*/
package layout

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/krisalay/kiro/logger"
	"github.com/krisalay/kiro/token"
	"github.com/krisalay/kiro/types"
)

// Native names "the keyset's own order". Sequence does not expand it.
const Native = "_"

//go:embed layouts.json
var builtin []byte

// Library maps layout names to their ordered legends. Treat it as read-only.
type Library map[string][]string

type file struct {
	Layouts Library `json:"layouts"`
}

/*
Default returns the built-in library: qwerty, qwertz, azerty, dvorak and colemak.
*/
func Default() Library {
	lib, err := Parse(builtin)
	if err != nil {
		panic(fmt.Sprintf("layout: built-in layouts.json: %v", err))
	}
	return lib
}

// Parse decodes a library document: {"layouts": {"name": ["Q", "W", ...]}}.
func Parse(data []byte) (Library, error) {
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.Layouts == nil {
		return nil, errors.New(`missing "layouts"`)
	}
	return f.Layouts, nil
}

/*
Load reads a library file. A missing or malformed file is not an error: the result is
an empty library, the problem is logged, and the outcome says why.
*/
func Load(path string, log *logger.Logger) (Library, types.Outcome) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("loading layouts: %s file not found", path)
			return Library{}, types.Degrade("layouts file %s not found", path)
		}
		log.Warn("loading layouts: %v", err)
		return Library{}, types.Degrade("layouts file %s unreadable: %v", path, err)
	}

	lib, err := Parse(data)
	if err != nil {
		log.Warn("loading layouts: %s: invalid JSON: %v", path, err)
		return Library{}, types.Degrade("layouts file %s invalid: %v", path, err)
	}
	return lib, types.OK()
}

// Names returns the layout names in sorted order.
func (lib Library) Names() []string {
	names := make([]string, 0, len(lib))
	for name := range lib {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the named layout, or nil.
func (lib Library) Get(name string) []string {
	return lib[name]
}

/*
Sequence lists glyph indices starting at start and following the named layout.

BEHAVIOR:
---------
- Native returns [start]; callers build native runs themselves.
- The glyph at start is looked up in the layout, ignoring case.
- length legends are taken from there; a negative length walks backwards. The walk
  stops at either end of the layout.
- The legends are normalized against table and converted to indices. Legends the
  keyset does not have are skipped.

If the layout is unknown or does not contain the start glyph, the result is [start]
with a degraded outcome.
*/
func (lib Library) Sequence(start, length int, name string, table token.Table) ([]int, types.Outcome) {
	if name == Native {
		return []int{start}, types.OK()
	}

	lo, ok := lib[name]
	if !ok {
		return []int{start}, types.Degrade("unknown layout %q", name)
	}

	first, ok := token.IndexToToken(start, table)
	if !ok {
		return []int{start}, types.Degrade("glyph index %d has no legend", start)
	}

	pos := -1
	for i, legend := range lo {
		if strings.EqualFold(legend, first) {
			pos = i
			break
		}
	}
	if pos < 0 {
		return []int{start}, types.Degrade("legend %q is not in layout %q", first, name)
	}

	var window []token.Token
	if length >= 0 {
		end := min(pos+length, len(lo))
		for _, legend := range lo[pos:end] {
			window = append(window, token.T(legend))
		}
	} else {
		for i := pos; i > pos+length && i >= 0; i-- {
			window = append(window, token.T(lo[i]))
		}
	}

	return token.ToIndices(token.Normalize(window, table), table), types.OK()
}

package kiro

import (
	"fmt"
	"os"
	"sort"

	"github.com/krisalay/kiro/cache"
	"github.com/krisalay/kiro/images"
	"github.com/krisalay/kiro/layout"
	"github.com/krisalay/kiro/logger"
	"github.com/krisalay/kiro/metadata"
	"github.com/krisalay/kiro/metrics"
	"github.com/krisalay/kiro/token"
	"github.com/krisalay/kiro/typeset"
	"github.com/krisalay/kiro/types"
)

// Keys of the general cache.
const (
	keyImages  = "images"
	keyLayouts = "layouts"
)

/*
Kiro is the pipeline entry point.

It connects:
- the image enumerator, to find legend sheets
- the metadata loader, to read their kiro files
- the layout library
- the typesetter, through the host passed to StringKeys and ArrayKeys

Two caches sit in between. The data cache holds loaded kiro files keyed by path; the
general cache holds the image list and the layout library under fixed names. Both
report to the same counters.
*/
type Kiro struct {
	cfg Config

	general *cache.Cache[any]
	data    *cache.Cache[*metadata.MetaData]

	counters *metrics.Counters
	loader   *metadata.Loader
	enum     images.Enumerator
	log      *logger.Logger
}

// New builds a pipeline. A nil log writes to stderr at cfg.LogLevel.
func New(cfg Config, enum images.Enumerator, log *logger.Logger) *Kiro {
	if log == nil {
		log = logger.New(os.Stderr, cfg.LogLevel, "kiro")
	}
	if enum == nil {
		enum = images.Static(nil)
	}

	counters := metrics.New()
	cacheOpts := func(name string) []cache.Option {
		opts := []cache.Option{cache.WithMetrics(counters), cache.WithLogger(log.WithPrefix(name))}
		if cfg.Clock != nil {
			opts = append(opts, cache.WithClock(cfg.Clock))
		}
		return opts
	}

	loader := metadata.NewLoader(log.WithPrefix("metadata"))
	if !cfg.SchemaValidation {
		loader.Validator = nil
	}

	return &Kiro{
		cfg:      cfg,
		general:  cache.New[any](cfg.GeneralLifetime, cacheOpts("general")...),
		data:     cache.New[*metadata.MetaData](cfg.DataLifetime, cacheOpts("data")...),
		counters: counters,
		loader:   loader,
		enum:     enum,
		log:      log,
	}
}

/*
Images lists the legend sheets that have a kiro file next to them.

ignoreCache forces a fresh scan; the result replaces the cached list either way.
*/
func (k *Kiro) Images(ignoreCache bool) ([]metadata.ImageMeta, error) {
	if !ignoreCache {
		if v, ok := k.general.Get(keyImages); ok {
			if ims, ok := v.([]metadata.ImageMeta); ok {
				return ims, nil
			}
		}
	}

	ims, err := images.Scan(k.enum)
	if err != nil {
		return nil, fmt.Errorf("scan images: %w", err)
	}
	k.general.Set(keyImages, ims)
	return ims, nil
}

/*
Data returns the kiro file at path, loading it on a miss.

Load and validation errors are logged and returned, and nothing is cached for the
path, so a fixed file is picked up on the next call.
*/
func (k *Kiro) Data(path string, ignoreCache bool) (*metadata.MetaData, error) {
	if ignoreCache {
		k.data.Delete(path)
	}
	return k.data.GetOrResolve(path, types.ResolverFunc(func(p string) (any, error) {
		md, err := k.loader.Load(p)
		if err != nil {
			k.log.Warn("kiro file %s: %v", p, err)
			return nil, err
		}
		return md, nil
	}))
}

// KeysetsForImage lists the keysets of the image named nameFull, sorted by name. An
// unknown image yields no keysets and no error.
func (k *Kiro) KeysetsForImage(nameFull string, includeAlternates, ignoreCache bool) ([]*metadata.Keyset, error) {
	ims, err := k.Images(ignoreCache)
	if err != nil {
		return nil, err
	}
	for _, im := range ims {
		if im.NameFull != nameFull {
			continue
		}
		md, err := k.Data(im.JSONPath, ignoreCache)
		if err != nil {
			return nil, err
		}
		return keysetsOf(md, includeAlternates), nil
	}
	return nil, nil
}

// KeysetsByImage maps every image's full name to its keysets. Images whose kiro
// file does not load are left out.
func (k *Kiro) KeysetsByImage(includeAlternates, ignoreCache bool) (map[string][]*metadata.Keyset, error) {
	sheets, err := k.sheets(ignoreCache)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]*metadata.Keyset, len(sheets))
	for _, s := range sheets {
		out[s.image.NameFull] = keysetsOf(s.data, includeAlternates)
	}
	return out, nil
}

// SetNames maps every image's full name to the names of its primary keysets.
func (k *Kiro) SetNames(ignoreCache bool) (map[string][]string, error) {
	byImage, err := k.KeysetsByImage(false, ignoreCache)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string, len(byImage))
	for img, sets := range byImage {
		names := make([]string, len(sets))
		for i, ks := range sets {
			names[i] = ks.Name
		}
		out[img] = names
	}
	return out, nil
}

// Pick is one choosable keyset.
type Pick struct {
	Image  string
	Keyset *metadata.Keyset
	Data   *metadata.MetaData
}

// Table returns the glyph table of the picked keyset.
func (p Pick) Table() (token.Table, error) {
	keys, err := p.Data.Keys(p.Keyset.Name)
	if err != nil {
		return nil, err
	}
	return token.Table(keys), nil
}

func (p Pick) String() string {
	return p.Image + "/" + p.Keyset.Name
}

// Keysets lists the primary keysets of all images, ordered by image name then
// keyset name. This is the order a keyset picker shows.
func (k *Kiro) Keysets() ([]Pick, error) {
	sheets, err := k.sheets(false)
	if err != nil {
		return nil, err
	}

	var picks []Pick
	for _, s := range sheets {
		for _, ks := range keysetsOf(s.data, false) {
			picks = append(picks, Pick{Image: s.image.NameFull, Keyset: ks, Data: s.data})
		}
	}
	return picks, nil
}

// FindKeyset returns the primary or alternate keyset named name. image may be empty
// to search every image in picker order.
func (k *Kiro) FindKeyset(image, name string) (Pick, error) {
	sheets, err := k.sheets(false)
	if err != nil {
		return Pick{}, err
	}
	for _, s := range sheets {
		if image != "" && s.image.NameFull != image {
			continue
		}
		if ks, ok := s.data.Keyset(name); ok {
			return Pick{Image: s.image.NameFull, Keyset: ks, Data: s.data}, nil
		}
	}
	return Pick{}, fmt.Errorf("no keyset %q found", name)
}

type sheet struct {
	image metadata.ImageMeta
	data  *metadata.MetaData
}

// sheets loads every image's kiro file, sorted by image name.
func (k *Kiro) sheets(ignoreCache bool) ([]sheet, error) {
	ims, err := k.Images(ignoreCache)
	if err != nil {
		return nil, err
	}

	out := make([]sheet, 0, len(ims))
	for _, im := range ims {
		md, err := k.Data(im.JSONPath, ignoreCache)
		if err != nil {
			continue
		}
		out = append(out, sheet{image: im, data: md})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].image.NameFull < out[j].image.NameFull })
	return out, nil
}

func keysetsOf(md *metadata.MetaData, includeAlternates bool) []*metadata.Keyset {
	out := make([]*metadata.Keyset, 0, len(md.Keysets))
	for _, ks := range md.Keysets {
		if includeAlternates || !ks.IsAlternate() {
			out = append(out, ks)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

type layouts struct {
	lib     layout.Library
	outcome types.Outcome
}

// Layouts returns the layout library: the built-in one, or the file at
// Config.LayoutsPath. A broken file gives an empty library and a degraded outcome.
func (k *Kiro) Layouts() (layout.Library, types.Outcome) {
	v, err := k.general.GetOrResolve(keyLayouts, types.ResolverFunc(func(string) (any, error) {
		if k.cfg.LayoutsPath == "" {
			return layouts{lib: layout.Default()}, nil
		}
		lib, outcome := layout.Load(k.cfg.LayoutsPath, k.log.WithPrefix("layout"))
		return layouts{lib: lib, outcome: outcome}, nil
	}))
	if err != nil {
		return layout.Library{}, types.Degrade("layouts: %v", err)
	}
	l, _ := v.(layouts)
	return l.lib, l.outcome
}

// LayoutNames lists the layouts, sorted.
func (k *Kiro) LayoutNames() []string {
	lib, _ := k.Layouts()
	return lib.Names()
}

// Layout returns the legends of the named layout, or nil.
func (k *Kiro) Layout(name string) []string {
	lib, _ := k.Layouts()
	return lib.Get(name)
}

// StringIndices turns text into glyph indices of the picked keyset, with one label
// per index.
func (k *Kiro) StringIndices(text string, p Pick, spaceAsGap bool) ([]int, []string, error) {
	table, err := p.Table()
	if err != nil {
		return nil, nil, err
	}
	indices, labels := token.StringToIndices(text, table, spaceAsGap)
	return indices, labels, nil
}

/*
ArrayIndices lists length glyph indices starting at start.

With layout.Native the run follows the keyset's own order, stepping backwards for a
negative length and stopping at either end of the table. Any other name follows that
keyboard layout.
*/
func (k *Kiro) ArrayIndices(start, length int, layoutName string, p Pick) ([]int, types.Outcome, error) {
	table, err := p.Table()
	if err != nil {
		return nil, types.OK(), err
	}

	if layoutName == layout.Native {
		return nativeRun(start, length, len(table)), types.OK(), nil
	}

	lib, outcome := k.Layouts()
	indices, seq := lib.Sequence(start, length, layoutName, table)
	outcome = outcome.Merge(seq)
	if seq.Degraded {
		k.log.Warn("layout sequence for %s: %s", p, seq.Reason)
	}
	return indices, outcome, nil
}

func nativeRun(start, length, size int) []int {
	step := 1
	if length < 0 {
		step, length = -1, -length
	}
	indices := make([]int, 0, length)
	for i, n := start, 0; n < length && i >= 0 && i < size; i, n = i+step, n+1 {
		indices = append(indices, i)
	}
	return indices
}

// DetectWrongKeyset reports whether text has glyphs the picked keyset lacks.
func (k *Kiro) DetectWrongKeyset(text string, p Pick) (bool, error) {
	table, err := p.Table()
	if err != nil {
		return false, err
	}
	return token.DetectWrongKeyset(text, table), nil
}

// PlaceOptions tune StringKeys and ArrayKeys.
type PlaceOptions struct {
	Gap      float64
	SpaceGap float64
	Axis     string
	Guide    bool

	// SpaceAsGap makes unbracketed spaces leave a gap instead of placing a key.
	SpaceAsGap bool
}

func (o PlaceOptions) options(labels []string, log *logger.Logger) typeset.Options {
	return typeset.Options{
		Gap:      o.Gap,
		SpaceGap: o.SpaceGap,
		Axis:     o.Axis,
		Guide:    o.Guide,
		Labels:   labels,
		Log:      log,
	}
}

// StringKeys places one keycap per glyph of text, starting with template. Glyphs the
// keyset lacks are skipped and mark the outcome degraded.
func (k *Kiro) StringKeys(host typeset.Host, template typeset.Object, target typeset.Container, p Pick, text string, opts PlaceOptions) (typeset.Result, error) {
	indices, labels, err := k.StringIndices(text, p, opts.SpaceAsGap)
	if err != nil {
		return typeset.Result{}, err
	}
	outcome := types.OK()
	if wrong, _ := k.DetectWrongKeyset(text, p); wrong {
		k.log.Warn("%q has glyphs keyset %s does not have", text, p)
		outcome = types.Degrade("%q has glyphs keyset %s does not have, they were skipped", text, p)
	}

	res := typeset.Place(host, template, indices, target, opts.options(labels, k.log.WithPrefix("typeset")))
	res.Outcome = outcome.Merge(res.Outcome)
	return res, nil
}

// ArrayKeys places length keycaps following a layout, starting from the glyph the
// template already shows (0 when it shows none).
func (k *Kiro) ArrayKeys(host typeset.Host, template typeset.Object, target typeset.Container, p Pick, layoutName string, length int, opts PlaceOptions) (typeset.Result, error) {
	start, ok := template.Glyph()
	if !ok {
		start = 0
	}

	indices, outcome, err := k.ArrayIndices(start, length, layoutName, p)
	if err != nil {
		return typeset.Result{}, err
	}

	table, _ := p.Table()
	labels := make([]string, len(indices))
	for i, idx := range indices {
		labels[i], _ = token.IndexToToken(idx, table)
	}

	res := typeset.Place(host, template, indices, target, opts.options(labels, k.log.WithPrefix("typeset")))
	res.Outcome = outcome.Merge(res.Outcome)
	return res, nil
}

// Stats returns the hit and miss counts of both caches.
func (k *Kiro) Stats() metrics.Snapshot {
	return k.counters.Snapshot()
}

// ResetStats zeroes the cache counters.
func (k *Kiro) ResetStats() {
	k.counters.Reset()
}

// ClearCaches drops everything cached.
func (k *Kiro) ClearCaches() {
	k.general.Clear()
	k.data.Clear()
}

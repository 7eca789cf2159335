package kiro_test

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krisalay/kiro"
	"github.com/krisalay/kiro/images"
	"github.com/krisalay/kiro/layout"
	"github.com/krisalay/kiro/logger"
	"github.com/krisalay/kiro/metadata"
	"github.com/krisalay/kiro/scene"
	"github.com/krisalay/kiro/typeset"
)

var sheets = images.Dir(filepath.Join("testdata", "sheets"))

//
// ================= HELPERS =================
//

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// countingEnum counts scans.
type countingEnum struct {
	images.Enumerator
	scans int
}

func (e *countingEnum) Images() ([]images.Asset, error) {
	e.scans++
	return e.Enumerator.Images()
}

func newKiro(t *testing.T) *kiro.Kiro {
	t.Helper()
	return kiro.New(kiro.NewConfig(), sheets, logger.Discard())
}

func pick(t *testing.T, k *kiro.Kiro, image, name string) kiro.Pick {
	t.Helper()
	p, err := k.FindKeyset(image, name)
	require.NoError(t, err)
	return p
}

func names(objs []typeset.Object) []string {
	out := make([]string, len(objs))
	for i, o := range objs {
		out[i] = o.Name()
	}
	return out
}

func xs(objs []typeset.Object) []float64 {
	out := make([]float64, len(objs))
	for i, o := range objs {
		out[i] = o.Location().X
	}
	return out
}

func newTemplate() (*scene.Scene, *scene.Object) {
	s := scene.New()
	return s, s.NewObject("Key", typeset.Vec3{X: 1, Y: 1, Z: 1}, s.Root())
}

//
// ================= IMAGES & DATA =================
//

func TestImagesFindsSheetsWithKiroFiles(t *testing.T) {
	k := newKiro(t)

	ims, err := k.Images(false)
	require.NoError(t, err)

	var got []string
	for _, im := range ims {
		got = append(got, im.NameFull)
		assert.True(t, im.HasMetadata())
	}
	assert.Equal(t, []string{"alpha.png", "beta.png", "gamma.png"}, got)
}

func TestImagesCached(t *testing.T) {
	clock := &testClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	cfg := kiro.NewConfig()
	cfg.Clock = clock.Now
	enum := &countingEnum{Enumerator: sheets}
	k := kiro.New(cfg, enum, logger.Discard())

	_, err := k.Images(false)
	require.NoError(t, err)
	_, err = k.Images(false)
	require.NoError(t, err)
	assert.Equal(t, 1, enum.scans)

	clock.Advance(kiro.DefaultLifetime - time.Millisecond)
	_, _ = k.Images(false)
	assert.Equal(t, 1, enum.scans)

	clock.Advance(time.Millisecond)
	_, _ = k.Images(false)
	assert.Equal(t, 2, enum.scans, "entry expires once its lifetime has fully passed")

	_, _ = k.Images(true)
	assert.Equal(t, 3, enum.scans)
}

func TestDataCachedByPath(t *testing.T) {
	k := newKiro(t)
	path := filepath.Join("testdata", "sheets", "alpha.kiro.json")

	md1, err := k.Data(path, false)
	require.NoError(t, err)
	md2, err := k.Data(path, false)
	require.NoError(t, err)
	assert.Same(t, md1, md2)
	assert.Equal(t, "alpha", md1.Name)

	md3, err := k.Data(path, true)
	require.NoError(t, err)
	assert.NotSame(t, md1, md3)

	s := k.Stats()
	assert.Equal(t, int64(2), s.Resolves)
	assert.Equal(t, int64(1), s.Hits)
}

func TestDataInvalidNotCached(t *testing.T) {
	k := newKiro(t)
	path := filepath.Join("testdata", "sheets", "gamma.kiro.json")

	_, err := k.Data(path, false)
	var ve *metadata.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Error(), "gamma.kiro.json")

	_, err = k.Data(path, false)
	require.Error(t, err)
	assert.Equal(t, int64(2), k.Stats().Resolves)
}

func TestDataWithoutSchemaValidation(t *testing.T) {
	cfg := kiro.NewConfig()
	cfg.SchemaValidation = false
	k := kiro.New(cfg, sheets, logger.Discard())

	md, err := k.Data(filepath.Join("testdata", "sheets", "gamma.kiro.json"), false)
	require.NoError(t, err)
	_, ok := md.Keyset("zero-cols")
	assert.True(t, ok)
}

//
// ================= KEYSETS =================
//

func TestKeysetsPickerOrder(t *testing.T) {
	k := newKiro(t)

	picks, err := k.Keysets()
	require.NoError(t, err)

	var got []string
	for _, p := range picks {
		got = append(got, p.String())
	}
	assert.Equal(t, []string{"alpha.png/nums", "alpha.png/qwerty-row", "beta.png/arrows"}, got)
}

func TestKeysetsForImage(t *testing.T) {
	k := newKiro(t)

	all, err := k.KeysetsForImage("alpha.png", true, false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "nums", all[0].Name)
	assert.Equal(t, "qwerty-row", all[1].Name)
	assert.Equal(t, "shift", all[2].Name)
	assert.Equal(t, 10, all[2].Length, "alternate length is inferred from the shared table")

	primary, err := k.KeysetsForImage("alpha.png", false, false)
	require.NoError(t, err)
	assert.Len(t, primary, 2)

	none, err := k.KeysetsForImage("nope.png", true, false)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = k.KeysetsForImage("gamma.png", true, false)
	assert.Error(t, err)
}

func TestKeysetsByImageAndSetNames(t *testing.T) {
	k := newKiro(t)

	byImage, err := k.KeysetsByImage(true, false)
	require.NoError(t, err)
	assert.Len(t, byImage, 2, "gamma fails validation and is left out")
	assert.Len(t, byImage["beta.png"], 2)

	sets, err := k.SetNames(false)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"alpha.png": {"nums", "qwerty-row"},
		"beta.png":  {"arrows"},
	}, sets)
}

func TestPickTable(t *testing.T) {
	k := newKiro(t)

	shift := pick(t, k, "", "shift")
	table, err := shift.Table()
	require.NoError(t, err)
	assert.Equal(t, "Q", table[0])

	broken := pick(t, k, "beta.png", "broken-alt")
	_, err = broken.Table()
	var se *metadata.StructuralError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "missing", se.AltFor)

	_, err = k.FindKeyset("alpha.png", "arrows")
	assert.Error(t, err)
}

//
// ================= LAYOUTS =================
//

func TestBuiltinLayouts(t *testing.T) {
	k := newKiro(t)

	lib, outcome := k.Layouts()
	assert.False(t, outcome.Degraded)
	assert.Contains(t, lib, "qwerty")
	assert.Contains(t, k.LayoutNames(), "dvorak")
	assert.Equal(t, "Q", k.Layout("qwerty")[12])
	assert.Nil(t, k.Layout("nope"))
}

func TestLayoutsFromFile(t *testing.T) {
	cfg := kiro.NewConfig()
	cfg.LayoutsPath = filepath.Join("testdata", "layouts.json")
	k := kiro.New(cfg, sheets, logger.Discard())

	assert.Equal(t, []string{"short"}, k.LayoutNames())

	cfg.LayoutsPath = filepath.Join("testdata", "missing.json")
	k = kiro.New(cfg, sheets, logger.Discard())
	lib, outcome := k.Layouts()
	assert.Empty(t, lib)
	assert.True(t, outcome.Degraded)
}

//
// ================= INDICES =================
//

func TestStringIndices(t *testing.T) {
	k := newKiro(t)
	p := pick(t, k, "", "qwerty-row")

	indices, labels, err := k.StringIndices("qw e", p, true)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, -1, 2}, indices)
	assert.Equal(t, []string{"Q", "W", "", "E"}, labels)

	wrong, err := k.DetectWrongKeyset("QWZ", p)
	require.NoError(t, err)
	assert.True(t, wrong)

	wrong, err = k.DetectWrongKeyset("[Q] w", p)
	require.NoError(t, err)
	assert.False(t, wrong)

	_, _, err = k.StringIndices("x", pick(t, k, "", "broken-alt"), false)
	assert.Error(t, err)
}

func TestArrayIndices(t *testing.T) {
	k := newKiro(t)
	p := pick(t, k, "", "qwerty-row")

	tests := []struct {
		name     string
		start    int
		length   int
		layout   string
		want     []int
		degraded bool
	}{
		{"native forward", 2, 3, layout.Native, []int{2, 3, 4}, false},
		{"native backward stops at zero", 2, -5, layout.Native, []int{2, 1, 0}, false},
		{"native stops at table end", 8, 5, layout.Native, []int{8, 9}, false},
		{"native empty", 3, 0, layout.Native, []int{}, false},
		{"qwerty forward", 0, 4, "qwerty", []int{0, 1, 2, 3}, false},
		{"qwerty backward", 3, -3, "qwerty", []int{3, 2, 1}, false},
		{"unknown layout", 5, 3, "nope", []int{5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, outcome, err := k.ArrayIndices(tt.start, tt.length, tt.layout, p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.degraded, outcome.Degraded)
		})
	}
}

//
// ================= PLACEMENT =================
//

func TestStringKeys(t *testing.T) {
	k := newKiro(t)
	s, tmpl := newTemplate()

	res, err := k.StringKeys(s, tmpl, s.Root(), pick(t, k, "", "qwerty-row"), "QWE", kiro.PlaceOptions{Gap: 0.5})
	require.NoError(t, err)
	assert.False(t, res.Outcome.Degraded)
	assert.Equal(t, []string{"Key", "Key (W)", "Key (E)"}, names(res.Objects))
	assert.Equal(t, []float64{0, 1.5, 3}, xs(res.Objects))

	g, ok := res.Objects[2].Glyph()
	require.True(t, ok)
	assert.Equal(t, 2, g)
	assert.Len(t, s.Selected(), 1, "only the template stays selected")
}

func TestStringKeysWrongKeysetDegrades(t *testing.T) {
	k := newKiro(t)
	s, tmpl := newTemplate()

	res, err := k.StringKeys(s, tmpl, s.Root(), pick(t, k, "", "qwerty-row"), "QZW", kiro.PlaceOptions{})
	require.NoError(t, err)
	assert.True(t, res.Outcome.Degraded)
	assert.Contains(t, res.Outcome.Reason, "qwerty-row")
	assert.Equal(t, []string{"Key", "Key (W)"}, names(res.Objects))
}

func TestStringKeysSpaceAsGap(t *testing.T) {
	k := newKiro(t)
	s, tmpl := newTemplate()

	opts := kiro.PlaceOptions{Gap: 0.5, SpaceGap: 0.25, SpaceAsGap: true}
	res, err := k.StringKeys(s, tmpl, s.Root(), pick(t, k, "", "qwerty-row"), "Q W", opts)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 3.25}, xs(res.Objects))
}

func TestStringKeysBadAxis(t *testing.T) {
	k := newKiro(t)
	s, tmpl := newTemplate()

	res, err := k.StringKeys(s, tmpl, s.Root(), pick(t, k, "", "qwerty-row"), "QW", kiro.PlaceOptions{Axis: "sideways"})
	require.NoError(t, err)
	assert.True(t, res.Outcome.Degraded)
	assert.Equal(t, []float64{0, 1}, xs(res.Objects))
}

func TestArrayKeysFromTemplateGlyph(t *testing.T) {
	k := newKiro(t)
	s, tmpl := newTemplate()
	tmpl.SetGlyph(1)

	res, err := k.ArrayKeys(s, tmpl, s.Root(), pick(t, k, "", "qwerty-row"), "qwerty", 3, kiro.PlaceOptions{Axis: "-y", Guide: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Key", "Key (E)", "Key (R)"}, names(res.Objects))
	require.NotNil(t, res.Guide)
	assert.Equal(t, typeset.GuideName, res.Guide.Name())
	assert.Equal(t, []typeset.Vec3{{}, {Y: -1}, {Y: -2}}, res.Offsets)

	parent, vertex := res.Objects[2].(*scene.Object).Parent()
	require.NotNil(t, parent)
	assert.Equal(t, 2, vertex)
}

func TestArrayKeysUnknownLayout(t *testing.T) {
	k := newKiro(t)
	s, tmpl := newTemplate()

	res, err := k.ArrayKeys(s, tmpl, s.Root(), pick(t, k, "", "qwerty-row"), "nope", 4, kiro.PlaceOptions{})
	require.NoError(t, err)
	assert.True(t, res.Outcome.Degraded)
	assert.Len(t, res.Objects, 1)
	g, _ := tmpl.Glyph()
	assert.Equal(t, 0, g)
}

func TestResetStats(t *testing.T) {
	k := newKiro(t)

	_, err := k.Keysets()
	require.NoError(t, err)
	_, err = k.Keysets()
	require.NoError(t, err)

	before := k.Stats()
	assert.Positive(t, before.Hits)
	assert.Greater(t, before.HitRatio(), 0.0)

	k.ResetStats()
	assert.Zero(t, k.Stats())
}

func TestClearCaches(t *testing.T) {
	enum := &countingEnum{Enumerator: sheets}
	k := kiro.New(kiro.NewConfig(), enum, logger.Discard())

	_, _ = k.Images(false)
	k.ClearCaches()
	_, _ = k.Images(false)
	assert.Equal(t, 2, enum.scans)
}

package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krisalay/kiro/logger"
)

/*
Sample layout A:
---------------
  .   .   1   2
  3   4   5   6
  7   8   .   .
1 2 3 4 . . . .
---------------
*/
func validObject() map[string]any {
	return map[string]any{
		"kiro":        1.0,
		"name":        "Sample Data",
		"description": "A complete but minimal sample",
		"keysets": map[string]any{
			"keyset A1": map[string]any{
				"cols":        4.0,
				"rows":        4.0,
				"start":       2.0,
				"keys":        []any{"1", "2", "3", "4", "5", "6", "7", "8"},
				"default_key": 0.0,
			},
			"keyset A2": map[string]any{
				"alt_for":     "keyset A1",
				"cols":        8.0,
				"rows":        4.0,
				"start":       24.0,
				"length":      4.0,
				"default_key": 0.0,
			},
			"keyset B1": map[string]any{
				"cols":        3.0,
				"rows":        3.0,
				"start":       0.0,
				"keys":        []any{"a", "b", "c", "d", "e", "f", "g", "h", "i"},
				"default_key": 0.0,
			},
		},
	}
}

func testLoader() *Loader {
	return NewLoader(logger.Discard())
}

func TestValidateValidObject(t *testing.T) {
	outcome, err := testLoader().Validate(validObject(), "test_data", false)
	require.NoError(t, err)
	assert.False(t, outcome.Degraded)
}

func TestValidateOptionalMissingStrict(t *testing.T) {
	doc := validObject()
	delete(doc, "kiro")
	delete(doc, "description")

	_, err := testLoader().Validate(doc, "test_data", true)
	assert.NoError(t, err)
}

func TestValidateStrictRejectsUnknownProperty(t *testing.T) {
	doc := validObject()
	doc["colour"] = "red"

	_, err := testLoader().Validate(doc, "test_data", false)
	require.NoError(t, err)

	_, err = testLoader().Validate(doc, "test_data", true)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "test_data", ve.Label)
}

func TestValidateMissingKeysets(t *testing.T) {
	doc := validObject()
	delete(doc, "keysets")

	_, err := testLoader().Validate(doc, "test_data", true)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Error(), "test_data")
	assert.NotEmpty(t, ve.Message)
	assert.False(t, errors.Is(err, ErrParse))
}

func TestValidateKeysAndAltForExclusive(t *testing.T) {
	doc := validObject()
	ks := doc["keysets"].(map[string]any)["keyset A2"].(map[string]any)
	ks["keys"] = []any{"x"}

	_, err := testLoader().Validate(doc, "test_data", false)
	assert.Error(t, err)
}

func TestValidateWithoutValidatorDegrades(t *testing.T) {
	var buf bytes.Buffer
	l := &Loader{Log: logger.New(&buf, logger.LevelWarn, "")}

	doc := validObject()
	delete(doc, "keysets")
	outcome, err := l.Validate(doc, "test_data", false)
	require.NoError(t, err)
	assert.True(t, outcome.Degraded)
	assert.Contains(t, buf.String(), "skipping validation")
}

func TestLoadSuccess(t *testing.T) {
	md, err := testLoader().Load(filepath.Join("testdata", "image1.kiro.json"))
	require.NoError(t, err)

	assert.Equal(t, "test1", md.Name)
	assert.Equal(t, 1.0, md.Version)
	assert.Equal(t, "Sample legend sheet used by the tests", md.Description)
	assert.Len(t, md.Keysets, 3)

	letters, ok := md.Keyset("letters")
	require.True(t, ok)
	assert.Equal(t, 4, letters.Cols)
	assert.Equal(t, 2, letters.Start)
	assert.False(t, letters.IsAlternate())

	keys, err := md.Keys("letters")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "", "", "C", "", "", "", "", "", "D", "Enter"}, keys)
	assert.Equal(t, 12, letters.Length)
	assert.False(t, letters.LengthExplicit)
}

func TestLoadAltFor(t *testing.T) {
	md, err := testLoader().Load(filepath.Join("testdata", "image1.kiro.json"))
	require.NoError(t, err)

	wide, ok := md.Keyset("letters-wide")
	require.True(t, ok)
	assert.True(t, wide.IsAlternate())
	assert.Equal(t, 4, wide.Length)
	assert.True(t, wide.LengthExplicit)

	own, err := md.Keys("letters")
	require.NoError(t, err)
	alt, err := md.Keys("letters-wide")
	require.NoError(t, err)
	assert.Equal(t, own, alt)

	assert.Len(t, md.Primary(), 2)
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := testLoader().Load(filepath.Join("testdata", "NONEXISTENT_FILE.kiro.json"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLoadFileNotValid(t *testing.T) {
	_, err := testLoader().Load(filepath.Join("testdata", "not_schema_compliant.kiro.json"))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.False(t, errors.Is(err, ErrParse))
	assert.Contains(t, ve.Message, "/keysets/letters/cols")
}

func TestLoadFileNotJSON(t *testing.T) {
	_, err := testLoader().Load(filepath.Join("testdata", "not_json.kiro.json"))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.ErrorIs(t, err, ErrParse)
}

func TestAltForChainIsStructuralError(t *testing.T) {
	l := &Loader{Log: logger.Discard()}
	md, err := l.Load(filepath.Join("testdata", "chained_alt.kiro.json"))
	require.NoError(t, err, "the schema cannot see alt_for chains; the error comes on use")

	keys, err := md.Keys("middle")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)
	middle, _ := md.Keyset("middle")
	assert.Equal(t, 2, middle.Length)

	_, err = md.Keys("top")
	var se *StructuralError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "top", se.Keyset)
	assert.Equal(t, "middle", se.AltFor)

	_, err = md.Keys("dangling")
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "nowhere", se.AltFor)

	top, _ := md.Keyset("top")
	assert.Equal(t, 0, top.Length)
}

func TestKeysUnknownKeyset(t *testing.T) {
	md := New(1, "x", "", nil)
	_, err := md.Keys("nope")
	assert.Error(t, err)
}

func TestNormalizeKeysInvalidShapes(t *testing.T) {
	var buf bytes.Buffer
	l := &Loader{Log: logger.New(&buf, logger.LevelWarn, "")}

	raw := []json.RawMessage{
		json.RawMessage(`"A"`),
		json.RawMessage(`{"gap": 2}`),
		json.RawMessage(`{"row_gap": 1}`),
		json.RawMessage(`{"what": 1}`),
		json.RawMessage(`42`),
		json.RawMessage(`null`),
		json.RawMessage(`"B"`),
	}
	keys := l.normalizeKeys(raw, 3, "inline", "ks")

	assert.Equal(t, []string{"A", "", "", "", "", "", "", "", "", "B"}, keys)
	assert.Contains(t, buf.String(), "invalid keys value")
}

func TestOversizedGapsBecomeOneBlank(t *testing.T) {
	docs := []string{
		`{"name":"n","keysets":{"k":{"cols":3,"rows":1,"start":0,"default_key":0,"keys":["A",{"row_gap":4611686018427387904}]}}}`,
		`{"name":"n","keysets":{"k":{"cols":3,"rows":1,"start":0,"default_key":0,"keys":["A",{"gap":1e300}]}}}`,
		`{"name":"n","keysets":{"k":{"cols":3,"rows":1,"start":0,"default_key":0,"keys":["A",{"gap":65537}]}}}`,
		`{"name":"n","keysets":{"k":{"cols":9000,"rows":1,"start":0,"default_key":0,"keys":["A",{"row_gap":8}]}}}`,
	}

	for _, validated := range []bool{true, false} {
		for _, doc := range docs {
			var buf bytes.Buffer
			l := NewLoader(logger.New(&buf, logger.LevelWarn, ""))
			if !validated {
				l.Validator = nil
			}

			var md *MetaData
			var err error
			require.NotPanics(t, func() {
				md, _, err = l.Parse([]byte(doc), "inline")
			}, doc)
			require.NoError(t, err, doc)

			keys, err := md.Keys("k")
			require.NoError(t, err)
			assert.Equal(t, []string{"A", ""}, keys, doc)
			assert.NotEmpty(t, buf.String(), "a warning is logged")
		}
	}
}

func TestGapUpToLimit(t *testing.T) {
	l := &Loader{Log: logger.Discard()}
	keys := l.normalizeKeys([]json.RawMessage{json.RawMessage(`{"gap": 65536}`)}, 4, "inline", "ks")
	assert.Len(t, keys, MaxKeys)

	keys = l.normalizeKeys([]json.RawMessage{json.RawMessage(`"A"`), json.RawMessage(`{"gap": 65536}`)}, 4, "inline", "ks")
	assert.Equal(t, []string{"A", ""}, keys)
}

func TestParseWithoutValidator(t *testing.T) {
	l := &Loader{Log: logger.Discard()}
	md, outcome, err := l.Parse([]byte(`{"name":"n","keysets":{"k":{"cols":2,"rows":1,"start":0,"default_key":0,"keys":["x",{"odd":true}]}}}`), "inline")
	require.NoError(t, err)
	assert.True(t, outcome.Degraded)

	keys, err := md.Keys("k")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", ""}, keys)
	assert.Equal(t, DefaultVersion, md.Version)
}

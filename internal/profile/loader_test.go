package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	set := Defaults()

	items, ok := set.Lookup("items")
	require.True(t, ok)
	assert.Equal(t, "created_at", items.DateColumn)
	assert.Equal(t, "updated_at", items.ModifiedColumn)
	assert.Equal(t, "name", items.OrderColumn)
	assert.Equal(t, 50, items.PageSize)
	assert.Contains(t, items.Synthetics, "loose")
	assert.Contains(t, items.Synthetics, "due")

	boxes, ok := set.Lookup("boxes")
	require.True(t, ok)
	assert.Equal(t, "label", boxes.OrderColumn)
	assert.Empty(t, boxes.Synthetics)

	assert.Equal(t, []string{"boxes", "items"}, set.Names())
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	set, errs := Load("testdata/profiles", LoadModeFailFast)
	require.Empty(t, errs)

	// Overridden fields change, the rest keep their defaults.
	items, ok := set.Lookup("items")
	require.True(t, ok)
	assert.Equal(t, "it", items.Alias)
	assert.Equal(t, 25, items.PageSize)
	assert.Equal(t, "created_at", items.DateColumn)
	assert.Contains(t, items.Synthetics, "invoiced")

	// New tables are added verbatim.
	invoices, ok := set.Lookup("invoices")
	require.True(t, ok)
	assert.Equal(t, "issued_at", invoices.DateColumn)
	assert.Equal(t, "vendor", invoices.OrderColumn)
	assert.Equal(t, 20, invoices.PageSize)
	assert.Empty(t, invoices.Synthetics)

	// Untouched defaults survive.
	_, ok = set.Lookup("boxes")
	assert.True(t, ok)
}

func TestLoad_MissingDirectory(t *testing.T) {
	_, errs := Load("testdata/does-not-exist", LoadModeFailFast)
	require.Len(t, errs, 1)

	var loadErr *LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
}

func TestLoad_NoCUEFiles(t *testing.T) {
	dir := t.TempDir()
	_, errs := Load(dir, LoadModeFailFast)
	require.Len(t, errs, 1)

	var loadErr *LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeNoFiles, loadErr.Code)
}

func TestLoad_CollectAllGathersEveryError(t *testing.T) {
	_, errs := Load("testdata/broken", LoadModeCollectAll)
	require.NotEmpty(t, errs)

	codes := make(map[string]bool)
	for _, err := range errs {
		var loadErr *LoadError
		require.ErrorAs(t, err, &loadErr)
		codes[loadErr.Code] = true
	}
	assert.True(t, codes[ErrCodePageSize], "negative page_size must be reported")
	assert.True(t, codes[ErrCodeBadField], "non-string order must be reported")
	assert.True(t, codes[ErrCodeBadList], "non-list synthetics must be reported")
}

func TestLoad_FailFastStopsEarly(t *testing.T) {
	set, errs := Load("testdata/broken", LoadModeFailFast)
	require.NotEmpty(t, errs)
	assert.Less(t, len(errs), 3, "fail-fast must stop at the first broken table")

	// The broken table keeps its default profile.
	items, ok := set.Lookup("items")
	require.True(t, ok)
	assert.Equal(t, 50, items.PageSize)
}

func TestLoadError_FormatsWithoutPosition(t *testing.T) {
	err := &LoadError{Code: ErrCodeGeneric, Message: "boom"}
	assert.Equal(t, "P001: boom", err.Error())
}

func TestFindCUEFiles(t *testing.T) {
	files, err := FindCUEFiles("testdata/profiles")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Contains(t, files[0], "packrat.cue")
}

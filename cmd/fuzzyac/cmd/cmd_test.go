package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/fuzzyac/internal/config"
)

func decodeRecords(t *testing.T, out string) []scanRecord {
	t.Helper()
	var rs []scanRecord
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		r := scanRecord{}
		require.NoError(t, json.Unmarshal([]byte(line), &r))
		rs = append(rs, r)
	}
	return rs
}

func TestScanAdhocStdin(t *testing.T) {
	ctx := context.Background()
	set, err := adhocSet(ctx, []string{"he", "she", "his", "hers"}, 0)
	require.NoError(t, err)
	docs, err := loadDocuments(nil, strings.NewReader("ushers"), false)
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	require.NoError(t, scan(ctx, set, docs, scanOptions{keywords: []string{"x"}, distance: -1}, 0, buf))
	rs := decodeRecords(t, buf.String())
	require.Len(t, rs, 3)
	assert.Equal(t, "-", rs[0].File)
	assert.Equal(t, adhocDictName, rs[0].Dictionary)
	assert.Equal(t, "she", rs[0].Keyword)
	assert.Equal(t, "he", rs[1].Keyword)
	assert.Equal(t, "hers", rs[2].Keyword)
	assert.Equal(t, 2, rs[2].Start)
	assert.Equal(t, 6, rs[2].End)
}

func TestScanConfiguredDictionaries(t *testing.T) {
	dir := t.TempDir()
	words := filepath.Join(dir, "fruit.txt")
	require.NoError(t, os.WriteFile(words, []byte("Apple\n# comment\nbanana\n"), 0o644))
	page := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(page, []byte("<p>an <i>axple</i> and a banana</p>"), 0o644))

	ctx := context.Background()
	set, watched, err := buildDictionaries(ctx, []config.DictionaryConfig{
		{
			Name:        "fruit",
			MaxDistance: 1,
			Watch:       true,
			Sources: []config.SourceConfig{
				{Type: "file", Data: map[string]interface{}{"files": []string{words}, "lowercase": true}},
			},
		},
		{
			Name:    "brands",
			Sources: []config.SourceConfig{{Type: "inline", Data: map[string]interface{}{"keywords": []string{"paypal"}}}},
		},
	})
	require.NoError(t, err)
	require.Len(t, watched, 1)
	assert.Equal(t, "fruit", watched[0].Name())

	docs, err := loadDocuments([]string{page}, nil, false)
	require.NoError(t, err)
	buf := &bytes.Buffer{}
	require.NoError(t, scan(ctx, set, docs, scanOptions{dicts: []string{"fruit"}, distance: 0}, 2, buf))
	rs := decodeRecords(t, buf.String())
	require.Len(t, rs, 1)
	assert.Equal(t, page, rs[0].File)
	assert.Equal(t, "banana", rs[0].Keyword)

	buf.Reset()
	require.NoError(t, scan(ctx, set, docs, scanOptions{dicts: []string{"fruit"}, distance: -1}, 2, buf))
	found := map[string]bool{}
	for _, r := range decodeRecords(t, buf.String()) {
		found[r.Found] = true
		assert.LessOrEqual(t, r.Distance, 1)
	}
	assert.True(t, found["axple"])
	assert.True(t, found["banana"])
}

func TestBuildDictionariesErrors(t *testing.T) {
	ctx := context.Background()
	_, _, err := buildDictionaries(ctx, []config.DictionaryConfig{
		{Name: "a", Sources: []config.SourceConfig{{Type: "nope"}}},
	})
	assert.Error(t, err)
	inline := []config.SourceConfig{{Type: "inline", Data: map[string]interface{}{"keywords": []string{"x"}}}}
	_, _, err = buildDictionaries(ctx, []config.DictionaryConfig{
		{Name: "a", Sources: inline},
		{Name: "a", Sources: inline},
	})
	assert.Error(t, err)
}

func TestDistanceCommand(t *testing.T) {
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"distance", "kitten", "sitting"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "3\n", buf.String())
}

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/fuzzyac/internal/automaton"
	"github.com/xxxsen/fuzzyac/internal/dictionary"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	brands, err := dictionary.New(ctx, "brands", 1, dictionary.NewInlineSource("s", []string{"paypal", "google"}))
	require.NoError(t, err)
	set, err := dictionary.NewSet(brands)
	require.NoError(t, err)
	s, err := New(WithDictionarySet(set))
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	rsp, err := http.Get(url)
	require.NoError(t, err)
	defer rsp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(rsp.Body).Decode(out))
	}
	return rsp.StatusCode
}

func TestSearchQuery(t *testing.T) {
	ts := newTestServer(t)
	tests := []struct {
		name    string
		query   string
		code    int
		matches []automaton.Match
	}{
		{
			name:  "fuzzy default distance",
			query: "dict=brands&text=paypa1",
			code:  http.StatusOK,
			matches: []automaton.Match{
				{Keyword: "paypal", Found: "paypa", Start: 0, End: 5, Distance: 1},
				{Keyword: "paypal", Found: "paypa1", Start: 0, End: 6, Distance: 1},
			},
		},
		{
			name:    "exact override",
			query:   "dict=brands&text=paypa1&distance=0",
			code:    http.StatusOK,
			matches: []automaton.Match{},
		},
		{
			name:  "negative distance",
			query: "dict=brands&text=x&distance=-1",
			code:  http.StatusBadRequest,
		},
		{
			name:  "invalid utf8",
			query: "dict=brands&text=%ff",
			code:  http.StatusBadRequest,
		},
		{
			name:  "missing dict",
			query: "text=paypal",
			code:  http.StatusBadRequest,
		},
		{
			name:  "unknown dict",
			query: "dict=fruit&text=apple",
			code:  http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rsp := &searchResponse{}
			code := getJSON(t, ts.URL+"/api/search?"+tt.query, rsp)
			assert.Equal(t, tt.code, code)
			if tt.code == http.StatusOK {
				assert.Equal(t, "brands", rsp.Dictionary)
				assert.Equal(t, tt.matches, rsp.Matches)
			}
		})
	}
}

func TestSearchHugeDistance(t *testing.T) {
	ts := newTestServer(t)
	huge := &searchResponse{}
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/search?dict=brands&text=paypa1&distance=9223372036854775807", huge))
	bounded := &searchResponse{}
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/search?dict=brands&text=paypa1&distance=6", bounded))
	assert.NotEmpty(t, huge.Matches)
	assert.Equal(t, bounded.Matches, huge.Matches)
}

func TestSearchBody(t *testing.T) {
	ts := newTestServer(t)
	body := `{"dictionary":"brands","text":"visit google","max_distance":0}`
	rsp, err := http.Post(ts.URL+"/api/search", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer rsp.Body.Close()
	require.Equal(t, http.StatusOK, rsp.StatusCode)
	out := &searchResponse{}
	require.NoError(t, json.NewDecoder(rsp.Body).Decode(out))
	assert.Equal(t, []automaton.Match{{Keyword: "google", Found: "google", Start: 6, End: 12}}, out.Matches)

	rsp2, err := http.Post(ts.URL+"/api/search", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	rsp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, rsp2.StatusCode)

	rsp3, err := http.Post(ts.URL+"/api/search", "application/json", strings.NewReader(`{"text":"x"}`))
	require.NoError(t, err)
	rsp3.Body.Close()
	assert.Equal(t, http.StatusBadRequest, rsp3.StatusCode)
}

func TestDictionariesAndDistance(t *testing.T) {
	ts := newTestServer(t)
	var infos []dictionaryInfo
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/dictionaries", &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "brands", infos[0].Name)
	assert.Equal(t, 2, infos[0].KeywordCount)
	assert.Equal(t, 1, infos[0].MaxDistance)

	dist := &distanceResponse{}
	require.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/api/distance?a=kitten&b=sitting", dist))
	assert.Equal(t, 3, dist.Distance)

	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/healthz", nil))
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/nope", nil))
}

func TestNewRequiresSet(t *testing.T) {
	_, err := New(WithBind(":0"))
	assert.Error(t, err)
}

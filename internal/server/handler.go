package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/schema"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/fuzzyac/internal/automaton"
	"github.com/xxxsen/fuzzyac/internal/levenshtein"
)

var errDictNotFound = errors.New("dictionary not found")

type searchQuery struct {
	Dict     string `schema:"dict,required"`
	Text     string `schema:"text"`
	Distance *int   `schema:"distance"`
}

type searchRequest struct {
	Dictionary  string `json:"dictionary"`
	Text        string `json:"text"`
	MaxDistance *int   `json:"max_distance"`
}

type searchResponse struct {
	Dictionary string            `json:"dictionary"`
	Matches    []automaton.Match `json:"matches"`
}

type dictionaryInfo struct {
	Name         string `json:"name"`
	KeywordCount int    `json:"keyword_count"`
	MaxDistance  int    `json:"max_distance"`
	LoadedAt     int64  `json:"loaded_at"`
}

type distanceQuery struct {
	A string `schema:"a"`
	B string `schema:"b"`
}

type distanceResponse struct {
	A        string `json:"a"`
	B        string `json:"b"`
	Distance int    `json:"distance"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func decodeQuery(out interface{}, in map[string][]string) error {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	if err := d.Decode(out, in); err != nil {
		return fmt.Errorf("%w: %w", automaton.ErrInvalidArgument, err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSearchQuery(w http.ResponseWriter, r *http.Request) {
	q := &searchQuery{}
	if err := decodeQuery(q, r.URL.Query()); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.search(w, r, q.Dict, q.Text, q.Distance)
}

func (s *Server) handleSearchBody(w http.ResponseWriter, r *http.Request) {
	req := &searchRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request body: %w", err))
		return
	}
	if req.Dictionary == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("dictionary is required"))
		return
	}
	s.search(w, r, req.Dictionary, req.Text, req.MaxDistance)
}

func (s *Server) search(w http.ResponseWriter, r *http.Request, name string, text string, distance *int) {
	dict, ok := s.c.set.Get(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("%w: %s", errDictNotFound, name))
		return
	}
	var opts []automaton.SearchOption
	if distance != nil {
		opts = append(opts, automaton.WithMaxDistance(*distance))
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.c.timeout)
	defer cancel()
	ms, err := dict.Search(ctx, text, opts...)
	if err != nil {
		logutil.GetLogger(ctx).Debug("search failed", zap.String("dict", name), zap.Error(err))
		writeError(w, statusOf(err), err)
		return
	}
	if ms == nil {
		ms = []automaton.Match{}
	}
	writeJSON(w, http.StatusOK, &searchResponse{Dictionary: name, Matches: ms})
}

func (s *Server) handleDictionaries(w http.ResponseWriter, r *http.Request) {
	out := make([]dictionaryInfo, 0, s.c.set.Len())
	for _, d := range s.c.set.List() {
		ac := d.Automaton()
		out = append(out, dictionaryInfo{
			Name:         d.Name(),
			KeywordCount: len(ac.Keywords()),
			MaxDistance:  ac.DefaultMaxDistance(),
			LoadedAt:     d.LoadedAt().UnixMilli(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDistance(w http.ResponseWriter, r *http.Request) {
	q := &distanceQuery{}
	if err := decodeQuery(q, r.URL.Query()); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, &distanceResponse{A: q.A, B: q.B, Distance: levenshtein.Distance(q.A, q.B)})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, automaton.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, errDictNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, &errorResponse{Error: err.Error()})
}

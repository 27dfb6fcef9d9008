// Package devserver is an in-memory implementation of the shopping list sync API for local
// development and tests. It is not meant to be a production server.
package devserver

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"

	"shop-cli/internal/logging"
	"shop-cli/internal/model"
	"shop-cli/internal/reconcile"

	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const maxBody = 1 << 20

type listState struct {
	snap       model.Snapshot
	categories []model.CategoryDefinition
}

// Server keeps one snapshot and category set per list id. A fresh token is issued on every
// accepted sync.
type Server struct {
	mu    sync.Mutex
	lists map[string]*listState
	log   *logging.Logger

	newToken func() string
}

type Option func(*Server)

func WithLogger(l *logging.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l.WithComponent("devserver")
		}
	}
}

// WithTokens overrides token and change id generation.
func WithTokens(f func() string) Option {
	return func(s *Server) {
		if f != nil {
			s.newToken = f
		}
	}
}

func New(opts ...Option) *Server {
	s := &Server{
		lists:    map[string]*listState{},
		log:      logging.Discard(),
		newToken: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed replaces the stored state of a list. Missing token/change id are generated.
func (s *Server) Seed(snap model.Snapshot, categories []model.CategoryDefinition) model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Token == "" {
		snap.Token = s.newToken()
	}
	if snap.ChangeID == "" {
		snap.ChangeID = s.newToken()
	}
	if snap.Items == nil {
		snap.Items = []model.Item{}
	}
	s.lists[snap.ID] = &listState{snap: snap.Clone(), categories: model.CloneCategories(categories)}
	return snap.Clone()
}

// Snapshot returns the stored state of a list, if it exists.
func (s *Server) Snapshot(listID string) (model.Snapshot, []model.CategoryDefinition, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.lists[listID]
	if !ok {
		return model.Snapshot{}, nil, false
	}
	return st.snap.Clone(), model.CloneCategories(st.categories), true
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, req)
			s.log.Info("request", "method", req.Method, "path", req.URL.Path, "status", m.Code, "bytes", m.Written, "duration", m.Duration)
		})
	})
	r.Methods(http.MethodGet).Path("/api/{list}/sync").HandlerFunc(s.getSync)
	r.Methods(http.MethodPost).Path("/api/{list}/sync").HandlerFunc(s.postSync)
	return r
}

// state returns the list, creating an empty one on first use. Caller holds s.mu.
func (s *Server) state(listID string) *listState {
	st, ok := s.lists[listID]
	if !ok {
		st = &listState{
			snap: model.Snapshot{
				List:     model.List{ID: listID, Title: listID, Items: []model.Item{}},
				Token:    s.newToken(),
				ChangeID: s.newToken(),
			},
			categories: []model.CategoryDefinition{},
		}
		s.lists[listID] = st
	}
	return st
}

func (s *Server) getSync(w http.ResponseWriter, req *http.Request) {
	listID := mux.Vars(req)["list"]
	withCats := wantsCategories(req.URL.Query()["includeInResponse"])

	s.mu.Lock()
	st := s.state(listID)
	body := response(st, withCats)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, body)
}

func (s *Server) postSync(w http.ResponseWriter, req *http.Request) {
	listID := mux.Vars(req)["list"]

	raw, err := io.ReadAll(io.LimitReader(req.Body, maxBody))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}
	var sr reconcile.SyncRequest
	if err := json.Unmarshal(raw, &sr); err != nil {
		http.Error(w, "malformed sync request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if sr.PreviousSync.Token == "" {
		http.Error(w, "malformed sync request: previousSync.token missing", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	st := s.state(listID)
	if sr.PreviousSync.Token == st.snap.Token {
		st.snap.Items = cloneItems(sr.CurrentState.Items)
	} else {
		s.log.Info("stale sync, merging", "list", listID, "user", req.Header.Get("X-ShoppingList-Username"))
		st.snap.Items = Merge(sr.PreviousSync.Items, sr.CurrentState.Items, st.snap.Items)
	}
	if strings.TrimSpace(sr.CurrentState.Title) != "" {
		st.snap.Title = sr.CurrentState.Title
	}
	if sr.Categories != nil {
		st.categories = model.CloneCategories(*sr.Categories)
		if st.categories == nil {
			st.categories = []model.CategoryDefinition{}
		}
	}
	st.snap.Token = s.newToken()
	st.snap.ChangeID = s.newToken()
	body := response(st, wantsCategories(sr.IncludeInResponse))
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, body)
}

func wantsCategories(include []string) bool {
	for _, v := range include {
		for _, part := range strings.Split(v, ",") {
			if strings.TrimSpace(part) == reconcile.IncludeCategories {
				return true
			}
		}
	}
	return false
}

type wrapped struct {
	List       model.Snapshot             `json:"list"`
	Categories []model.CategoryDefinition `json:"categories"`
}

// response builds the reply under s.mu.
func response(st *listState, withCategories bool) any {
	if withCategories {
		return wrapped{List: st.snap.Clone(), Categories: model.CloneCategories(st.categories)}
	}
	return st.snap.Clone()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func cloneItems(items []model.Item) []model.Item {
	return model.List{Items: items}.Clone().Items
}

// Merge applies the client's edit (base -> mine) on top of the server's current items.
// Items are matched by id: the client's additions are appended in its order, its removals
// are dropped, and items it changed replace the server version.
func Merge(base, mine, server []model.Item) []model.Item {
	baseByID := make(map[string]model.Item, len(base))
	for _, it := range base {
		baseByID[it.ID] = it
	}
	mineByID := make(map[string]model.Item, len(mine))
	for _, it := range mine {
		mineByID[it.ID] = it
	}

	out := make([]model.Item, 0, len(server)+len(mine))
	seen := make(map[string]bool, len(server))
	for _, it := range server {
		seen[it.ID] = true
		_, inBase := baseByID[it.ID]
		m, inMine := mineByID[it.ID]
		switch {
		case inBase && !inMine:
			continue
		case inBase && inMine && changed(baseByID[it.ID], m):
			out = append(out, m)
		default:
			out = append(out, it)
		}
	}
	for _, it := range mine {
		if _, inBase := baseByID[it.ID]; inBase || seen[it.ID] {
			continue
		}
		out = append(out, it)
	}
	return cloneItems(out)
}

func changed(a, b model.Item) bool {
	ab, errA := json.Marshal(a)
	bb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return true
	}
	return string(ab) != string(bb)
}

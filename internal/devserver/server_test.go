package devserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"shop-cli/internal/model"
)

func seqTokens() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("tok-%d", n)
	}
}

func texts(items []model.Item) []string {
	out := []string{}
	for _, it := range items {
		out = append(out, it.DisplayText())
	}
	return out
}

func ft(id, text string) model.Item { return model.NewFreeText(id, text) }

func TestGetSync_ResponseShapes(t *testing.T) {
	t.Parallel()

	s := New(WithTokens(seqTokens()))
	s.Seed(model.Snapshot{List: model.List{ID: "Demo", Title: "Demo", Items: []model.Item{ft("i1", "eggs")}}},
		[]model.CategoryDefinition{{ID: "c1", Name: "Dairy", ShortName: "D", Color: "#ffffff"}})
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/Demo/sync?includeInResponse=categories")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var w map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&w); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := w["list"]; !ok {
		t.Fatalf("expected wrapped response; got keys %v", w)
	}
	if _, ok := w["categories"]; !ok {
		t.Fatalf("expected categories; got keys %v", w)
	}

	resp2, err := http.Get(srv.URL + "/api/Demo/sync")
	if err != nil {
		t.Fatalf("get flat: %v", err)
	}
	defer resp2.Body.Close()
	var snap model.Snapshot
	if err := json.NewDecoder(resp2.Body).Decode(&snap); err != nil {
		t.Fatalf("decode flat: %v", err)
	}
	if snap.Token != "tok-1" || len(snap.Items) != 1 {
		t.Fatalf("unexpected flat snapshot: %+v", snap)
	}
}

func TestGetSync_CreatesUnknownList(t *testing.T) {
	t.Parallel()

	s := New()
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/Fresh/sync")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	snap, cats, ok := s.Snapshot("Fresh")
	if !ok || snap.Title != "Fresh" || len(snap.Items) != 0 || len(cats) != 0 || snap.Token == "" {
		t.Fatalf("unexpected new list: %+v %+v %v", snap, cats, ok)
	}
}

func TestPostSync_RejectsMalformedBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(New().Handler())
	defer srv.Close()

	for _, body := range []string{"{", `{"currentState":{"items":[]}}`} {
		resp, err := http.Post(srv.URL+"/api/Demo/sync", "application/json", bytes.NewBufferString(body))
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400; got %d", body, resp.StatusCode)
		}
	}
}

func TestMerge(t *testing.T) {
	t.Parallel()

	base := []model.Item{ft("a", "A"), ft("b", "B"), ft("c", "C")}
	// Client removed b, edited c, added d.
	mine := []model.Item{ft("a", "A"), ft("c", "C2"), ft("d", "D")}
	// Meanwhile the server gained e and lost a.
	server := []model.Item{ft("b", "B"), ft("c", "C"), ft("e", "E")}

	got := texts(Merge(base, mine, server))
	want := []string{"C2", "E", "D"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Merge = %v; want %v", got, want)
	}

	// Unchanged client items never overwrite newer server versions.
	got = texts(Merge([]model.Item{ft("a", "A")}, []model.Item{ft("a", "A")}, []model.Item{ft("a", "A-server")}))
	if !reflect.DeepEqual(got, []string{"A-server"}) {
		t.Fatalf("Merge kept stale client item: %v", got)
	}
}

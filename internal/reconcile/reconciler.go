package reconcile

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"shop-cli/internal/model"
)

var ErrNothingToCommit = errors.New("nothing to commit")

// Transport sends requests relative to the list's API base ({server}/api/{list}).
type Transport interface {
	Get(ctx context.Context, path string, query url.Values) ([]byte, error)
	Post(ctx context.Context, path string, body any) ([]byte, error)
}

const syncPath = "sync"

// Reconciler runs one fetch-mutate-commit cycle against a Transport.
type Reconciler struct {
	t    Transport
	opts []Option
}

func New(t Transport, opts ...Option) *Reconciler {
	return &Reconciler{t: t, opts: opts}
}

// BuildRequest turns a mutated state into a sync request. The full current list is sent;
// categories are only sent (and requested back) when a category command ran.
func (s *LocalState) BuildRequest() SyncRequest {
	req := SyncRequest{
		PreviousSync: s.Previous.Clone(),
		CurrentState: CurrentState{
			Title: s.Current.Title,
			Items: s.Current.Clone().Items,
		},
		IncludeInResponse: []string{},
	}
	if s.categoriesChanged {
		defs := model.CloneCategories(s.Categories)
		if defs == nil {
			defs = []model.CategoryDefinition{}
		}
		req.Categories = &defs
		req.IncludeInResponse = append(req.IncludeInResponse, IncludeCategories)
	}
	return req
}

// FromResponse builds the committed state from a server reply. Categories absent from the
// reply are carried over from prev unchanged.
func FromResponse(resp SyncResponse, prev *LocalState) *LocalState {
	var cats []model.CategoryDefinition
	var opts []Option
	if prev != nil {
		cats = prev.Categories
		opts = prev.options()
	}
	if resp.HasCategories {
		cats = resp.Categories
	}
	s := NewLocalState(resp.Snapshot, cats, opts...)
	s.phase = PhaseCommitted
	return s
}

func (r *Reconciler) Fetch(ctx context.Context) (*LocalState, error) {
	q := url.Values{}
	q.Set("includeInResponse", IncludeCategories)
	b, err := r.t.Get(ctx, syncPath, q)
	if err != nil {
		return nil, err
	}
	resp, err := DecodeResponse(b)
	if err != nil {
		return nil, err
	}
	return NewLocalState(resp.Snapshot, resp.Categories, r.opts...), nil
}

func (r *Reconciler) Commit(ctx context.Context, s *LocalState) (*LocalState, error) {
	if s.phase != PhaseMutated {
		return nil, fmt.Errorf("%w (phase %s)", ErrNothingToCommit, s.phase)
	}
	b, err := r.t.Post(ctx, syncPath, s.BuildRequest())
	if err != nil {
		return nil, err
	}
	resp, err := DecodeResponse(b)
	if err != nil {
		return nil, err
	}
	return FromResponse(resp, s), nil
}

// Apply fetches the list, runs mutate on it and commits the result. A mutation error aborts
// before anything is sent.
func (r *Reconciler) Apply(ctx context.Context, mutate func(*LocalState) error) (*LocalState, error) {
	s, err := r.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if err := mutate(s); err != nil {
		return nil, err
	}
	return r.Commit(ctx, s)
}

package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"shop-cli/internal/category"
	"shop-cli/internal/model"

	"github.com/google/uuid"
)

type Phase int

const (
	PhaseFetched Phase = iota
	PhaseMutated
	PhaseCommitted
)

func (p Phase) String() string {
	switch p {
	case PhaseFetched:
		return "fetched"
	case PhaseMutated:
		return "mutated"
	case PhaseCommitted:
		return "committed"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// IDFunc returns a fresh unique identifier for new items and categories.
type IDFunc func() string

func newUUID() string { return uuid.NewString() }

type Option func(*LocalState)

func WithIDFunc(f IDFunc) Option {
	return func(s *LocalState) {
		if f != nil {
			s.newID = f
		}
	}
}

func WithRand(r category.Rand) Option {
	return func(s *LocalState) {
		if r != nil {
			s.rand = r
		}
	}
}

// LocalState pairs the last acknowledged snapshot with the working copies local commands edit.
// The network layer never writes to Current.
type LocalState struct {
	Previous   model.Snapshot
	Current    model.List
	Categories []model.CategoryDefinition

	phase             Phase
	categoriesChanged bool

	newID IDFunc
	rand  category.Rand
}

func NewLocalState(snap model.Snapshot, categories []model.CategoryDefinition, opts ...Option) *LocalState {
	s := &LocalState{
		Previous:   snap.Clone(),
		Current:    snap.List.Clone(),
		Categories: model.CloneCategories(categories),
		phase:      PhaseFetched,
		newID:      newUUID,
		rand:       category.DefaultRand(),
	}
	if s.Categories == nil {
		s.Categories = []model.CategoryDefinition{}
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *LocalState) Phase() Phase { return s.phase }

// CategoriesChanged reports whether a category command ran against this state.
func (s *LocalState) CategoriesChanged() bool { return s.categoriesChanged }

func (s *LocalState) options() []Option {
	return []Option{WithIDFunc(s.newID), WithRand(s.rand)}
}

func (s *LocalState) mutate(fn func() error) error {
	if s.phase != PhaseFetched {
		return fmt.Errorf("%w (phase %s)", ErrAlreadyMutated, s.phase)
	}
	if err := fn(); err != nil {
		return err
	}
	s.phase = PhaseMutated
	return nil
}

func checkIndex(target string, index, n int) error {
	if index < 0 || index >= n {
		return &IndexError{Target: target, Index: index, Len: n}
	}
	return nil
}

// AddItems appends one free-text item per text. All items land in a single mutation.
func (s *LocalState) AddItems(texts ...string) error {
	return s.mutate(func() error {
		if len(texts) == 0 {
			return errors.New("add: no items")
		}
		items := make([]model.Item, 0, len(texts))
		for _, t := range texts {
			if strings.TrimSpace(t) == "" {
				return errors.New("add: empty item")
			}
			items = append(items, model.NewFreeText(s.newID(), t))
		}
		s.Current.Items = append(s.Current.Items, items...)
		return nil
	})
}

// EditItem replaces the item at index with text verbatim, keeping its id. The item's amount
// and category are dropped. Blank text is rejected.
func (s *LocalState) EditItem(index int, text string) error {
	return s.mutate(func() error {
		if err := checkIndex("item", index, len(s.Current.Items)); err != nil {
			return err
		}
		if strings.TrimSpace(text) == "" {
			return errors.New("edit: empty item")
		}
		s.Current.Items[index] = s.Current.Items[index].Edit(text)
		return nil
	})
}

func (s *LocalState) RemoveItem(index int) error {
	return s.mutate(func() error {
		if err := checkIndex("item", index, len(s.Current.Items)); err != nil {
			return err
		}
		s.Current.Items = append(s.Current.Items[:index:index], s.Current.Items[index+1:]...)
		return nil
	})
}

func (s *LocalState) AddCategory(name string, spec category.Spec) (model.CategoryDefinition, error) {
	var def model.CategoryDefinition
	err := s.mutate(func() error {
		d, err := category.New(s.newID(), name, spec, s.rand)
		if err != nil {
			return err
		}
		def = d
		s.Categories = append(s.Categories, d)
		s.categoriesChanged = true
		return nil
	})
	return def, err
}

func (s *LocalState) EditCategory(index int, p category.Patch) error {
	return s.mutate(func() error {
		if err := checkIndex("category", index, len(s.Categories)); err != nil {
			return err
		}
		if p.Empty() {
			return errors.New("category edit: nothing to change")
		}
		d, err := category.Apply(s.Categories[index], p)
		if err != nil {
			return err
		}
		s.Categories[index] = d
		s.categoriesChanged = true
		return nil
	})
}

// RemoveCategory drops the definition only; items referencing it keep the reference and
// render without a category.
func (s *LocalState) RemoveCategory(index int) error {
	return s.mutate(func() error {
		if err := checkIndex("category", index, len(s.Categories)); err != nil {
			return err
		}
		s.Categories = append(s.Categories[:index:index], s.Categories[index+1:]...)
		s.categoriesChanged = true
		return nil
	})
}

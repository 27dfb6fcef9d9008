package cli

import (
	"strconv"

	"shop-cli/internal/format"
	"shop-cli/internal/model"
	"shop-cli/internal/reconcile"
	"shop-cli/internal/render"

	"github.com/spf13/cobra"
)

type itemView struct {
	Index    int           `json:"index"`
	ID       string        `json:"id"`
	Kind     string        `json:"kind"`
	Text     string        `json:"text"`
	Name     string        `json:"name,omitempty"`
	Amount   *model.Amount `json:"amount,omitempty"`
	Category string        `json:"category,omitempty"`
}

type listView struct {
	ID         string                     `json:"id"`
	Title      string                     `json:"title"`
	Token      string                     `json:"token"`
	ChangeID   string                     `json:"changeId"`
	Items      []itemView                 `json:"items"`
	Categories []model.CategoryDefinition `json:"categories"`
}

func newListView(s *reconcile.LocalState) listView {
	v := listView{
		ID:         s.Current.ID,
		Title:      s.Current.Title,
		Token:      s.Previous.Token,
		ChangeID:   s.Previous.ChangeID,
		Items:      make([]itemView, 0, len(s.Current.Items)),
		Categories: s.Categories,
	}
	for i, it := range s.Current.Items {
		iv := itemView{
			Index: i + 1,
			ID:    it.ID,
			Kind:  it.Kind.String(),
			Text:  it.DisplayText(),
			Name:  it.Name,
		}
		if it.Amount != nil {
			a := *it.Amount
			iv.Amount = &a
		}
		// Only resolved categories are reported; dangling references are dropped.
		if def, ok := model.FindCategory(s.Categories, it.CategoryID()); ok {
			iv.Category = def.Name
		}
		v.Items = append(v.Items, iv)
	}
	return v
}

type categoryView struct {
	Index int `json:"index"`
	model.CategoryDefinition
}

func newCategoryViews(defs []model.CategoryDefinition) []categoryView {
	out := make([]categoryView, 0, len(defs))
	for i, d := range defs {
		out = append(out, categoryView{Index: i + 1, CategoryDefinition: d})
	}
	return out
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.Pretty)
}

func (app *App) renderOptions(cmd *cobra.Command) render.Options {
	// Already validated in setup.
	p, _ := render.ProfileFor(cmd.OutOrStdout(), app.Color)
	return render.Options{Profile: p, MaxWidth: app.Width}
}

func writeList(cmd *cobra.Command, app *App, s *reconcile.LocalState) error {
	if app.Format == format.Text {
		return render.List(cmd.OutOrStdout(), s, app.renderOptions(cmd))
	}
	return writeOut(cmd, app, map[string]any{"data": newListView(s)})
}

func writeCategories(cmd *cobra.Command, app *App, defs []model.CategoryDefinition) error {
	if app.Format == format.Text {
		return render.Categories(cmd.OutOrStdout(), defs, app.renderOptions(cmd))
	}
	return writeOut(cmd, app, map[string]any{"data": newCategoryViews(defs)})
}

type usageError struct {
	msg string
}

func (e usageError) Error() string { return e.msg }

// parseIndex turns a 1-based index argument into a 0-based index. Values below 1 are
// rejected here, before anything is fetched.
func parseIndex(target, arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, usageError{msg: target + " index must be a number: " + strconv.Quote(arg)}
	}
	if n < 1 {
		return 0, &reconcile.IndexError{Target: target, Index: n - 1, Len: -1}
	}
	return n - 1, nil
}

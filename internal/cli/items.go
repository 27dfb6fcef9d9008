package cli

import (
	"strings"

	"shop-cli/internal/reconcile"

	"github.com/spf13/cobra"
)

func runPrint(cmd *cobra.Command, app *App) error {
	r, err := app.reconciler()
	if err != nil {
		return err
	}
	s, err := r.Fetch(cmd.Context())
	if err != nil {
		return err
	}
	return writeList(cmd, app, s)
}

// commit runs one fetch-mutate-commit cycle.
func commit(cmd *cobra.Command, app *App, mutate func(*reconcile.LocalState) error) (*reconcile.LocalState, error) {
	r, err := app.reconciler()
	if err != nil {
		return nil, err
	}
	s, err := r.Apply(cmd.Context(), mutate)
	if err != nil {
		return nil, err
	}
	app.log.Debug("committed", "token", s.Previous.Token, "changeId", s.Previous.ChangeID, "items", len(s.Current.Items))
	return s, nil
}

func apply(cmd *cobra.Command, app *App, mutate func(*reconcile.LocalState) error) error {
	s, err := commit(cmd, app, mutate)
	if err != nil {
		return err
	}
	return writeList(cmd, app, s)
}

func newListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"print", "list"},
		Short:   "Print the shopping list",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrint(cmd, app)
		},
	}
}

func newAddCmd(app *App) *cobra.Command {
	var each bool

	cmd := &cobra.Command{
		Use:   "add <item...>",
		Short: "Add an item to the list",
		Long: strings.TrimSpace(`
Add an item to the list.

All words are joined into a single item ("shop add 2 l milk" adds "2 l milk").
With --each every argument becomes its own item; all of them are committed together.
`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			texts := []string{strings.Join(args, " ")}
			if each {
				texts = args
			}
			return apply(cmd, app, func(s *reconcile.LocalState) error {
				return s.AddItems(texts...)
			})
		},
	}

	cmd.Flags().BoolVar(&each, "each", false, "Add one item per argument")

	return cmd
}

func newRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <index>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove an item from the list (1-based index as shown by 'shop ls')",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseIndex("item", args[0])
			if err != nil {
				return err
			}
			return apply(cmd, app, func(s *reconcile.LocalState) error {
				return s.RemoveItem(idx)
			})
		},
	}
}

func newEditCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <index> <text...>",
		Short: "Replace the text of an item, keeping its identity",
		Long: strings.TrimSpace(`
Replace the text of an item, keeping its identity.

The edited item becomes plain text: its amount and category are dropped until the
server parses it again.
`),
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseIndex("item", args[0])
			if err != nil {
				return err
			}
			text := strings.Join(args[1:], " ")
			return apply(cmd, app, func(s *reconcile.LocalState) error {
				return s.EditItem(idx, text)
			})
		},
	}
}

package cli

import (
	"errors"
	"strings"

	"shop-cli/internal/category"
	"shop-cli/internal/reconcile"

	"github.com/spf13/cobra"
)

func newCategoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"categories", "cat"},
		Short:   "Manage the list's category definitions",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCategoryList(cmd, app)
		},
	}

	cmd.AddCommand(newCategoryListCmd(app))
	cmd.AddCommand(newCategoryAddCmd(app))
	cmd.AddCommand(newCategoryEditCmd(app))
	cmd.AddCommand(newCategoryRemoveCmd(app))

	return cmd
}

func runCategoryList(cmd *cobra.Command, app *App) error {
	r, err := app.reconciler()
	if err != nil {
		return err
	}
	s, err := r.Fetch(cmd.Context())
	if err != nil {
		return err
	}
	return writeCategories(cmd, app, s.Categories)
}

func applyCategories(cmd *cobra.Command, app *App, mutate func(*reconcile.LocalState) error) error {
	s, err := commit(cmd, app, mutate)
	if err != nil {
		return err
	}
	return writeCategories(cmd, app, s.Categories)
}

func newCategoryListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List category definitions",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCategoryList(cmd, app)
		},
	}
}

func newCategoryAddCmd(app *App) *cobra.Command {
	var (
		short     string
		color     string
		lightText bool
	)

	cmd := &cobra.Command{
		Use:   "add <name...>",
		Short: "Define a new category",
		Long: strings.TrimSpace(`
Define a new category.

The short name defaults to the upper-case letters of the name (or its first three
letters), and the colour to a random #rrggbb.
`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			spec := category.Spec{ShortName: short, Color: color, LightText: lightText}
			return applyCategories(cmd, app, func(s *reconcile.LocalState) error {
				def, err := s.AddCategory(name, spec)
				if err != nil {
					return err
				}
				app.log.Debug("category added", "id", def.ID, "shortName", def.ShortName, "color", def.Color)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&short, "short", "", "Short name shown in the list (default: derived from the name)")
	cmd.Flags().StringVar(&color, "color", "", "Background colour as #rrggbb (default: random)")
	cmd.Flags().BoolVar(&lightText, "light-text", false, "Render the marker with white text")

	return cmd
}

func newCategoryEditCmd(app *App) *cobra.Command {
	var (
		name      string
		short     string
		color     string
		lightText bool
	)

	cmd := &cobra.Command{
		Use:   "edit <index>",
		Short: "Change a category definition (1-based index as shown by 'shop category list')",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseIndex("category", args[0])
			if err != nil {
				return err
			}

			var p category.Patch
			f := cmd.Flags()
			if f.Changed("name") {
				p.Name = &name
			}
			if f.Changed("short") {
				p.ShortName = &short
			}
			if f.Changed("color") {
				p.Color = &color
			}
			if f.Changed("light-text") {
				p.LightText = &lightText
			}
			if p.Empty() {
				return errors.New("nothing to change (use --name, --short, --color or --light-text)")
			}

			return applyCategories(cmd, app, func(s *reconcile.LocalState) error {
				return s.EditCategory(idx, p)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&short, "short", "", "New short name (empty: derive from the name)")
	cmd.Flags().StringVar(&color, "color", "", "New background colour as #rrggbb")
	cmd.Flags().BoolVar(&lightText, "light-text", false, "Render the marker with white text (--light-text=false for black)")

	return cmd
}

func newCategoryRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <index>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove a category definition; items keep their reference but render without it",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := parseIndex("category", args[0])
			if err != nil {
				return err
			}
			return applyCategories(cmd, app, func(s *reconcile.LocalState) error {
				return s.RemoveCategory(idx)
			})
		},
	}
}

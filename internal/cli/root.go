package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"shop-cli/internal/category"
	"shop-cli/internal/client"
	"shop-cli/internal/config"
	"shop-cli/internal/format"
	"shop-cli/internal/logging"
	"shop-cli/internal/reconcile"
	"shop-cli/internal/render"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// annotNoConfig marks commands that must work even when the configuration is broken.
const annotNoConfig = "shop/no-config"

type App struct {
	EnvFile string
	Format  string
	Pretty  bool
	Color   string
	Width   int
	Verbose bool

	cfg config.Config
	log *logging.Logger

	// Test seams; nil means the real implementation.
	newID reconcile.IDFunc
	rand  category.Rand
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{})
}

func newRootCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "shop",
		Short:        "Interact with a shared shopping list",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Show the list
  shop

  # Add, edit and remove items (indexes are 1-based, as shown by 'shop ls')
  shop add 2 l milk
  shop edit 1 oat milk
  shop rm 3

  # Work on another list/server
  shop --server http://localhost:4000 --list Family ls
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => print the list.
			return runPrint(cmd, app)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.setup(cmd)
	}

	pf := cmd.PersistentFlags()
	pf.StringP("server", "s", "", "Server where the shopping list is managed (env SHOP_SERVER)")
	pf.StringP("list", "l", "", "Name of the shopping list (env SHOP_LIST)")
	pf.StringP("proxy", "p", "", "Proxy server URL (env SHOP_PROXY)")
	pf.StringP("username", "u", "", "Username sent to the server (env SHOP_USERNAME)")
	pf.StringVar(&app.EnvFile, "env-file", ".env", "Read environment overrides from this file if it exists")
	pf.StringVar(&app.Format, "format", envOr("SHOP_FORMAT", format.Text), "Output format (text|json|edn)")
	pf.BoolVar(&app.Pretty, "pretty", false, "Pretty-print json/edn output")
	pf.StringVar(&app.Color, "ansi", envOr("SHOP_ANSI", render.ColorAuto), "Colorize text output (auto|always|never)")
	pf.IntVar(&app.Width, "width", 0, "Truncate text output lines to this many columns (0 = no limit)")
	pf.BoolVarP(&app.Verbose, "verbose", "v", false, "Log requests to stderr")

	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newRemoveCmd(app))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newCategoryCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

// setup resolves configuration once per invocation; commands read it from app.cfg.
func (app *App) setup(cmd *cobra.Command) error {
	level := slog.LevelWarn
	if app.Verbose {
		level = slog.LevelDebug
	}
	app.log = logging.New(logging.Config{Level: level, Component: "cli", Writer: cmd.ErrOrStderr()})

	app.Format = strings.ToLower(strings.TrimSpace(app.Format))
	if !format.Valid(app.Format) {
		return fmt.Errorf("unknown format: %q (want text|json|edn)", app.Format)
	}
	if _, err := render.ProfileFor(cmd.OutOrStdout(), app.Color); err != nil {
		return err
	}
	if app.Width < 0 {
		return fmt.Errorf("invalid width: %d", app.Width)
	}

	if cmd.Annotations[annotNoConfig] == "true" {
		return nil
	}
	if err := config.LoadDotEnv(app.EnvFile, cmd.Flags().Changed("env-file")); err != nil {
		return err
	}
	cfg, err := config.Resolve(configOverrides(cmd.Flags()))
	if err != nil {
		return err
	}
	app.cfg = cfg
	app.log.Debug("config resolved", "server", cfg.Server, "list", cfg.List, "proxy", cfg.Proxy != "")
	return nil
}

func configOverrides(fs *pflag.FlagSet) config.Overrides {
	get := func(name string) string {
		v, err := fs.GetString(name)
		if err != nil {
			return ""
		}
		return v
	}
	return config.Overrides{
		Server:   get("server"),
		List:     get("list"),
		Proxy:    get("proxy"),
		Username: get("username"),
	}
}

func (app *App) reconciler() (*reconcile.Reconciler, error) {
	c, err := client.New(app.cfg, client.WithLogger(app.log))
	if err != nil {
		return nil, err
	}
	return reconcile.New(c, reconcile.WithIDFunc(app.newID), reconcile.WithRand(app.rand)), nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

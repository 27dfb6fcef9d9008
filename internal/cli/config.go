package cli

import (
	"fmt"

	"shop-cli/internal/config"
	"shop-cli/internal/format"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or persist the effective configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration (defaults < file < env < flags)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Format == format.Text {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "server:   %s\n", app.cfg.Server)
				fmt.Fprintf(out, "list:     %s\n", app.cfg.List)
				fmt.Fprintf(out, "proxy:    %s\n", orNone(app.cfg.Proxy))
				fmt.Fprintf(out, "username: %s\n", orNone(app.cfg.Username))
				fmt.Fprintf(out, "endpoint: %s/sync\n", app.cfg.ListURL())
				return nil
			}
			return writeOut(cmd, app, map[string]any{"data": app.cfg})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "save",
		Short: "Write the effective configuration to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Save(app.cfg)
			if err != nil {
				return err
			}
			app.log.Info("config saved", "path", path)
			if app.Format == format.Text {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", path)
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"path": path, "config": app.cfg}})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:         "path",
		Short:       "Print the config file location",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotNoConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Path()
			if err != nil {
				return err
			}
			if app.Format == format.Text {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), path)
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"path": path}})
		},
	})

	return cmd
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

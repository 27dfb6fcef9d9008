package cli

import (
	"fmt"
	"strings"

	"shop-cli/internal/docs"
	"shop-cli/internal/format"

	"github.com/spf13/cobra"
)

func newDocsCmd(app *App) *cobra.Command {
	var (
		raw   bool
		style string
	)

	cmd := &cobra.Command{
		Use:         "docs [topic]",
		Short:       "Show documentation topics (sync protocol, categories, config)",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{annotNoConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				topics := docs.Topics()
				if app.Format == format.Text {
					_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(topics, "\n"))
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"topics": topics}})
			}

			topic := args[0]
			body, ok := docs.Get(topic)
			if !ok {
				return fmt.Errorf("unknown docs topic: %q (run `shop docs` to list topics)", topic)
			}

			if raw {
				_, err := fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			}
			if app.Format != format.Text {
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"topic": topic, "markdown": body}})
			}

			width := app.Width
			if width == 0 {
				width = 80
			}
			out, err := docs.Render(body, style, width)
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), out)
			return err
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print raw markdown")
	cmd.Flags().StringVar(&style, "style", "notty", "glamour style (notty|ascii|dark|light)")

	return cmd
}

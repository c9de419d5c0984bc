package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/basket/internal/prefs"
	"github.com/mesh-intelligence/basket/pkg/types"
)

func newThemeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or toggle the light/dark theme preference",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the current theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStorage(func(storage types.Storage) error {
				fmt.Fprintln(out(cmd), prefs.Theme(storage))
				return nil
			})
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle",
		Short: "Switch between light and dark",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStorage(func(storage types.Storage) error {
				theme, err := prefs.ToggleTheme(storage)
				if err != nil {
					return sysError("%w", err)
				}
				fmt.Fprintln(out(cmd), theme)
				return nil
			})
		},
	}

	cmd.AddCommand(show, toggle)
	return cmd
}

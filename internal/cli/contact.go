package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/basket/internal/contact"
	"github.com/mesh-intelligence/basket/pkg/types"
)

func newContactCmd(a *app) *cobra.Command {
	var form contact.Form
	cmd := &cobra.Command{
		Use:     "contact",
		Short:   "Send a message through the contact form",
		Example: `  basket contact --name Ada --email ada@example.com --message "Where is my order?"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			v := contact.Validator{MinMessageLength: a.cfg.GetInt(cfgKeyContactMinLength)}
			return a.withStorage(func(storage types.Storage) error {
				res, err := v.Submit(storage, form)
				if errors.Is(err, types.ErrInvalidForm) {
					if a.jsonMode {
						_ = printJSON(out(cmd), res)
					} else {
						for _, field := range []string{contact.FieldName, contact.FieldEmail, contact.FieldMessage} {
							if msg, ok := res[field]; ok {
								fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", field, msg)
							}
						}
					}
					return userError("%w", err)
				}
				if err != nil {
					return sysError("%w", err)
				}
				fmt.Fprintln(out(cmd), "Thanks! Your message has been sent.")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&form.Name, "name", "", "your name")
	cmd.Flags().StringVar(&form.Email, "email", "", "your email address")
	cmd.Flags().StringVar(&form.Message, "message", "", "your message")
	return cmd
}

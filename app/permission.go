package app

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/PontoAdmin/ponto-admin/internal/daemon"
	"github.com/PontoAdmin/ponto-admin/internal/permission"
)

func init() { //nolint: gochecknoinits
	permissionCmd.AddCommand(permissionCheckCmd, permissionListCmd)
	rootCmd.AddCommand(permissionCmd)
}

var (
	permissionCmd = &cobra.Command{
		Use:   "permission",
		Short: "Inspect user permissions",
	}

	permissionCheckCmd = &cobra.Command{
		Use:     "check <user-id> <module.action>",
		Short:   "Report whether a user holds a permission",
		Args:    cobra.ExactArgs(2), //nolint:mnd
		PreRunE: readConfig,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, perm := args[0], args[1]
			if !permission.Known(perm) {
				return errors.Errorf("unknown permission %q", perm)
			}

			db, err := daemon.Open(&cfg)
			if err != nil {
				return err
			}

			guard := permission.NewGuard(permission.NewAccountResolver(db, permission.NewStore(db)))
			allowed := guard.Allowed(cmd.Context(), userID, perm)

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %t\n", userID, perm, allowed)

			return err
		},
	}

	permissionListCmd = &cobra.Command{
		Use:   "list",
		Short: "List every permission of the schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, p := range permission.All() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), p); err != nil {
					return err
				}
			}

			return nil
		},
	}
)

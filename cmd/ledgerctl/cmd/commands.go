package cmd

import (
	"errors"
	"fmt"

	"wallet_ledger/internal/db"

	"github.com/spf13/cobra"
)

func newMigrateCmd(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the schema and seed default categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gdb, err := deps.Connect(cmd.Context())
			if err != nil {
				return err
			}
			if err := db.Migrate(gdb); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migration completed")
			return nil
		},
	}
}

func newResolveCmd(deps Deps) *cobra.Command {
	var phone string
	c := &cobra.Command{
		Use:   "resolve",
		Short: "Print the user key a phone resolves to",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := deps.service(cmd.Context())
			if err != nil {
				return err
			}
			id, err := svc.ResolveIdentity(cmd.Context(), phone)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %d\n", id)
			return nil
		},
	}
	c.Flags().StringVar(&phone, "phone", "", "phone in any accepted form (required)")
	_ = c.MarkFlagRequired("phone")
	return c
}

func newBackfillCmd(deps Deps) *cobra.Command {
	var phone string
	c := &cobra.Command{
		Use:   "backfill",
		Short: "Attach wallets to a user's transactions recorded before wallets existed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := deps.service(cmd.Context())
			if err != nil {
				return err
			}
			id, err := svc.ResolveExactIdentity(cmd.Context(), phone) // Never act on a look-alike number
			if err != nil {
				return err
			}
			n, err := svc.BackfillWallets(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %d: %d transactions updated\n", id, n)
			return nil
		},
	}
	c.Flags().StringVar(&phone, "phone", "", "phone in any accepted form (required)")
	_ = c.MarkFlagRequired("phone")
	return c
}

func newEraseCmd(deps Deps) *cobra.Command {
	var (
		phone string
		yes   bool
	)
	c := &cobra.Command{
		Use:   "erase",
		Short: "Delete every record of a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("refusing to erase without --yes")
			}
			svc, err := deps.service(cmd.Context())
			if err != nil {
				return err
			}
			id, err := svc.ResolveExactIdentity(cmd.Context(), phone) // Never act on a look-alike number
			if err != nil {
				return err
			}
			if err := svc.EraseAllUserData(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "user %d erased\n", id)
			return nil
		},
	}
	c.Flags().StringVar(&phone, "phone", "", "phone in any accepted form (required)")
	c.Flags().BoolVar(&yes, "yes", false, "confirm the erasure")
	_ = c.MarkFlagRequired("phone")
	return c
}

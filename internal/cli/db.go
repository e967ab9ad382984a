package cli

import (
    "fmt"

    "github.com/spf13/cobra"

    "linkguard/internal/adapters/storage"
    "linkguard/internal/services/threatintel"
)

func newMigrateCmd(a *app) *cobra.Command {
    return &cobra.Command{
        Use:   "migrate",
        Short: "Apply database migrations",
        Args:  cobra.NoArgs,
        RunE: func(cmd *cobra.Command, _ []string) error {
            store, err := storage.Open(cmd.Context(), a.cfg.Database)
            if err != nil {
                return err
            }
            defer store.Close()
            if err := store.Migrate(cmd.Context()); err != nil {
                return err
            }
            fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s)\n", a.cfg.Database.Driver)
            return nil
        },
    }
}

func newThreatsCmd(a *app) *cobra.Command {
    cmd := &cobra.Command{
        Use:   "threats",
        Short: "Manage the threat domain list",
    }
    cmd.AddCommand(&cobra.Command{
        Use:   "import FILE",
        Short: "Load a YAML threat feed into the database",
        Args:  cobra.ExactArgs(1),
        RunE: func(cmd *cobra.Command, args []string) error {
            store, err := storage.Open(cmd.Context(), a.cfg.Database)
            if err != nil {
                return err
            }
            defer store.Close()
            if err := store.Migrate(cmd.Context()); err != nil {
                return err
            }
            n, err := threatintel.New(store).Import(cmd.Context(), args[0])
            if err != nil {
                return err
            }
            fmt.Fprintf(cmd.OutOrStdout(), "imported %d threat domains\n", n)
            return nil
        },
    })
    return cmd
}

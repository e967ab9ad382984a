package cli

import (
    "fmt"
    "os"

    "github.com/spf13/cobra"

    "linkguard/internal/config"
)

var Version = "0.1.0"

type app struct {
    configPath string
    cfg        config.Config
}

// NewRootCmd builds the linkscan command tree.
func NewRootCmd() *cobra.Command {
    a := &app{}
    root := &cobra.Command{
        Use:           "linkscan",
        Short:         "Score URLs for phishing and spoofing signals",
        Long:          "linkscan scores URLs with the same rules as the linkguard server, manages its database schema, and imports threat feeds.",
        SilenceUsage:  true,
        SilenceErrors: true,
        PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
            cfg, err := config.Load(a.configPath)
            if err != nil {
                return err
            }
            a.cfg = cfg
            return nil
        },
    }
    root.PersistentFlags().StringVarP(&a.configPath, "config", "c", os.Getenv("LINKGUARD_CONFIG"), "path to YAML config file")

    root.AddCommand(newScanCmd(a))
    root.AddCommand(newMigrateCmd(a))
    root.AddCommand(newThreatsCmd(a))
    root.AddCommand(newVersionCmd())
    return root
}

func Execute() {
    if err := NewRootCmd().Execute(); err != nil {
        fmt.Fprintln(os.Stderr, "error:", err)
        os.Exit(1)
    }
}

func newVersionCmd() *cobra.Command {
    return &cobra.Command{
        Use:   "version",
        Short: "Print the linkscan version",
        PersistentPreRun: func(*cobra.Command, []string) {},
        Run: func(cmd *cobra.Command, _ []string) {
            fmt.Fprintf(cmd.OutOrStdout(), "linkscan %s\n", Version)
        },
    }
}

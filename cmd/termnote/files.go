package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func newExportCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export <file>",
		Short: "Write all tabs to a JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(g, nil)
			if err != nil {
				return err
			}
			defer s.Close()
			return report(cmd, s.nb.ExportTabs(args[0]))
		},
	}
}

func newImportCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Add the tabs from an exported document, skipping known commands",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(g, nil)
			if err != nil {
				return err
			}
			defer s.Close()
			return report(cmd, s.nb.ImportTabs(args[0]))
		},
	}
}

func newLockCmd(g *globalFlags, locked bool) *cobra.Command {
	use, short := "lock", "Block running commands"
	if !locked {
		use, short = "unlock", "Allow running commands"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(g, nil)
			if err != nil {
				return err
			}
			defer s.Close()
			return report(cmd, s.nb.SetLocked(locked))
		},
	}
}

func newResetCmd(g *globalFlags) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Restore the default tabs and clear favorites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("reset discards every tab and favorite; pass --yes to confirm")
			}
			s, err := open(g, nil)
			if err != nil {
				return err
			}
			defer s.Close()
			return report(cmd, s.nb.Reset())
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the reset")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "termnote %s\n", version)
			return err
		},
	}
}

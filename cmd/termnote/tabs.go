package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/termnote/internal/app"
	"github.com/five82/termnote/internal/notebook"
)

const maxListLabel = 48

func newListCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tabs",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(g, nil)
			if err != nil {
				return err
			}
			defer s.Close()

			tabs := s.nb.Tabs()
			width := 0
			for _, tab := range tabs {
				width = max(width, min(len([]rune(tab.Label)), maxListLabel))
			}
			out := cmd.OutOrStdout()
			for i, tab := range tabs {
				mark := " "
				if s.nb.IsFavorite(tab.ID) {
					mark = "*"
				}
				label := tab.Label
				if r := []rune(label); len(r) > maxListLabel {
					label = string(r[:maxListLabel-3]) + "..."
				}
				pad := strings.Repeat(" ", width-len([]rune(label)))
				if _, err := fmt.Fprintf(out, "%3d %s %s%s  %s\n", i+1, mark, label, pad, tab.ID); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newAddCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "add <command>...",
		Short: "Add a tab",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(g, nil)
			if err != nil {
				return err
			}
			defer s.Close()
			return report(cmd, s.nb.AddTab(strings.Join(args, " ")))
		},
	}
}

func newRenameCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <tab> <command>...",
		Short: "Change a tab's command",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(g, nil)
			if err != nil {
				return err
			}
			defer s.Close()
			id, err := resolveTab(s.nb, args[0])
			if err != nil {
				return err
			}
			return report(cmd, s.nb.RenameTab(id, strings.Join(args[1:], " ")))
		},
	}
}

func newDeleteCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <tab>",
		Aliases: []string{"rm"},
		Short:   "Delete a tab and its favorite",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(g, nil)
			if err != nil {
				return err
			}
			defer s.Close()
			id, err := resolveTab(s.nb, args[0])
			if err != nil {
				return err
			}
			return report(cmd, s.nb.DeleteTab(id))
		},
	}
}

func newCopyCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "copy <tab>",
		Short: "Copy a tab's command to the clipboard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(g, nil)
			if err != nil {
				return err
			}
			defer s.Close()
			id, err := resolveTab(s.nb, args[0])
			if err != nil {
				return err
			}
			return report(cmd, s.nb.CopyLabel(id))
		},
	}
}

func newRunCmd(g *globalFlags) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "run <tab>",
		Short: "Run a tab in a terminal and stream its output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(g, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer s.Close()
			id, err := resolveTab(s.nb, args[0])
			if err != nil {
				return err
			}
			return runAndWait(cmd.Context(), s.nb, s.nb.RunTab(id), timeout)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "stop waiting after this long (0 waits forever)")
	return cmd
}

// runAndWait asks the shell that started the command to exit once the
// command finishes, then waits for it.
func runAndWait(ctx context.Context, nb *app.Notebook, t app.Toast, timeout time.Duration) error {
	if t.Failed() {
		return fmt.Errorf("%s", t.Text)
	}
	terms := nb.Terminals()
	if terms == nil {
		return nil
	}
	term, ok := terms.Focused()
	if !ok {
		return nil
	}
	if err := term.SendText("exit", true); err != nil {
		return err
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return term.Wait(ctx)
}

// resolveTab accepts a tab id, a 1-based position from `list`, or an exact
// command label.
func resolveTab(nb *app.Notebook, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if _, ok := nb.Tab(ref); ok {
		return ref, nil
	}
	tabs := nb.Tabs()
	if n, err := strconv.Atoi(ref); err == nil {
		if n >= 1 && n <= len(tabs) {
			return tabs[n-1].ID, nil
		}
		return "", fmt.Errorf("no tab at position %d", n)
	}
	for _, tab := range tabs {
		if tab.Label == ref {
			return tab.ID, nil
		}
	}
	return "", fmt.Errorf("no tab matches %q: %w", ref, notebook.ErrNotFound)
}

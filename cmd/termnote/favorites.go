package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/termnote/internal/notebook"
)

func newFavCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "fav",
		Aliases: []string{"favorites"},
		Short:   "Manage favorites and their numbered slots",
	}
	cmd.AddCommand(newFavListCmd(g))
	cmd.AddCommand(newFavAddCmd(g))
	cmd.AddCommand(newFavRemoveCmd(g))
	cmd.AddCommand(newFavRunCmd(g))
	return cmd
}

func newFavListCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List favorites by slot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(g, nil)
			if err != nil {
				return err
			}
			defer s.Close()

			out := cmd.OutOrStdout()
			if !s.nb.HasFavorites() {
				_, err := fmt.Fprintln(out, "Favorites is empty")
				return err
			}
			for _, slot := range s.nb.Slots() {
				if !slot.Bound {
					continue
				}
				if _, err := fmt.Fprintf(out, "%d  %s  %s\n", slot.Index+1, slot.Label, slot.ID); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newFavAddCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "add <tab>",
		Short: "Pin a tab to the next free slot",
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
			return report(cmd, s.nb.AddFavorite(id))
		},
	}
}

func newFavRemoveCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <slot|tab>",
		Aliases: []string{"rm"},
		Short:   "Unpin a favorite",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(g, nil)
			if err != nil {
				return err
			}
			defer s.Close()
			id := args[0]
			if i, ok := parseSlot(args[0]); ok {
				slot := s.nb.Slots()[i]
				if !slot.Bound {
					return fmt.Errorf("favorite slot %d is empty", i+1)
				}
				id = slot.ID
			} else if resolved, err := resolveTab(s.nb, args[0]); err == nil {
				id = resolved
			}
			return report(cmd, s.nb.RemoveFavorite(id))
		},
	}
}

func newFavRunCmd(g *globalFlags) *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "run <slot>",
		Short: "Run the favorite in slot 1-5",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, ok := parseSlot(args[0])
			if !ok {
				return fmt.Errorf("slot must be 1-%d", notebook.SlotCount)
			}
			s, err := open(g, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer s.Close()
			return runAndWait(cmd.Context(), s.nb, s.nb.RunSlot(i), timeout)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "stop waiting after this long (0 waits forever)")
	return cmd
}

// parseSlot converts a 1-based slot number to an index.
func parseSlot(arg string) (int, bool) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > notebook.SlotCount {
		return 0, false
	}
	return n - 1, true
}

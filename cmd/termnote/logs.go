package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/termnote/internal/config"
	"github.com/five82/termnote/internal/logging"
	"github.com/five82/termnote/internal/logtail"
)

func newLogsCmd(g *globalFlags) *cobra.Command {
	var (
		lines    int
		minLevel string
		color    bool
	)
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the end of termnote's log file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(g.configPath)
			if err != nil {
				return err
			}
			threshold, err := logging.ParseLevel(minLevel)
			if err != nil {
				return err
			}
			raw, err := logtail.Read(cfg.LogPath, lines)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, line := range raw {
				text := line
				if e, ok := logtail.Parse(line); ok {
					if e.Level < threshold {
						continue
					}
					if color {
						text = logtail.Colorize(e)
					} else {
						text = logtail.Format(e)
					}
				}
				if _, err := fmt.Fprintln(out, text); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "number of lines to read (0 for all)")
	cmd.Flags().StringVar(&minLevel, "level", "debug", "hide entries below this level")
	cmd.Flags().BoolVar(&color, "color", false, "style levels and logger names")
	return cmd
}

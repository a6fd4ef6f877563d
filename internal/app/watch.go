package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/envlink/internal/config"
	"github.com/blackwell-systems/envlink/internal/log"
	"github.com/blackwell-systems/envlink/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Relink whenever poetry's active environment changes",
	Long: `Links the active environment, then watches poetry's virtualenvs directory
and relinks after environments are created, removed or switched with
'poetry env use'. Runs in the foreground until interrupted (Ctrl+C).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runWatch(ctx, s)
	},
}

func init() {
	RootCmd.AddCommand(watchCmd)
}

func runWatch(ctx context.Context, s *session) error {
	dir, err := s.poetry().VirtualenvsPath(ctx)
	if err != nil {
		return err
	}

	relink := func(ctx context.Context) error {
		_, err := runLink(ctx, s, config.AutomaticDiscovery)
		return err
	}

	if err := relink(ctx); err != nil {
		log.Warnf("initial link failed: %v", err)
	}

	w, err := watcher.New(dir, s.cfg.Watch.Debounce, relink)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.errOut, "Watching %s (Ctrl+C to stop)\n", dir)
	return w.Run(ctx)
}

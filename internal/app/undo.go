package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/envlink/internal/store"
)

// ErrNothingToUndo is returned when the latest link had no previous target.
var ErrNothingToUndo = errors.New("nothing to undo: the last link replaced no previous environment")

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Point the link back at the previous environment",
	Long: `Re-points the venv link in the current directory at the environment it
pointed to before the most recent link. Running undo twice swaps back.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		_, err = runUndo(cmd.Context(), s)
		return err
	},
}

func init() {
	RootCmd.AddCommand(undoCmd)
}

func runUndo(ctx context.Context, s *session) (*store.LinkEvent, error) {
	st, err := s.openExistingStore()
	if err != nil {
		return nil, err
	}
	latest, err := st.LatestLinkEvent(s.workDir)
	st.Close()
	if err != nil {
		return nil, err
	}

	if latest.PreviousTarget == "" {
		return nil, ErrNothingToUndo
	}

	fmt.Fprintf(s.out, "Restoring link to %s\n", latest.PreviousTarget)
	return runLink(ctx, s, latest.PreviousTarget)
}

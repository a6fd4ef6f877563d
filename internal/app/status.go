package app

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/envlink/internal/envlinkerr"
	"github.com/blackwell-systems/envlink/internal/log"
	"github.com/blackwell-systems/envlink/internal/output"
	"github.com/blackwell-systems/envlink/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Verify the current link without changing it",
	Long: `Prints the verification report for the venv link in the current directory,
followed by when it was last linked if history is available.

Nothing on disk is modified.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(cmd)
		if err != nil {
			return err
		}
		return runStatus(s)
	},
}

func init() {
	RootCmd.AddCommand(statusCmd)
}

func runStatus(s *session) error {
	r, err := s.replacer()
	if err != nil {
		return err
	}

	target, exists, err := r.Inspect()
	if err != nil {
		return err
	}
	if !exists {
		return &envlinkerr.NotFoundError{What: "no link found; run 'envlink link --env automatic'", Path: r.Path()}
	}

	report := r.Verify(target)
	fmt.Fprint(s.out, output.RenderReport(report))

	if last := lastEvent(s); last != nil {
		fmt.Fprintf(s.out, "\nLast linked %s", humanize.Time(last.CreatedAt))
		if last.ToolVersion != "" {
			fmt.Fprintf(s.out, " (poetry %s)", last.ToolVersion)
		}
		fmt.Fprintln(s.out)
	}

	if !report.OK() {
		return ErrVerificationFailed
	}
	return nil
}

// lastEvent returns the newest history entry for the working directory, or nil.
func lastEvent(s *session) *store.LinkEvent {
	st, err := s.openExistingStore()
	if err != nil {
		log.Debugf("no link history: %v", err)
		return nil
	}
	defer st.Close()

	event, err := st.LatestLinkEvent(s.workDir)
	if err != nil {
		if !errors.Is(err, store.ErrNoEvents) {
			log.Debugf("cannot read link history: %v", err)
		}
		return nil
	}
	return event
}

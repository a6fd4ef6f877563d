package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/envlink/internal/output"
)

var (
	historyAll   bool
	historyLimit int

	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "Show previous links for this directory",
		Long: `Lists recorded link events, newest first. By default only events for the
current directory are shown.`,
		Example: `  envlink history
  envlink history --all --limit 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(cmd)
			if err != nil {
				return err
			}
			return runHistory(s, historyAll, historyLimit)
		},
	}
)

func init() {
	historyCmd.Flags().BoolVar(&historyAll, "all", false, "show events for every project")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of events to show (0 = no limit)")

	RootCmd.AddCommand(historyCmd)
}

func runHistory(s *session, all bool, limit int) error {
	st, err := s.openExistingStore()
	if err != nil {
		return err
	}
	defer st.Close()

	projectDir := s.workDir
	if all {
		projectDir = ""
	}

	events, err := st.ListLinkEvents(projectDir, limit)
	if err != nil {
		return err
	}

	fmt.Fprint(s.out, output.RenderHistoryTable(events, all))
	return nil
}

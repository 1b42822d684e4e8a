package commands

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pagecheck-labs/pagecheck/pkg/core"
)

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List recent runs or show one run's results",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return showRun(args[0])
			}
			return listRuns(limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to list")

	return cmd
}

func listRuns(limit int) error {
	st, err := openStore(newLogger())
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"ID", "Name", "Scope", "Status", "Passed", "Failed", "Skipped", "Started"})
	for _, run := range runs {
		t.AppendRow(table.Row{
			run.ID, run.Name, run.Scope, run.Status,
			run.PassedTests, run.FailedTests, run.SkippedTests,
			run.StartedAt.Format("2006-01-02 15:04:05"),
		})
	}
	t.Render()
	return nil
}

func showRun(id string) error {
	st, err := openStore(newLogger())
	if err != nil {
		return err
	}
	defer st.Close()

	run, err := st.GetRun(id)
	if err != nil {
		return err
	}

	results, err := st.GetResultsForRun(id)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s) - %s: %d total, %d passed, %d failed, %d skipped\n",
		run.Name, run.ID, run.Status,
		run.TotalTests, run.PassedTests, run.FailedTests, run.SkippedTests)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Case", "Status", "Duration", "Error"})
	for _, res := range results {
		errMsg := res.ErrorMessage
		if res.Status == core.ResultStatusPassed {
			errMsg = ""
		}
		t.AppendRow(table.Row{res.TestCaseID, res.Status, fmt.Sprintf("%dms", res.DurationMS), errMsg})
	}
	t.Render()
	return nil
}

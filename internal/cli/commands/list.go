package commands

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the catalog hierarchy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList()
		},
	}
}

func runList() error {
	logger := newLogger()

	st, err := openStore(logger)
	if err != nil {
		return err
	}
	defer st.Close()

	tree, err := st.GetFullHierarchy()
	if err != nil {
		return err
	}

	if len(tree) == 0 {
		fmt.Println("Catalog is empty. Run `pagecheck sync` to populate it.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Module", "Page", "Route", "Features", "Cases", "Enabled"})

	for _, m := range tree {
		moduleCases, err := st.GetTestCasesCountByModule(m.ID)
		if err != nil {
			return err
		}
		t.AppendRow(table.Row{
			fmt.Sprintf("%s (%s)", m.Name, m.Slug), "", "", "", moduleCases, m.Enabled,
		})

		for _, p := range m.Pages {
			cases := 0
			for _, f := range p.Features {
				cases += len(f.TestCases)
			}
			t.AppendRow(table.Row{"", p.Name, p.Route, len(p.Features), cases, p.Enabled})
		}
	}
	t.Render()
	return nil
}

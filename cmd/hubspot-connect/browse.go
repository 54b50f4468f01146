package main

import (
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/brizzai/hubspot-connect/internal/tui"
)

func newBrowseCmd() *cobra.Command {
	var opts fetchOptions

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse HubSpot contacts interactively and export them to YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			defer func() {
				if r := recover(); r != nil {
					pterm.Error.Printf("\nCaught panic: %v\n", r)
					pterm.Error.Printf("%s\n", debug.Stack())
					os.Exit(2)
				}
			}()

			items, warning, err := opts.fetchItems(cmd)
			if err != nil {
				return err
			}

			p := tea.NewProgram(tui.NewAppModel(items, warning), tea.WithAltScreen())
			m, err := p.Run()
			if err != nil {
				return err
			}

			// Only display summary if the user reached the export page
			finalModel, ok := m.(tui.AppModel)
			if ok && finalModel.IsFinished() {
				kept := 0
				for _, c := range finalModel.GetContactUpdates() {
					if !c.IsExcluded {
						kept++
					}
				}
				pterm.Info.Printfln("Export complete. Kept %s contacts out of %s.",
					pterm.LightGreen(kept),
					pterm.White(len(items)))
			}
			return nil
		},
	}
	opts.register(cmd)
	return cmd
}

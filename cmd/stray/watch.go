package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"straycare/internal/tui"
)

var watchRadius float64

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live view of animals near you",
	Long: `Keeps a list of nearby animals on screen and refreshes it on a
timer. Edits to the config file are picked up while the view is open.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		lat, lng, err := resolvePosition(cmd.Context())
		if err != nil {
			return err
		}
		watch := tui.NewWatch(application, lat, lng, watchRadius,
			resolvedConfigPath, application.Config.UI.Theme, logger)

		program := tea.NewProgram(watchModel{watch}, tea.WithOutput(os.Stderr))
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("run watch view: %w", err)
		}
		return nil
	},
}

type watchModel struct{ tui.Watch }

func (m watchModel) Init() tea.Cmd { return m.Watch.Init() }

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	w, cmd := m.Watch.Update(msg)
	return watchModel{w}, cmd
}

func (m watchModel) View() string { return m.Watch.View() }

func init() {
	watchCmd.Flags().Float64Var(&watchRadius, "radius", 2, "search radius in kilometers")
	watchCmd.Flags().StringVar(&nearbyAt, "at", "", "position as lat,lng (default $STRAYCARE_POSITION)")
}

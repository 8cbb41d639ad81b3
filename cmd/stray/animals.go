package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"straycare/internal/geocode"
	"straycare/internal/services"
	"straycare/internal/tui"
	"straycare/internal/types"
)

var (
	listSpecies string
	listArea    string
	listPage    int
	listSize    int
	listOffline bool

	nearbyRadius float64
	nearbyAt     string

	mePage int
	meSize int
)

var animalsCmd = &cobra.Command{
	Use:   "animals",
	Short: "Browse reported animals",
}

var animalsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List approved animals",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := services.ListFilter{
			Species: types.Species(strings.ToUpper(listSpecies)),
			Area:    listArea,
			Page:    listPage,
			Size:    listSize,
		}
		var (
			page *types.Page[types.Animal]
			err  error
		)
		if listOffline {
			page, err = application.ListAnimalsOffline(filter)
		} else {
			page, err = application.ListAnimals(cmd.Context(), filter)
		}
		if err != nil {
			return err
		}
		printAnimalPage(page)
		return nil
	},
}

var animalsShowCmd = &cobra.Command{
	Use:   "show [animal-id]",
	Short: "Show one animal's full sheet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		ctx := cmd.Context()
		animal, err := application.GetAnimal(ctx, id)
		if err != nil {
			if listOffline {
				if animal, err = application.GetAnimalOffline(id); err != nil {
					return err
				}
			} else {
				return err
			}
		}

		// Care and community context are best effort on the detail sheet.
		var care []types.CareRecord
		if history, err := application.CareHistory(ctx, id, 1, 5); err == nil {
			care = history.Content
		}
		var logs []types.CommunityLog
		if page, err := application.CommunityLogs(ctx, id, services.LogFilter{Size: 5}); err == nil {
			logs = page.Content
		}

		fmt.Print(tui.RenderDetail(animal, care, logs, application.Config.UI.Theme, 80))
		return nil
	},
}

var animalsSearchCmd = &cobra.Command{
	Use:   "search [term]",
	Short: "Search animals by area",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := application.ListAnimals(cmd.Context(), services.ListFilter{
			Area: args[0],
			Page: listPage,
			Size: listSize,
		})
		if err != nil {
			return err
		}
		printAnimalPage(page)
		return nil
	},
}

var animalsNearbyCmd = &cobra.Command{
	Use:   "nearby",
	Short: "List animals around a position",
	RunE: func(cmd *cobra.Command, args []string) error {
		lat, lng, err := resolvePosition(cmd.Context())
		if err != nil {
			return err
		}
		animals, err := application.Nearby(cmd.Context(), lat, lng, nearbyRadius)
		if err != nil {
			return err
		}
		if len(animals) == 0 {
			fmt.Println("No animals reported nearby.")
			return nil
		}
		printAnimals(animals)
		return nil
	},
}

var (
	updBreed       string
	updColor       string
	updAge         int
	updHealth      string
	updTemperament string
	updDescription string
	updVaccinated  bool
	updNeutered    bool
)

var animalsUpdateCmd = &cobra.Command{
	Use:   "update [animal-id]",
	Short: "Edit fields of an existing report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(cmd.Context()); err != nil {
			return err
		}
		var input services.UpdateInput
		flags := cmd.Flags()
		if flags.Changed("breed") {
			input.Breed = &updBreed
		}
		if flags.Changed("color") {
			input.Color = &updColor
		}
		if flags.Changed("age") {
			input.Age = &updAge
		}
		if flags.Changed("health") {
			hs := types.HealthStatus(strings.ToUpper(updHealth))
			input.HealthStatus = &hs
		}
		if flags.Changed("temperament") {
			tp := types.Temperament(strings.ToUpper(updTemperament))
			input.Temperament = &tp
		}
		if flags.Changed("description") {
			input.Description = &updDescription
		}
		if flags.Changed("vaccinated") {
			input.IsVaccinated = &updVaccinated
		}
		if flags.Changed("neutered") {
			input.IsNeutered = &updNeutered
		}
		updated, err := application.UpdateAnimal(cmd.Context(), args[0], input)
		if err != nil {
			return err
		}
		fmt.Printf("Updated %s (%s)\n", shortID(updated.ID), updated.Species)
		return nil
	},
}

var animalsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the community animal census",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := application.Stats(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Total animals   %d\n", stats.TotalAnimals)
		fmt.Printf("  Approved      %d\n", stats.ApprovedAnimals)
		fmt.Printf("  Pending       %d\n", stats.PendingAnimals)
		fmt.Printf("  Dogs          %d\n", stats.DogsCount)
		fmt.Printf("  Cats          %d\n", stats.CatsCount)
		fmt.Printf("  Other         %d\n", stats.OtherCount)
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Report a stray animal through the interactive wizard",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(cmd.Context()); err != nil {
			return err
		}
		locator, err := geocode.LocatorFromEnv()
		if err != nil {
			locator = nil
		}
		resolver := geocode.NewResolver(application.Geocoder, locator)
		wizard := tui.NewWizard(application, resolver, application.Config.UI.Theme)

		program := tea.NewProgram(wizardModel{wizard}, tea.WithOutput(os.Stderr))
		final, err := program.Run()
		if err != nil {
			return fmt.Errorf("run report wizard: %w", err)
		}
		if m, ok := final.(wizardModel); ok && m.Result != nil {
			fmt.Println(m.Result.ID)
		}
		return nil
	},
}

// wizardModel adapts the concretely-typed wizard to tea.Model.
type wizardModel struct{ tui.Wizard }

func (m wizardModel) Init() tea.Cmd { return m.Wizard.Init() }

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	w, cmd := m.Wizard.Update(msg)
	return wizardModel{w}, cmd
}

func (m wizardModel) View() string { return m.Wizard.View() }

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Your reports and contribution stats",
}

var meReportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List the animals you reported",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(cmd.Context()); err != nil {
			return err
		}
		page, err := application.MyReports(cmd.Context(), mePage, meSize)
		if err != nil {
			return err
		}
		printAnimalPage(page)
		return nil
	},
}

var meStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show your contribution counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(cmd.Context()); err != nil {
			return err
		}
		stats, err := application.MyStats(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Reports         %d\n", stats.TotalReports)
		fmt.Printf("Community logs  %d\n", stats.TotalCommunityLogs)
		fmt.Printf("Upvotes         %d\n", stats.TotalUpvotes)
		fmt.Printf("Animals helped  %d\n", stats.AnimalsHelped)
		return nil
	},
}

func init() {
	animalsListCmd.Flags().StringVar(&listSpecies, "species", "", "filter by species (dog, cat, bird, other)")
	animalsListCmd.Flags().StringVar(&listArea, "area", "", "filter by area name")
	animalsListCmd.Flags().IntVar(&listPage, "page", 1, "page number")
	animalsListCmd.Flags().IntVar(&listSize, "size", 12, "page size")
	animalsListCmd.Flags().BoolVar(&listOffline, "offline", false, "serve from the offline snapshot store")
	animalsShowCmd.Flags().BoolVar(&listOffline, "offline", false, "fall back to the offline snapshot store")

	animalsNearbyCmd.Flags().Float64Var(&nearbyRadius, "radius", 2, "search radius in kilometers")
	animalsNearbyCmd.Flags().StringVar(&nearbyAt, "at", "", "position as lat,lng (default $STRAYCARE_POSITION)")

	meReportsCmd.Flags().IntVar(&mePage, "page", 1, "page number")
	meReportsCmd.Flags().IntVar(&meSize, "size", 12, "page size")

	animalsSearchCmd.Flags().IntVar(&listPage, "page", 1, "page number")
	animalsSearchCmd.Flags().IntVar(&listSize, "size", 12, "page size")

	animalsUpdateCmd.Flags().StringVar(&updBreed, "breed", "", "breed")
	animalsUpdateCmd.Flags().StringVar(&updColor, "color", "", "color")
	animalsUpdateCmd.Flags().IntVar(&updAge, "age", 0, "approximate age in years")
	animalsUpdateCmd.Flags().StringVar(&updHealth, "health", "", "health status (healthy, injured, sick, recovering, unknown)")
	animalsUpdateCmd.Flags().StringVar(&updTemperament, "temperament", "", "temperament (friendly, shy, aggressive, unknown)")
	animalsUpdateCmd.Flags().StringVar(&updDescription, "description", "", "free-form description")
	animalsUpdateCmd.Flags().BoolVar(&updVaccinated, "vaccinated", false, "vaccination status")
	animalsUpdateCmd.Flags().BoolVar(&updNeutered, "neutered", false, "neuter status")

	animalsCmd.AddCommand(animalsListCmd, animalsShowCmd, animalsSearchCmd, animalsNearbyCmd, animalsUpdateCmd, animalsStatsCmd)
	meCmd.AddCommand(meReportsCmd, meStatsCmd)
}

// resolvePosition reads --at, then the environment locator.
func resolvePosition(ctx context.Context) (float64, float64, error) {
	if nearbyAt != "" {
		loc := geocode.StaticLocator{}
		if _, err := fmt.Sscanf(nearbyAt, "%f,%f", &loc.Lat, &loc.Lng); err != nil {
			return 0, 0, fmt.Errorf("parse --at %q: expected lat,lng", nearbyAt)
		}
		return loc.Lat, loc.Lng, nil
	}
	locator, err := geocode.LocatorFromEnv()
	if err != nil {
		return 0, 0, fmt.Errorf("no position given; pass --at lat,lng or set STRAYCARE_POSITION")
	}
	return locator.Current(ctx)
}

func printAnimals(animals []types.Animal) {
	for _, a := range animals {
		name := a.Name
		if name == "" {
			name = a.Breed
		}
		line := fmt.Sprintf("%-10s %-6s %-24s %-12s", shortID(a.ID), a.Species, name, a.HealthStatus)
		if loc, ok := a.CurrentLocation(); ok && loc.Address != "" {
			line += "  " + loc.Address
		}
		fmt.Println(line)
	}
}

func printAnimalPage(page *types.Page[types.Animal]) {
	if len(page.Content) == 0 {
		fmt.Println("No animals found.")
		return
	}
	printAnimals(page.Content)
	fmt.Printf("\nPage %d of %d (%d total)\n", page.Page, page.TotalPages, page.TotalElements)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Community overview",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd.Context())
	},
}

func runDashboard(ctx context.Context) error {
	restoreSession(ctx)

	d, err := application.LoadDashboard(ctx, 5)
	if err != nil {
		return err
	}

	fmt.Println("Community census")
	fmt.Printf("  Animals tracked  %d (dogs %d, cats %d, other %d)\n",
		d.Stats.TotalAnimals, d.Stats.DogsCount, d.Stats.CatsCount, d.Stats.OtherCount)
	fmt.Printf("  Awaiting review  %d\n", d.Stats.PendingAnimals)

	if d.MyStats != nil {
		user := application.Session.User()
		fmt.Printf("\nYour contributions, %s\n", user.Name)
		fmt.Printf("  Reports %d · Community logs %d · Animals helped %d\n",
			d.MyStats.TotalReports, d.MyStats.TotalCommunityLogs, d.MyStats.AnimalsHelped)
	}

	if len(d.Recent) > 0 {
		fmt.Println("\nRecently reported")
		printAnimals(d.Recent)
	}
	return nil
}

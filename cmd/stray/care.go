package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"straycare/internal/services"
	"straycare/internal/types"
)

var (
	carePage int
	careSize int

	careType     string
	careDesc     string
	careNextDue  string
	careNotes    string
	feedFoodType string
	feedQuantity string
	feedNotes    string
)

var careCmd = &cobra.Command{
	Use:   "care",
	Short: "Care records and feeding logs",
}

var careHistoryCmd = &cobra.Command{
	Use:   "history [animal-id]",
	Short: "Show an animal's care timeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := application.CareHistory(cmd.Context(), args[0], carePage, careSize)
		if err != nil {
			return err
		}
		if len(page.Content) == 0 {
			fmt.Println("No care recorded yet.")
			return nil
		}
		for _, rec := range page.Content {
			fmt.Printf("%-12s %-18s %s\n", rec.PerformedAt, rec.CareType, rec.Description)
			if rec.NextDueDate != "" {
				fmt.Printf("%-12s   next due %s\n", "", rec.NextDueDate)
			}
		}
		fmt.Printf("\nPage %d of %d (%d total)\n", page.Page, page.TotalPages, page.TotalElements)
		return nil
	},
}

var careAddCmd = &cobra.Command{
	Use:   "add [animal-id]",
	Short: "Record a care action",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(cmd.Context()); err != nil {
			return err
		}
		if careType == "" || careDesc == "" {
			return fmt.Errorf("--type and --description are required")
		}
		_, err := application.AddCareRecord(cmd.Context(), args[0], services.RecordInput{
			CareType:    types.CareType(careType),
			Description: careDesc,
			NextDueDate: careNextDue,
			Notes:       careNotes,
		})
		return err
	},
}

var careRecordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Show the care feed across all animals",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := application.CareRecords(cmd.Context(), carePage, careSize)
		if err != nil {
			return err
		}
		if len(page.Content) == 0 {
			fmt.Println("No care recorded yet.")
			return nil
		}
		for _, rec := range page.Content {
			fmt.Printf("%-12s %-10s %-18s %s\n", rec.PerformedAt, shortID(rec.AnimalID), rec.CareType, rec.Description)
		}
		fmt.Printf("\nPage %d of %d (%d total)\n", page.Page, page.TotalPages, page.TotalElements)
		return nil
	},
}

var careRecentLimit int

var careRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show the latest care records",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := application.RecentCare(cmd.Context(), careRecentLimit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No care recorded yet.")
			return nil
		}
		for _, rec := range records {
			fmt.Printf("%-12s %-10s %-18s %s\n", rec.PerformedAt, shortID(rec.AnimalID), rec.CareType, rec.Description)
		}
		return nil
	},
}

var careScheduleCmd = &cobra.Command{
	Use:   "schedule [animal-id]",
	Short: "Show an animal's feeding schedule",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		schedule, err := application.FeedingSchedule(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(schedule) == 0 {
			fmt.Println("No feedings scheduled.")
			return nil
		}
		for _, log := range schedule {
			fmt.Printf("%-12s %-16s %s\n", log.FedAt, log.FoodType, log.Quantity)
		}
		return nil
	},
}

var careFeedingCmd = &cobra.Command{
	Use:   "feeding [animal-id]",
	Short: "Show an animal's feeding logs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := application.Feeding(cmd.Context(), args[0], carePage, careSize)
		if err != nil {
			return err
		}
		if len(page.Content) == 0 {
			fmt.Println("No feedings logged yet.")
			return nil
		}
		for _, log := range page.Content {
			fmt.Printf("%-12s %-16s %s\n", log.FedAt, log.FoodType, log.Quantity)
		}
		fmt.Printf("\nPage %d of %d (%d total)\n", page.Page, page.TotalPages, page.TotalElements)
		return nil
	},
}

var careFeedCmd = &cobra.Command{
	Use:   "feed [animal-id]",
	Short: "Log a feeding",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(cmd.Context()); err != nil {
			return err
		}
		if feedFoodType == "" {
			return fmt.Errorf("--food is required")
		}
		_, err := application.AddFeeding(cmd.Context(), args[0], services.FeedingInput{
			FoodType: feedFoodType,
			Quantity: feedQuantity,
			Notes:    feedNotes,
		})
		return err
	},
}

func init() {
	careHistoryCmd.Flags().IntVar(&carePage, "page", 1, "page number")
	careHistoryCmd.Flags().IntVar(&careSize, "size", 10, "page size")
	careFeedingCmd.Flags().IntVar(&carePage, "page", 1, "page number")
	careFeedingCmd.Flags().IntVar(&careSize, "size", 10, "page size")

	careAddCmd.Flags().StringVar(&careType, "type", "", "care type (VACCINATION, STERILIZATION, FEEDING, MEDICAL_TREATMENT, GROOMING, CHECKUP)")
	careAddCmd.Flags().StringVar(&careDesc, "description", "", "what was done")
	careAddCmd.Flags().StringVar(&careNextDue, "next-due", "", "next due date (optional)")
	careAddCmd.Flags().StringVar(&careNotes, "notes", "", "extra notes (optional)")

	careFeedCmd.Flags().StringVar(&feedFoodType, "food", "", "food type")
	careFeedCmd.Flags().StringVar(&feedQuantity, "quantity", "", "quantity (optional)")
	careFeedCmd.Flags().StringVar(&feedNotes, "notes", "", "extra notes (optional)")

	careRecordsCmd.Flags().IntVar(&carePage, "page", 1, "page number")
	careRecordsCmd.Flags().IntVar(&careSize, "size", 10, "page size")
	careRecentCmd.Flags().IntVar(&careRecentLimit, "limit", 10, "how many records")

	careCmd.AddCommand(careHistoryCmd, careAddCmd, careRecordsCmd, careRecentCmd, careScheduleCmd, careFeedingCmd, careFeedCmd)
}

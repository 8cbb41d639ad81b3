package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"straycare/internal/services"
	"straycare/internal/types"
)

var (
	logsType string
	logsPage int
	logsSize int

	postType    string
	postTitle   string
	postDesc    string
	postUrgency string
)

var communityCmd = &cobra.Command{
	Use:   "community",
	Short: "Community activity on reported animals",
}

var communityLogsCmd = &cobra.Command{
	Use:   "logs [animal-id]",
	Short: "Show community activity, for one animal or across all",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := services.LogFilter{
			Type: types.CommunityLogType(strings.ToUpper(logsType)),
			Page: logsPage,
			Size: logsSize,
		}
		var (
			page *types.Page[types.CommunityLog]
			err  error
		)
		if len(args) == 1 {
			page, err = application.CommunityLogs(cmd.Context(), args[0], filter)
		} else {
			page, err = application.AllCommunityLogs(cmd.Context(), filter)
		}
		if err != nil {
			return err
		}
		if len(page.Content) == 0 {
			fmt.Println("No community activity yet.")
			return nil
		}
		for _, log := range page.Content {
			marker := " "
			if log.IsUpvoted {
				marker = "*"
			}
			fmt.Printf("%-10s %-14s %-32s ▲%d%s\n", shortID(log.ID), log.Type, log.Title, log.Upvotes, marker)
			if log.Description != "" {
				fmt.Printf("           %s\n", log.Description)
			}
		}
		fmt.Printf("\nPage %d of %d (%d total)\n", page.Page, page.TotalPages, page.TotalElements)
		return nil
	},
}

var communityPostCmd = &cobra.Command{
	Use:   "post [animal-id]",
	Short: "Post an update to an animal's community log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(cmd.Context()); err != nil {
			return err
		}
		if postType == "" || postTitle == "" {
			return fmt.Errorf("--type and --title are required")
		}
		input := services.PostInput{
			Type:        types.CommunityLogType(strings.ToUpper(postType)),
			Title:       postTitle,
			Description: postDesc,
			Urgency:     types.Urgency(strings.ToUpper(postUrgency)),
		}
		_, err := application.PostLog(cmd.Context(), args[0], input)
		return err
	},
}

var communityUpvoteCmd = &cobra.Command{
	Use:   "upvote [animal-id] [log-id]",
	Short: "Upvote a community log entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(cmd.Context()); err != nil {
			return err
		}
		return application.Upvote(cmd.Context(), args[0], args[1])
	},
}

var communityUnvoteCmd = &cobra.Command{
	Use:   "unvote [animal-id] [log-id]",
	Short: "Withdraw an upvote",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(cmd.Context()); err != nil {
			return err
		}
		return application.RemoveUpvote(cmd.Context(), args[0], args[1])
	},
}

func init() {
	communityLogsCmd.Flags().StringVar(&logsType, "type", "", "filter by log type (SIGHTING, FEEDING, HEALTH_UPDATE, BEHAVIOR, OTHER)")
	communityLogsCmd.Flags().IntVar(&logsPage, "page", 1, "page number")
	communityLogsCmd.Flags().IntVar(&logsSize, "size", 10, "page size")

	communityPostCmd.Flags().StringVar(&postType, "type", "", "log type (SIGHTING, FEEDING, HEALTH_UPDATE, BEHAVIOR, OTHER)")
	communityPostCmd.Flags().StringVar(&postTitle, "title", "", "short title")
	communityPostCmd.Flags().StringVar(&postDesc, "description", "", "details (optional)")
	communityPostCmd.Flags().StringVar(&postUrgency, "urgency", "LOW", "urgency (LOW, MEDIUM, HIGH, CRITICAL)")

	communityCmd.AddCommand(communityLogsCmd, communityPostCmd, communityUpvoteCmd, communityUnvoteCmd)
}

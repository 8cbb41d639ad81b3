package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"straycare/internal/services"
	"straycare/internal/types"
)

var (
	pendingPage int
	pendingSize int

	promoteEmail    string
	promoteUsername string
	promoteRole     string

	userEmail    string
	userUsername string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Moderation and user administration",
}

var adminPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List reports awaiting approval",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(cmd.Context()); err != nil {
			return err
		}
		page, err := application.Pending(cmd.Context(), pendingPage, pendingSize)
		if err != nil {
			return err
		}
		printAnimalPage(page)
		return nil
	},
}

var adminApproveCmd = &cobra.Command{
	Use:   "approve [animal-id]",
	Short: "Approve a pending report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(cmd.Context()); err != nil {
			return err
		}
		_, err := application.ApproveAnimal(cmd.Context(), args[0])
		return err
	},
}

var adminRejectCmd = &cobra.Command{
	Use:   "reject [animal-id]",
	Short: "Reject a pending report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(cmd.Context()); err != nil {
			return err
		}
		_, err := application.RejectAnimal(cmd.Context(), args[0])
		return err
	},
}

var adminDeleteCmd = &cobra.Command{
	Use:   "delete [animal-id]",
	Short: "Delete a report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(cmd.Context()); err != nil {
			return err
		}
		return application.DeleteAnimal(cmd.Context(), args[0])
	},
}

var adminPromoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Change a user's role",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(cmd.Context()); err != nil {
			return err
		}
		if promoteEmail == "" && promoteUsername == "" {
			return fmt.Errorf("pass --email or --username")
		}
		message, err := application.Auth.Promote(cmd.Context(), services.PromoteInput{
			Email:    promoteEmail,
			Username: promoteUsername,
			Role:     types.Role(strings.ToUpper(promoteRole)),
		})
		if err != nil {
			return err
		}
		application.Notify.Success(message)
		return nil
	},
}

var adminUserCmd = &cobra.Command{
	Use:   "user",
	Short: "Look up a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireAuth(cmd.Context()); err != nil {
			return err
		}
		if userEmail == "" && userUsername == "" {
			return fmt.Errorf("pass --email or --username")
		}
		u, err := application.Auth.UserInfo(cmd.Context(), userEmail, userUsername)
		if err != nil {
			return err
		}
		fmt.Printf("%s <%s> (%s)\n", u.Name, u.Email, u.Role)
		return nil
	},
}

func init() {
	adminPendingCmd.Flags().IntVar(&pendingPage, "page", 1, "page number")
	adminPendingCmd.Flags().IntVar(&pendingSize, "size", 12, "page size")

	adminPromoteCmd.Flags().StringVar(&promoteEmail, "email", "", "select the user by email")
	adminPromoteCmd.Flags().StringVar(&promoteUsername, "username", "", "select the user by username")
	adminPromoteCmd.Flags().StringVar(&promoteRole, "role", "ADMIN", "target role (PUBLIC_USER, VOLUNTEER, ADMIN)")

	adminUserCmd.Flags().StringVar(&userEmail, "email", "", "select the user by email")
	adminUserCmd.Flags().StringVar(&userUsername, "username", "", "select the user by username")

	adminCmd.AddCommand(adminPendingCmd, adminApproveCmd, adminRejectCmd, adminDeleteCmd, adminPromoteCmd, adminUserCmd)
}

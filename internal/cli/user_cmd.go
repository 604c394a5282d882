package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/logstore/core/internal/services"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// userCmd represents the user command group
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
	Long:  `Create users, list them and reset their passwords.`,
}

// userCreateCmd creates a new user
var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new user",
	Long:  `Interactively create a user from an email, a password and an optional name.`,
	Run: func(cmd *cobra.Command, args []string) {
		reader := bufio.NewReader(os.Stdin)

		email := prompt(reader, "Email: ")
		if email == "" {
			fail("email must not be empty")
		}

		password := readNewPassword("Password (at least %d characters): ")
		name := prompt(reader, "Name (optional, press enter to skip): ")

		newUser, err := userService.CreateUser(context.Background(), services.NewUserInput{
			Email:    email,
			Password: password,
			Name:     name,
		})
		if err != nil {
			fail("failed to create user: %v", err)
		}

		fmt.Println()
		fmt.Println("User created.")
		fmt.Printf("  ID:    %d\n", newUser.ID)
		fmt.Printf("  Email: %s\n", newUser.Email)
		if newUser.Name != "" {
			fmt.Printf("  Name:  %s\n", newUser.Name)
		}
	},
}

// userListCmd lists all users
var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active users",
	Run: func(cmd *cobra.Command, args []string) {
		users, err := userService.ListUsers(context.Background())
		if err != nil {
			fail("failed to list users: %v", err)
		}

		if len(users) == 0 {
			fmt.Println("No users.")
			return
		}

		fmt.Printf("%-6s %-32s %-20s %s\n", "ID", "EMAIL", "NAME", "CREATED")
		for _, u := range users {
			fmt.Printf("%-6d %-32s %-20s %s\n", u.ID, u.Email, u.Name, u.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		fmt.Printf("%d user(s)\n", len(users))
	},
}

// userResetPwdCmd resets a user's password
var userResetPwdCmd = &cobra.Command{
	Use:   "reset-pwd [user-id]",
	Short: "Reset a user's password",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		reader := bufio.NewReader(os.Stdin)

		idStr := ""
		if len(args) == 1 {
			idStr = args[0]
		} else {
			idStr = prompt(reader, "User ID: ")
		}
		userID, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil || userID == 0 {
			fail("invalid user ID %q", idStr)
		}

		ctx := context.Background()
		targetUser, err := userService.GetUserByID(ctx, uint(userID))
		if err != nil {
			fail("%v", err)
		}

		fmt.Printf("About to reset the password of %s (ID: %d).\n", targetUser.Email, targetUser.ID)
		confirm := strings.ToLower(prompt(reader, "Continue? (yes/no): "))
		if confirm != "yes" && confirm != "y" {
			fmt.Println("Cancelled.")
			return
		}

		newPassword := readNewPassword("New password (at least %d characters): ")
		if err := userService.ResetPassword(ctx, targetUser.ID, newPassword); err != nil {
			var verr *services.ValidationError
			if errors.As(err, &verr) {
				fail("%s", verr.Fields["password"])
			}
			fail("failed to reset password: %v", err)
		}

		fmt.Printf("Password of %s has been reset.\n", targetUser.Email)
	},
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		fail("failed to read input: %v", err)
	}
	return strings.TrimSpace(line)
}

// readNewPassword reads a password twice without echo
func readNewPassword(label string) string {
	fmt.Printf(label, services.MinPasswordLength)
	first, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fail("failed to read password: %v", err)
	}
	if len(first) < services.MinPasswordLength {
		fail("password must be at least %d characters", services.MinPasswordLength)
	}

	fmt.Print("Repeat password: ")
	second, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fail("failed to read password: %v", err)
	}
	if string(first) != string(second) {
		fail("passwords do not match")
	}
	return string(first)
}

func init() {
	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userResetPwdCmd)
}

package main

import (
	"fmt"
	"os"
	"qa-board-go/internal/model"
	"qa-board-go/internal/repository"
	"qa-board-go/internal/service"
	"qa-board-go/pkg/database"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "テーブルを作成し AI ユーザーを用意する",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg := setup()
		database.InitDB(cfg.Database)
		sentinel, err := repository.AutoMigrate(database.DB, cfg.Board.AIStudentNumber)
		if err != nil {
			return err
		}
		fmt.Printf("migrated, AI user id=%d student_number=%s\n", sentinel.ID, sentinel.StudentNumber)
		return nil
	},
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "ユーザーを登録・一覧表示する",
}

var passphrase string

var userAddCmd = &cobra.Command{
	Use:   "add <student_number>",
	Short: "ユーザーを登録する（パスワードは bcrypt で保存）",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		if passphrase == "" {
			passphrase = os.Getenv("QABOARD_PASSPHRASE")
		}
		users, err := userService()
		if err != nil {
			return err
		}
		user, err := users.Register(args[0], passphrase)
		if err != nil {
			return err
		}
		fmt.Printf("user created: id=%d student_number=%s\n", user.ID, user.StudentNumber)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "ユーザーを一覧表示する",
	RunE: func(_ *cobra.Command, _ []string) error {
		users, err := userService()
		if err != nil {
			return err
		}
		list, err := users.ListUsers()
		if err != nil {
			return err
		}
		printUsers(list)
		return nil
	},
}

func init() {
	userAddCmd.Flags().StringVarP(&passphrase, "passphrase", "p", "", "passphrase (or QABOARD_PASSPHRASE)")
	userCmd.AddCommand(userAddCmd, userListCmd)
}

// userService 为 CLI 创建只用于用户预置的 UserService，不需要 Redis。
func userService() (service.UserService, error) {
	cfg := setup()
	database.InitDB(cfg.Database)
	if _, err := repository.AutoMigrate(database.DB, cfg.Board.AIStudentNumber); err != nil {
		return nil, err
	}
	return service.NewUserService(repository.NewUserRepository(database.DB), nil, nil, cfg.Session.IdleTimeout), nil
}

func printUsers(users []model.User) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTUDENT_NUMBER\tAI\tCREATED_AT")
	for _, u := range users {
		fmt.Fprintf(w, "%d\t%s\t%t\t%s\n", u.ID, u.StudentNumber, u.IsSentinel, model.LocalTime(u.CreatedAt))
	}
	_ = w.Flush()
}

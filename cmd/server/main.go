// Package main 是应用程序的入口点。
package main

import (
	"fmt"
	"os"
	"qa-board-go/internal/config"
	"qa-board-go/internal/model"
	"qa-board-go/pkg/log"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "qa-board",
	Short: "学内 Q&A 掲示板サーバー",
	Long: `学内 Q&A 掲示板のサーバーと運用コマンド。

Available subcommands:
  serve   - HTTP サーバーを起動する
  migrate - テーブルを作成し AI ユーザーを用意する
  user    - ユーザーを登録・一覧表示する`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./configs/config.yaml", "配置文件路径")
	rootCmd.AddCommand(serveCmd, migrateCmd, userCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup 加载配置并初始化日志，所有子命令共用。
func setup() config.Config {
	config.Init(configPath)
	cfg := config.Conf
	if err := log.Init(cfg.Log); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	model.SetDisplayLocation(cfg.Server.Location())
	return cfg
}

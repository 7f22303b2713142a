package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rushteam/feedkit/config"
	"github.com/rushteam/feedkit/pkg/logging"
)

var (
	versionInfo = struct{ Version, Commit string }{"dev", "none"}

	configPath  string
	catalogPath string
	logLevel    string
)

// SetVersion 由 main 注入构建信息
func SetVersion(version, commit string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
}

// NewRootCmd 创建根命令
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "feedsim",
		Short:         "Short-session video feed personalizer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (.yaml / .json)")
	cmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "catalog JSON file, overrides config")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level, overrides config")

	cmd.AddCommand(NewSimulateCmd(), NewServeCmd(), NewVersionCmd())
	return cmd
}

// Execute 运行根命令
func Execute() error {
	return NewRootCmd().Execute()
}

// NewVersionCmd 打印版本
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "feedsim %s (%s)\n", versionInfo.Version, versionInfo.Commit)
		},
	}
}

// loadConfig 依次叠加默认值、配置文件、FEED_ 环境变量与命令行参数，然后初始化日志
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if catalogPath != "" {
		cfg.Catalog.Path = catalogPath
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logging.Init(cfg.Log)
	return cfg, nil
}

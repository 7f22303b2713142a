// feedsim 是短视频会话推荐的命令行入口：simulate 跑一个脚本化会话，serve 启动 HTTP 服务。
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/rushteam/feedkit/cmd/feedsim/commands"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	_ = godotenv.Load()
	commands.SetVersion(version, commit)

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

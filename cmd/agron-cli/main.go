// Agron CLI — инструмент командной строки для работы с
// сообщениями, задачами, журналом работ и участками через HTTP API.
//
// Использование:
//
//	agron [--api-url URL] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	message  Отправка и просмотр сообщений
//	task     Управление задачами
//	worklog  Просмотр журнала работ
//	field    Управление участками
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Agron/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "agron",
		Short:         "Agron CLI — farm operations assistant",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewMessageCmd(clientFn, outputFn),
		cli.NewTaskCmd(clientFn, outputFn),
		cli.NewWorkLogCmd(clientFn, outputFn),
		cli.NewFieldCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"

	"gotabstat/internal/config"
	"gotabstat/internal/container"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// errAnalysisFailed marks a run whose result was printed but unsuccessful
var errAnalysisFailed = errors.New("analysis failed")

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to read .env: %v", err)
	}

	rootCmd := &cobra.Command{
		Use:           "tabstat",
		Short:         "Statistical analysis of spreadsheet tables",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	app := &cliApp{}
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.init()
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(app),
		newSheetsCmd(app),
		newInspectCmd(app),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errAnalysisFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// cliApp carries the wired dependencies shared by every command
type cliApp struct {
	container *container.Container
}

func (a *cliApp) init() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	c, err := container.New(cfg)
	if err != nil {
		return err
	}
	a.container = c
	return nil
}

func (a *cliApp) config() *config.Config {
	return a.container.Config
}

package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/noah-isme/school-board-api/api/swagger"
	"github.com/noah-isme/school-board-api/cmd/board-api/commands"
)

// @title School Board API
// @version 1.0.0
// @description Announcement board for holidays, key information, payment dues and faculty posts
// @BasePath /
// @schemes http

func main() {
	serveCmd := commands.NewServeCommand()
	rootCmd := &cobra.Command{
		Use:           "board-api",
		Short:         "School announcement board server",
		Long:          "Serves the notice board pages and the JSON API that reads and writes the board data file.",
		RunE:          serveCmd.RunE,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("command failed: %v", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"architect-assistant/config"
	srv "architect-assistant/internal/server"
)

func main() {
	// .env is optional; real env vars win either way.
	_ = godotenv.Load()

	var root = &cobra.Command{Use: "assistantd"}

	var configPath string
	var serveAddr string
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run the assistant HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(configPath)
			if serveAddr != "" {
				cfg.Server.Address = serveAddr
			}
			return srv.Run(cfg)
		},
	}
	serve.Flags().StringVar(&configPath, "config", "", "path to config file (optional)")
	serve.Flags().StringVar(&serveAddr, "addr", "", "listen address override")

	root.AddCommand(serve)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

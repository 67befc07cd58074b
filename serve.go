package main

import (
	"github.com/spf13/cobra"

	"hugo-directus/pkg/handlers"
	"hugo-directus/pkg/services"
)

var importOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Listen for webhooks and re-import on every call",
	RunE: func(cmd *cobra.Command, args []string) error {
		syncer := services.NewSyncer(cfg, log)
		if importOnStart {
			go syncer.RunFullSync()
		}

		r := handlers.NewRouter(handlers.NewWebhook(syncer, log))
		log.Infof("Waiting for incoming webhook at http://%s", cfg.Addr())
		return r.Run(cfg.Addr())
	},
}

func init() {
	serveCmd.Flags().BoolVar(&importOnStart, "import", false, "Run an import before the first webhook")
	rootCmd.AddCommand(serveCmd)
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hugo-directus/pkg/config"
	"hugo-directus/pkg/logger"
)

var (
	envFile string
	verbose bool

	cfg *config.Config
	log logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "hugo-directus",
	Short: "Export Directus content into a Hugo content tree",
	Long: `hugo-directus reads every collection of a Directus instance and writes each
item as a Markdown file with frontmatter, downloading referenced assets next to it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var files []string
		if envFile != "" {
			files = append(files, envFile)
		}
		loaded, err := config.Load(files...)
		if err != nil {
			return err
		}
		cfg = loaded

		level := cfg.Log.Level
		if verbose {
			level = "debug"
		}
		log = logger.New(level, cfg.Log.Format)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

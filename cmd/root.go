package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bitecast",
	Short: "Bite-sized audio learning playlists",
	Long: `Bitecast turns a free-text learning request into a playlist of short
narrated segments: it picks topics, researches them on the web, writes a
script per topic and converts each script to speech.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
}

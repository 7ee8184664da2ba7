package cmd

import (
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Builds the static site from the content collections",
	Long: `The build command loads every collection under the content directory,
validates each entry against its schema, renders the blog and policy pages,
copies the public directory and referenced images, and writes rss.xml and
the sitemap into the output directory. Any invalid entry fails the build.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return buildSite(cmd.Context(), appConfig, logger, newStore(appConfig, logger))
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

package main

import (
	"encoding/json"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	eventsDirectory string
	eventsOutfile   string
)

// eventsCmd prints a repository's calendar values without starting a server.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Write a repository's commit events as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := cfg.Repo.URL
		if cmd.Flags().Changed("directory") && !cmd.Flags().Changed("url") {
			raw = "file:" + eventsDirectory
		}

		values, err := newService().Events(cmd.Context(), raw)
		if err != nil {
			return err
		}

		var out io.Writer = cmd.OutOrStdout()
		if eventsOutfile != "" {
			f, err := os.Create(eventsOutfile)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		logger.Info("events", zap.String("url", raw), zap.Int("count", len(values)))
		return json.NewEncoder(out).Encode(values)
	},
}

func init() {
	eventsCmd.Flags().StringVarP(&eventsDirectory, "directory", "D", ".", "path to a local repository")
	eventsCmd.Flags().StringVarP(&eventsOutfile, "outfile", "o", "", "file to write the output to")
	addRepoFlags(eventsCmd)
}

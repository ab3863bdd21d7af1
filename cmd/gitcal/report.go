package main

import (
	"github.com/quesurifn/git-calendar-server/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var reportOpts report.Options

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Screenshot a calendar page to PNG",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := reportOpts
		if !cmd.Flags().Changed("width") {
			opts.Width = cfg.Report.Width
		}
		if !cmd.Flags().Changed("height") {
			opts.Height = cfg.Report.Height
		}
		if !cmd.Flags().Changed("timeout") {
			opts.Timeout = cfg.Report.Timeout
		}
		if opts.ExecPath == "" {
			opts.ExecPath = cfg.Report.ExecPath
		}
		if opts.URL == "" {
			opts.URL = "http://127.0.0.1:" + cfg.Server.Port + "/"
		}

		if err := report.Capture(cmd.Context(), opts); err != nil {
			return err
		}
		logger.Info("report written", zap.String("url", opts.URL), zap.String("file", opts.OutputPath))
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportOpts.URL, "page", "", "page to capture (defaults to the local server)")
	reportCmd.Flags().StringVarP(&reportOpts.OutputPath, "out", "o", "report.png", "PNG file to write")
	reportCmd.Flags().IntVar(&reportOpts.Width, "width", 0, "viewport width")
	reportCmd.Flags().IntVar(&reportOpts.Height, "height", 0, "viewport height")
	reportCmd.Flags().DurationVar(&reportOpts.Timeout, "timeout", 0, "capture timeout")
	reportCmd.Flags().StringVar(&reportOpts.ExecPath, "chrome", "", "browser binary")
}

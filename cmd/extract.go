/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"encoding/json"
	"errors"
	"os"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/docqa/config"
	"github.com/tieubaoca/docqa/logger"
	"github.com/tieubaoca/docqa/service"
	"github.com/tieubaoca/docqa/utils"
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract the text of every document in a zip archive",
	Long: `Unpacks the archive, converts every recognized document and prints one
row per document followed by a summary.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		archivePath, _ := cmd.Flags().GetString("archive")
		asJSON, _ := cmd.Flags().GetBool("json")

		documentService, cleanup, cfg, err := setupCLI(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		data, err := utils.ReadFileLimited(archivePath, cfg.MaxUpload)
		if err != nil {
			return err
		}
		ingestion, err := documentService.Process(cmd.Context(), data, nil)
		if err != nil {
			return err
		}
		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(ingestion)
		}
		return printIngestion(cmd.OutOrStdout(), ingestion)
	},
}

// setupCLI loads configuration and builds the pipeline for one-shot commands.
// Logs go to stderr so stdout carries only the result.
func setupCLI(cmd *cobra.Command) (*service.DocumentService, func(), *config.Config, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, nil, nil, err
	}
	level := "warn"
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = "debug"
	}
	log := logger.NewWithWriter(os.Stderr, level, cfg.Log.Format)

	documentService, cleanup, err := newDocumentService(cmd.Context(), cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return documentService, cleanup, cfg, nil
}

// reportRemoteError prints the full cause chain of a failed model call.
func reportRemoteError(cmd *cobra.Command, err error) {
	var remoteErr *service.RemoteServiceError
	if errors.As(err, &remoteErr) {
		cmd.PrintErrln(service.Diagnostic(err))
	}
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringP("archive", "a", "", "path to the zip archive")
	extractCmd.Flags().Bool("json", false, "print the result as JSON")
	extractCmd.Flags().BoolP("verbose", "v", false, "log every processing step to stderr")
	extractCmd.MarkFlagRequired("archive")
}

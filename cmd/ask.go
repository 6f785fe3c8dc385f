/*
Copyright © 2025 tieubaoca
*/
package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"github.com/tieubaoca/docqa/types"
	"github.com/tieubaoca/docqa/utils"
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Answer a question about the documents in a zip archive",
	Long: `Unpacks the archive, extracts the text of every recognized document and
sends the question together with the documents to the configured model.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		archivePath, _ := cmd.Flags().GetString("archive")
		question, _ := cmd.Flags().GetString("question")
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
		answer, err := documentService.Ask(cmd.Context(), ingestion, question)
		if err != nil {
			reportRemoteError(cmd, err)
			return err
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(types.AskResponse{Ingestion: ingestion, Answer: answer})
		}
		if err := printIngestion(cmd.OutOrStdout(), ingestion); err != nil {
			return err
		}
		printAnswer(cmd.OutOrStdout(), answer)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringP("archive", "a", "", "path to the zip archive")
	askCmd.Flags().StringP("question", "q", "", "question to ask about the documents")
	askCmd.Flags().Bool("json", false, "print the result as JSON")
	askCmd.Flags().BoolP("verbose", "v", false, "log every processing step to stderr")
	askCmd.MarkFlagRequired("archive")
	askCmd.MarkFlagRequired("question")
}

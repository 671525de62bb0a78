package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/example/englearn/internal/excel"
)

const (
	importFileKey     = "import.file"
	importKindKey     = "import.kind"
	importSheetKey    = "import.sheet"
	importStartRowKey = "import.start_row"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import lessons, quizzes, blogs or references from an Excel or CSV file",
	Long: `Import lessons, quizzes, blogs or references from an Excel (.xlsx) or CSV file.

Columns: A title, B section, C text, D answer, E type, F options ("|" separated).
Lesson sections are content, homework, reading, comprehension and phrase.
Quiz rows use the title, text (prompt) and answer columns. Blog rows use the
title, section (author) and text columns. Reference rows use the title, text
(URL) and answer (description) columns. Content with an existing title is
replaced.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadRuntime()
		if err != nil {
			return err
		}

		importConfig := excel.DefaultImportConfig()
		importConfig.FilePath = viper.GetString(importFileKey)
		importConfig.Kind = excel.ContentKind(strings.ToLower(viper.GetString(importKindKey)))
		if sheet := viper.GetString(importSheetKey); sheet != "" {
			importConfig.SheetName = sheet
		}
		if startRow := viper.GetInt(importStartRowKey); startRow > 0 {
			importConfig.StartRow = startRow
		}
		if importConfig.FilePath == "" {
			return fmt.Errorf("please specify the file with --file")
		}

		c, err := buildComponents(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer c.db.Close()

		importer := excel.NewImporter(c.content, logger)
		result, err := importer.Import(cmd.Context(), importConfig)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Processed %d rows: %d created, %d updated, %d skipped\n",
			result.TotalProcessed, result.Created, result.Updated, result.Skipped)
		for _, msg := range result.Errors {
			fmt.Fprintln(out, "  "+msg)
		}

		if result.Created+result.Updated > 0 {
			if err := c.aggregator.RecomputeAll(cmd.Context()); err != nil {
				logger.WithError(err).Warn("failed to recompute scores after import")
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringP("file", "f", "", "path to the .xlsx or .csv file")
	importCmd.Flags().String("kind", string(excel.KindLessons), "content kind: lessons, quizzes, blogs or references")
	importCmd.Flags().String("sheet", "", "sheet name for Excel files (default Sheet1)")
	importCmd.Flags().Int("start-row", 0, "first data row, 1-based (default 2)")

	bindFlagToViper(importFileKey, importCmd.Flags().Lookup("file"))
	bindFlagToViper(importKindKey, importCmd.Flags().Lookup("kind"))
	bindFlagToViper(importSheetKey, importCmd.Flags().Lookup("sheet"))
	bindFlagToViper(importStartRowKey, importCmd.Flags().Lookup("start-row"))
}

package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/tieubaoca/docqa/types"
)

const previewWidth = 60

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoWrap: tw.WrapNone,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{
					AutoFormat: tw.On,
				},
				Alignment: tw.CellAlignment{
					Global: tw.AlignLeft,
				},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{
					ShowHeader: tw.Off,
				},
			},
		}),
	)
}

// printIngestion renders one row per document and a summary line.
func printIngestion(w io.Writer, ingestion *types.IngestionResult) error {
	rows := make([][]string, 0, len(ingestion.Documents))
	for _, doc := range ingestion.Documents {
		status := color.GreenString(doc.Status)
		detail := oneLine(doc.Preview)
		if !doc.Succeeded() {
			status = color.RedString(doc.Status)
			detail = doc.Error
		} else if doc.Cached {
			status += " (cached)"
		}
		rows = append(rows, []string{doc.Path, status, strconv.Itoa(doc.Characters), detail})
	}

	table := newTable(w)
	table.Header([]string{"Path", "Status", "Characters", "Preview"})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d of %d documents processed, %d failed, %d other files skipped, %d characters\n",
		ingestion.SucceededCount, ingestion.DocumentCount, ingestion.FailedCount,
		ingestion.SkippedFiles, ingestion.TotalCharacters)
	if ingestion.Warning != "" {
		color.New(color.FgYellow).Fprintf(w, "⚠ %s\n", ingestion.Warning)
	}
	return nil
}

func printAnswer(w io.Writer, answer *types.Answer) {
	if answer.Warning != "" {
		color.New(color.FgYellow).Fprintf(w, "⚠ %s\n", answer.Warning)
		return
	}
	color.New(color.FgWhite, color.Bold).Fprintf(w, "\nQ: %s\n", answer.Question)
	fmt.Fprintf(w, "%s\n", answer.Answer)
	suffix := ""
	if answer.Truncated {
		suffix = ", context truncated"
	}
	color.New(color.Faint).Fprintf(w, "\n%s/%s, %d context characters%s, %.2fs\n",
		answer.Provider, answer.Model, answer.ContextCharacters, suffix, answer.ElapsedSeconds)
}

func oneLine(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) > previewWidth {
		return string(runes[:previewWidth]) + "…"
	}
	return text
}

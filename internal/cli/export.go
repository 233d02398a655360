package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"fmeacore/internal/adapters/report"
	"fmeacore/internal/blob"
)

func RunExport(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.finish()
	view, _ := cmd.Flags().GetString("view")
	formatNames, _ := cmd.Flags().GetStringSlice("format")
	output, _ := cmd.Flags().GetString("output")
	toStore, _ := cmd.Flags().GetBool("store")

	doc, err := readDocument(args[0])
	if err != nil {
		return err
	}
	formats := make([]report.Format, 0, len(formatNames))
	for _, name := range formatNames {
		formats = append(formats, report.Format(name))
	}

	if toStore {
		store, err := blob.Open(cmd.Context(), rt.cfg.BlobConfig())
		if err != nil {
			return fmt.Errorf("open blob store: %w", err)
		}
		exp := report.NewExporter(store, report.WithLogger(rt.logger))
		rec, err := exp.Export(cmd.Context(), report.Request{Document: doc, View: report.View(view), Formats: formats, RequestedBy: "cli"})
		if err != nil {
			return err
		}
		for _, a := range rec.Artifacts {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d bytes\t%d rows\n", a.Key, a.SizeBytes, a.Rows)
		}
		return nil
	}

	if len(formats) != 1 {
		return fmt.Errorf("exactly one --format is allowed without --store")
	}
	data, rows, err := report.Render(doc, report.View(view), formats[0])
	if err != nil {
		return err
	}
	if err := writeOutput(cmd.OutOrStdout(), output, data); err != nil {
		return err
	}
	rt.logger.Info("report rendered", "view", view, "format", formats[0], "rows", rows)
	return nil
}

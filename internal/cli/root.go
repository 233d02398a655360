// Package cli wires the fmea command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCommand builds the fmea command tree.
func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fmea",
		Short: "Build, review and export AIAG-VDA FMEA documents",
		Long: `fmea imports legacy FMEA tables into interchange documents, classifies
risk with the AIAG-VDA Action Priority, reviews documents against consistency
rules and exports risk, optimization and full tables.

Settings come from --config (or $FMEA_CONFIG) and FMEA_* environment variables.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")

	importCmd := &cobra.Command{
		Use:   "import <table>",
		Short: "Convert a legacy tabular export into an interchange document",
		Args:  cobra.ExactArgs(1),
		RunE:  RunImport,
	}
	importCmd.Flags().StringP("output", "o", "", "Write the document here instead of stdout")
	importCmd.Flags().String("project-name", "", "Project name (default: table file name)")
	importCmd.Flags().String("type", "DFMEA", "FMEA type: DFMEA|PFMEA|FMEA-MSR")
	importCmd.Flags().String("delimiter", ",", "Cell delimiter")

	exportCmd := &cobra.Command{
		Use:   "export <document>",
		Short: "Render a document as a table or interchange file",
		Args:  cobra.ExactArgs(1),
		RunE:  RunExport,
	}
	exportCmd.Flags().String("view", "export", "Table view: risk|export|optimization")
	exportCmd.Flags().StringSlice("format", []string{"csv"}, "Output formats: csv|json|yaml|html")
	exportCmd.Flags().StringP("output", "o", "", "Write the artifact here instead of stdout")
	exportCmd.Flags().Bool("store", false, "Store the artifacts in the configured blob store")

	classifyCmd := &cobra.Command{
		Use:   "classify <S> <O> <D>",
		Short: "Print the Action Priority for a severity, occurrence and detection rating",
		Args:  cobra.ExactArgs(3),
		RunE:  RunClassify,
	}
	classifyCmd.Flags().Bool("label", false, "Print the priority label instead of its code")

	reviewCmd := &cobra.Command{
		Use:   "review <document>",
		Short: "Check a document against the review rules",
		Args:  cobra.ExactArgs(1),
		RunE:  RunReview,
	}
	reviewCmd.Flags().Bool("json", false, "Print machine-readable findings")

	saveCmd := &cobra.Command{
		Use:   "save <document>",
		Short: "Review a document and persist it in the configured store",
		Args:  cobra.ExactArgs(1),
		RunE:  RunSave,
	}

	loadCmd := &cobra.Command{
		Use:   "load <project-id>",
		Short: "Fetch a stored document",
		Args:  cobra.ExactArgs(1),
		RunE:  RunLoad,
	}
	loadCmd.Flags().StringP("output", "o", "", "Write the document here instead of stdout")
	loadCmd.Flags().Bool("yaml", false, "Write YAML instead of JSON")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored documents",
		Args:  cobra.NoArgs,
		RunE:  RunList,
	}
	listCmd.Flags().Bool("json", false, "Print machine-readable output")

	deleteCmd := &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Remove a stored document",
		Args:  cobra.ExactArgs(1),
		RunE:  RunDelete,
	}

	suggestCmd := &cobra.Command{
		Use:   "suggest",
		Short: "Ask the suggestion service for analysis content and merge it into a document",
	}
	suggestCmd.PersistentFlags().StringP("output", "o", "", "Write the merged document here (default: overwrite input)")
	suggestStructureCmd := &cobra.Command{
		Use:   "structure <document>",
		Short: "Suggest structure elements for the project scope",
		Args:  cobra.ExactArgs(1),
		RunE:  RunSuggestStructure,
	}
	suggestFunctionsCmd := &cobra.Command{
		Use:   "functions <document> <node-id>",
		Short: "Suggest functions for a structure element",
		Args:  cobra.ExactArgs(2),
		RunE:  RunSuggestFunctions,
	}
	suggestFailuresCmd := &cobra.Command{
		Use:   "failures <document> <node-id> <function-id>",
		Short: "Suggest failure modes for a function",
		Args:  cobra.ExactArgs(3),
		RunE:  RunSuggestFailures,
	}
	suggestRiskCmd := &cobra.Command{
		Use:   "risk <document> <node-id> <function-id> <failure-id>",
		Short: "Suggest an effect, cause and controls for a failure mode",
		Args:  cobra.ExactArgs(4),
		RunE:  RunSuggestRisk,
	}
	suggestCmd.AddCommand(suggestStructureCmd, suggestFunctionsCmd, suggestFailuresCmd, suggestRiskCmd)

	rootCmd.AddCommand(importCmd, exportCmd, classifyCmd, reviewCmd, saveCmd, loadCmd, listCmd, deleteCmd, suggestCmd)
	return rootCmd
}

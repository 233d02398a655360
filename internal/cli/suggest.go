package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"fmeacore/internal/adapters/suggest"
	"fmeacore/internal/core"
)

type suggestStep func(ctx context.Context, a *suggest.Assistant, args []string) (core.Tree, error)

func runSuggest(cmd *cobra.Command, args []string, step suggestStep) error {
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.finish()
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = args[0]
	}
	doc, err := readDocument(args[0])
	if err != nil {
		return err
	}
	provider, err := suggest.NewOpenAIProvider(rt.cfg.OpenAIConfig(), suggest.WithProviderLogger(rt.logger))
	if err != nil {
		return err
	}
	session := rt.newSession(doc)
	before := core.Count(session.Tree())
	tree, err := step(cmd.Context(), suggest.NewAssistant(provider, session), args[1:])
	if err != nil {
		return err
	}
	if err := writeDocument(cmd.OutOrStdout(), output, session.Document(), false); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "merged %d new entities into %s\n", core.Count(tree)-before, output)
	return nil
}

func RunSuggestStructure(cmd *cobra.Command, args []string) error {
	return runSuggest(cmd, args, func(ctx context.Context, a *suggest.Assistant, _ []string) (core.Tree, error) {
		return a.Structure(ctx)
	})
}

func RunSuggestFunctions(cmd *cobra.Command, args []string) error {
	return runSuggest(cmd, args, func(ctx context.Context, a *suggest.Assistant, rest []string) (core.Tree, error) {
		return a.Functions(ctx, rest[0])
	})
}

func RunSuggestFailures(cmd *cobra.Command, args []string) error {
	return runSuggest(cmd, args, func(ctx context.Context, a *suggest.Assistant, rest []string) (core.Tree, error) {
		return a.FailureModes(ctx, core.FunctionPath{NodeID: rest[0], FunctionID: rest[1]})
	})
}

func RunSuggestRisk(cmd *cobra.Command, args []string) error {
	return runSuggest(cmd, args, func(ctx context.Context, a *suggest.Assistant, rest []string) (core.Tree, error) {
		path := core.FunctionPath{NodeID: rest[0], FunctionID: rest[1]}.Failure(rest[2])
		return a.RiskAnalysis(ctx, path)
	})
}

package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"fmeacore/pkg/domain"
)

func RunReview(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.finish()
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to read --json flag: %w", err)
	}
	doc, err := readDocument(args[0])
	if err != nil {
		return err
	}
	res, err := rt.newSession(doc).Review(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		printViolations(cmd, res)
	}
	if res.HasBlocking() {
		return domain.RuleViolationError{Result: res}
	}
	return nil
}

func printViolations(cmd *cobra.Command, res domain.Result) {
	out := cmd.OutOrStdout()
	if len(res.Violations) == 0 {
		fmt.Fprintln(out, "no findings")
		return
	}
	for _, v := range res.Violations {
		fmt.Fprintf(out, "%s\t%s\t%s %s\t%s\n", v.Severity, v.Rule, v.Entity, v.EntityID, v.Message)
	}
}

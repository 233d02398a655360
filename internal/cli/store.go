package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"fmeacore/internal/core"
	"fmeacore/pkg/domain"
)

func RunSave(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.finish()
	doc, err := readDocument(args[0])
	if err != nil {
		return err
	}
	store, closeStore, err := rt.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	res, err := rt.newSession(doc, core.WithStore(store)).Save(cmd.Context())
	if err != nil {
		printViolations(cmd, res)
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%d warnings)\n", doc.Project.ID, len(res.Violations))
	return nil
}

func RunLoad(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.finish()
	output, _ := cmd.Flags().GetString("output")
	asYAML, _ := cmd.Flags().GetBool("yaml")
	store, closeStore, err := rt.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	session := rt.newSession(domain.Document{}, core.WithStore(store))
	if err := session.Load(cmd.Context(), args[0]); err != nil {
		return err
	}
	return writeDocument(cmd.OutOrStdout(), output, session.Document(), asYAML)
}

func RunList(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.finish()
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to read --json flag: %w", err)
	}
	store, closeStore, err := rt.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	summaries, err := store.List(cmd.Context())
	if err != nil {
		return err
	}
	if asJSON {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(summaries)
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNUMBER\tNAME\tTYPE\tUPDATED")
	for _, s := range summaries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.Number, s.Name, s.Type, s.UpdatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func RunDelete(cmd *cobra.Command, args []string) error {
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.finish()
	store, closeStore, err := rt.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer closeStore()

	existed, err := store.Delete(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if !existed {
		fmt.Fprintf(cmd.OutOrStdout(), "%s not stored\n", args[0])
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
	return nil
}

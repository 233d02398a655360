package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"fmeacore/internal/adapters/tabular"
	"fmeacore/internal/core"
	"fmeacore/pkg/domain"
)

func RunImport(cmd *cobra.Command, args []string) error {
	start := time.Now()
	rt, err := loadRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.finish()
	output, _ := cmd.Flags().GetString("output")
	name, _ := cmd.Flags().GetString("project-name")
	kind, _ := cmd.Flags().GetString("type")
	delimiter, _ := cmd.Flags().GetString("delimiter")

	if utf8.RuneCountInString(delimiter) != 1 {
		return fmt.Errorf("%w: %q", tabular.ErrInvalidDelimiter, delimiter)
	}
	fmeaType := domain.FmeaType(kind)
	if !fmeaType.Valid() {
		return fmt.Errorf("unknown FMEA type %q", kind)
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open %s: %w", args[0], err)
	}
	defer func() { _ = f.Close() }()

	if name == "" {
		name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	}
	project := domain.NewProject(name)
	project.Type = fmeaType

	delim, _ := utf8.DecodeRuneInString(delimiter)
	var stats tabular.Stats
	session := rt.newSession(domain.Document{Project: project})
	if _, err := session.Apply(cmd.Context(), "import_table", func(core.Tree) (core.Tree, error) {
		res, err := tabular.Options{Delimiter: delim}.ParseReader(f)
		if err != nil {
			return nil, err
		}
		stats = res.Stats
		return core.Tree(res.Structure), nil
	}); err != nil {
		return err
	}
	if err := writeDocument(cmd.OutOrStdout(), output, session.Document(), false); err != nil {
		return err
	}
	rt.logger.Info("table imported", "source", args[0], "project", project.ID, "elapsed", time.Since(start))
	fmt.Fprintf(cmd.ErrOrStderr(), "imported %s\n", stats)
	return nil
}

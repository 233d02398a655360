package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"fmeacore/pkg/domain"
)

func RunClassify(cmd *cobra.Command, args []string) error {
	label, _ := cmd.Flags().GetBool("label")
	names := [3]string{"severity", "occurrence", "detection"}
	var ratings [3]int
	for i, arg := range args {
		v, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", names[i], arg, err)
		}
		if !domain.ValidRating(v) {
			return fmt.Errorf("%s %d out of range %d..%d", names[i], v, domain.MinRating, domain.MaxRating)
		}
		ratings[i] = v
	}
	ap := domain.Classify(ratings[0], ratings[1], ratings[2])
	if label {
		fmt.Fprintln(cmd.OutOrStdout(), ap.Label())
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(ap))
	return nil
}

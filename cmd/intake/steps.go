package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/mark3labs/intake/internal/intake"
	"github.com/spf13/cobra"
)

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "List the wizard steps and field options",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printSteps(cmd.OutOrStdout(), intake.DefaultSteps())
	},
}

func printSteps(w io.Writer, steps []intake.Step) error {
	var b strings.Builder
	for _, s := range steps {
		fmt.Fprintf(&b, "%d. %s - %s\n", s.ID, s.Title, s.Description)
		for _, f := range s.Fields {
			fmt.Fprintf(&b, "   %s%s\n", f, fieldOptions(f))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// fieldOptions lists the accepted values of enumerated fields.
func fieldOptions(f intake.Field) string {
	var opts []string
	switch f {
	case intake.FieldServices:
		opts = intake.ServiceCatalog
	case intake.FieldBudget:
		for _, b := range intake.Budgets {
			opts = append(opts, fmt.Sprintf("%s (%s)", b, b.Label()))
		}
	case intake.FieldTimeline:
		for _, t := range intake.Timelines {
			opts = append(opts, fmt.Sprintf("%s (%s)", t, t.Label()))
		}
	default:
		return ""
	}
	return ": " + strings.Join(opts, ", ")
}

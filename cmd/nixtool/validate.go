package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check files for structural errors and warnings",
		Long: `Validate runs the structural checks on every entity of each file and prints
the errors and warnings found. The command fails when any file has errors, or
warnings when --strict is set.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strict := a.v.GetBool("strict")
			out := cmd.OutOrStdout()

			var failed error
			for _, path := range args {
				f, err := a.openFile(path)
				if err != nil {
					return NewFileError("validate", path, err, CommonSuggestions.CheckPath)
				}
				result := f.Validate()
				_ = f.Close()

				a.logger.Info("validated file", "path", path, "errors", len(result.Errors), "warnings", len(result.Warnings))
				fmt.Fprintf(out, "%s: %d error(s), %d warning(s)\n", path, len(result.Errors), len(result.Warnings))
				fmt.Fprint(out, result)

				count := len(result.Errors)
				if strict {
					count += len(result.Warnings)
				}
				if count > 0 && failed == nil {
					failed = NewValidationError(path, count)
				}
			}
			return failed
		},
	}

	cmd.Flags().Bool("strict", false, "Treat warnings as errors")
	return cmd
}

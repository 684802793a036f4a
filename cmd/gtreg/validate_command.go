package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"gtreg/internal/api"
	"gtreg/internal/submission"
)

func newValidateCommand() *cobra.Command {
	var file string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:         "validate",
		Short:       "Check a submission document without touching the database",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readDocument(cmd, file)
			if err != nil {
				return err
			}
			items, err := submission.Split(data)
			if err != nil {
				return err
			}

			results := make([]api.Submission, 0, len(items))
			invalid := 0
			for i, raw := range items {
				res := api.Submission{Index: i, Status: "valid"}
				sub, err := submission.Validate(raw)
				if err != nil {
					invalid++
					res.Status = "invalid"
					res.Error = err.Error()
					if verrs, ok := submission.AsValidationErrors(err); ok {
						for _, fe := range verrs {
							res.FieldErrors = append(res.FieldErrors, api.FieldError{Path: fe.Path, Message: fe.Message})
						}
					}
				} else {
					res.Description = sub.Describe()
				}
				results = append(results, res)
			}

			if jsonOutput {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				rows := make([][]string, 0, len(results))
				for _, res := range results {
					detail := res.Description
					if res.Status == "invalid" {
						lines := make([]string, 0, len(res.FieldErrors))
						for _, fe := range res.FieldErrors {
							lines = append(lines, fe.Path+": "+fe.Message)
						}
						detail = strings.Join(lines, "\n")
					}
					rows = append(rows, []string{strconv.Itoa(res.Index + 1), res.Status, detail})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"#", "Result", "Detail"}, rows, []columnAlignment{alignRight}))
			}
			if invalid > 0 {
				return fmt.Errorf("%d of %d submission(s) invalid", invalid, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Submission document (JSON object or array; - for stdin)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit results as JSON")
	return cmd
}

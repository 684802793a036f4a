package main

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"gtreg/internal/api"
	"gtreg/internal/config"
	"gtreg/internal/ingest"
	"gtreg/internal/store"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var file string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Resolve and persist a submission document",
		Long: "Reads one submission object or an array of submissions and processes them in order.\n" +
			"Each submission commits or rolls back on its own; the summary lists every one of them.",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readDocument(cmd, file)
			if err != nil {
				return err
			}
			var batch *ingest.BatchResult
			err = ctx.withStore(cmd.Context(), func(cfg *config.Config, st *store.Store, logger *slog.Logger) error {
				batch, err = ingest.New(st, cfg, logger).ProcessDocument(cmd.Context(), data)
				return err
			})
			if err != nil {
				return err
			}

			if jsonOutput {
				if err := writeJSON(cmd, api.FromBatchResult(batch)); err != nil {
					return err
				}
			} else {
				renderBatch(cmd.OutOrStdout(), batch)
			}
			if batch.Totals.Failed > 0 {
				return fmt.Errorf("%d of %d submission(s) failed", batch.Totals.Failed, batch.Totals.Submitted)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Submission document (JSON object or array; - for stdin)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the batch result as JSON")
	return cmd
}

func renderBatch(out io.Writer, batch *ingest.BatchResult) {
	colorize := shouldColorize(out)
	for _, line := range renderSectionHeader("Batch "+batch.BatchID, colorize) {
		fmt.Fprintln(out, line)
	}

	rows := make([][]string, 0, len(batch.Submissions))
	for _, res := range batch.Submissions {
		rows = append(rows, []string{
			strconv.Itoa(res.Index + 1),
			renderStatus(res.Status, colorize),
			res.Description,
			submissionDetail(res),
		})
	}
	fmt.Fprintln(out, renderTable([]string{"#", "Status", "Submission", "Detail"}, rows, []columnAlignment{alignRight}))

	t := batch.Totals
	fmt.Fprintln(out, renderStatusLine("Succeeded", statusOK, strconv.Itoa(t.Succeeded), colorize))
	if t.NeedsReview > 0 {
		fmt.Fprintln(out, renderStatusLine("Needs review", statusWarn, strconv.Itoa(t.NeedsReview), colorize))
	}
	if t.Failed > 0 {
		fmt.Fprintln(out, renderStatusLine("Failed", statusError, strconv.Itoa(t.Failed), colorize))
	}

	c := batch.Counters
	counters := [][]string{
		{"Manufacturers", strconv.Itoa(c.ManufacturersInserted), strconv.Itoa(c.ManufacturersUpdated)},
		{"Product lines", strconv.Itoa(c.ProductLinesInserted), strconv.Itoa(c.ProductLinesMatched)},
		{"Models", strconv.Itoa(c.ModelsInserted), strconv.Itoa(c.ModelsUpdated)},
		{"Individual guitars", strconv.Itoa(c.GuitarsInserted), strconv.Itoa(c.GuitarsUpdated)},
		{"Specifications", strconv.Itoa(c.SpecificationsInserted), "-"},
		{"Images", strconv.Itoa(c.ImagesAttached), "-"},
	}
	fmt.Fprintln(out, renderTable([]string{"Entity", "Inserted", "Matched"}, counters, []columnAlignment{alignLeft, alignRight, alignRight}))
}

func submissionDetail(res ingest.SubmissionResult) string {
	switch res.Status {
	case "succeeded":
		parts := make([]string, 0, len(res.Entities))
		for _, e := range res.Entities {
			if e.Action == ingest.ActionUnchanged {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s %s", e.Action, e.Kind))
		}
		if len(parts) == 0 {
			return "no changes"
		}
		return strings.Join(parts, ", ")
	case "needs_review":
		if res.Review == nil {
			return res.Error
		}
		names := make([]string, 0, len(res.Review.Candidates))
		for _, c := range res.Review.Candidates {
			names = append(names, fmt.Sprintf("%s (%.3f)", c.Name, c.Score))
		}
		return fmt.Sprintf("%s %q resembles %s", res.Review.Kind, res.Review.Name, strings.Join(names, ", "))
	default:
		if len(res.FieldErrors) > 0 {
			lines := make([]string, 0, len(res.FieldErrors))
			for _, fe := range res.FieldErrors {
				lines = append(lines, fe.String())
			}
			return strings.Join(lines, "\n")
		}
		return res.Error
	}
}

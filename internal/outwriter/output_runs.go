package outwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/forgeworks/forgestat/internal/contract"
	"github.com/forgeworks/forgestat/schema"
)

// WriteRuns outputs the run history listing, dispatching based on the
// output format configured.
func WriteRuns(records []schema.RunRecord, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, records)
		}, "JSON")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRunsTable(records, w)
		}, "run history")
	}
}

// writeRunsTable renders the run history table, newest run first.
func writeRunsTable(records []schema.RunRecord, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Run ID", "Started", "Duration", "Repos", "Commits", "Users", "Skipped"})

	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, rec := range records {
		duration := "running"
		if rec.DurationMs != nil {
			duration = fmt.Sprintf("%dms", *rec.DurationMs)
		}
		skipped := rec.UnknownSkips + rec.ExternalSkips
		data = append(data, []string{
			strconv.FormatInt(rec.RunID, 10),
			rec.StartTime.UTC().Format("2006-01-02 15:04:05"),
			duration,
			fmt.Sprintf("%d/%d", rec.ReposKept, rec.ReposFetched),
			strconv.Itoa(int(rec.TotalCommits)),
			strconv.Itoa(int(rec.ActiveUsers)),
			strconv.Itoa(int(skipped)),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

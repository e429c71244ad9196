package outwriter

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/forgeworks/forgestat/internal/contract"
	"github.com/forgeworks/forgestat/schema"
)

// WriteRepos outputs the repository listing, dispatching based on the
// output format configured.
func WriteRepos(repos []schema.Repository, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, repos)
		}, "JSON")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReposTable(repos, w)
		}, "repository listing")
	}
}

// writeReposTable renders the repository table.
func writeReposTable(repos []schema.Repository, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Repository", "Clone URL", "Description"})

	var data [][]string
	for _, r := range repos {
		data = append(data, []string{r.FullName(), r.CloneURL, r.Description})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

package outwriter

import (
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/forgeworks/forgestat/internal/contract"
	"github.com/forgeworks/forgestat/schema"
)

// WriteUsers outputs the registered user listing, dispatching based on the
// output format configured.
func WriteUsers(users []schema.User, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, users)
		}, "JSON")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeUsersTable(users, w)
		}, "user listing")
	}
}

// writeUsersTable renders the registered user table.
func writeUsersTable(users []schema.User, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Login", "Name", "Email"})

	var data [][]string
	for _, u := range users {
		data = append(data, []string{u.Login, u.FullName, u.Email})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

package outwriter

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/forgeworks/forgestat/internal/contract"
	"github.com/forgeworks/forgestat/schema"
)

// maxContributorsShown caps the contributor listing per repository row.
const maxContributorsShown = 5

// WriteReport outputs the contribution report, dispatching based on the
// output format configured.
func WriteReport(result *schema.Result, users []schema.User, diag schema.Diagnostics, cfg *contract.Config, duration time.Duration) error {
	fmtFloat, intFmt := createFormatters(cfg.Precision)

	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "JSON")
	default:
		// Default to human-readable tables
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportTables(result, users, diag, cfg, fmtFloat, intFmt, duration, w)
		}, "report")
	}
}

// userRow pairs a login with its rollup for ranking. Registered accounts
// without any attributed commits appear with zero stats.
type userRow struct {
	Login string
	Stat  schema.UserStat
}

// rankUsers merges contributor rollups with the zero-commit registered
// accounts, then ranks by total lines descending. Ties break on login
// ascending so re-runs with identical inputs print identical tables.
func rankUsers(result *schema.Result, users []schema.User, limit int) []userRow {
	merged := make(map[string]schema.UserStat, len(users)+len(result.UserStats))
	for _, u := range users {
		merged[u.Login] = schema.UserStat{Login: u.Login, FullName: u.FullName}
	}
	for login, stat := range result.UserStats {
		merged[login] = stat
	}

	rows := make([]userRow, 0, len(merged))
	for login, stat := range merged {
		rows = append(rows, userRow{Login: login, Stat: stat})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Stat.TotalLines != rows[j].Stat.TotalLines {
			return rows[i].Stat.TotalLines > rows[j].Stat.TotalLines
		}
		return rows[i].Login < rows[j].Login
	})

	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}

// rankRepos returns the repository rollups ranked by total lines descending,
// ties broken on name ascending. The input slice is left untouched.
func rankRepos(repos []schema.RepoStat) []schema.RepoStat {
	ranked := make([]schema.RepoStat, len(repos))
	copy(ranked, repos)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].TotalLines != ranked[j].TotalLines {
			return ranked[i].TotalLines > ranked[j].TotalLines
		}
		return ranked[i].Name < ranked[j].Name
	})
	return ranked
}

// formatContributors joins the leading contributors, noting how many were
// elided.
func formatContributors(contributors []string) string {
	if len(contributors) <= maxContributorsShown {
		return strings.Join(contributors, ", ")
	}
	shown := strings.Join(contributors[:maxContributorsShown], ", ")
	return fmt.Sprintf("%s (+%d)", shown, len(contributors)-maxContributorsShown)
}

// writeReportTables generates and writes the human-readable report.
func writeReportTables(result *schema.Result, users []schema.User, diag schema.Diagnostics, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, duration time.Duration, writer io.Writer) error {
	wide := getTerminalWidth(cfg) >= narrowTerminalWidth
	nameWidth := getMaxTableNameWidth(cfg)

	// 1. Header
	if _, err := contract.HeaderColor.Fprintln(writer, "Code Contribution Report"); err != nil {
		return err
	}
	fmt.Fprintf(writer, "Generated: %s\n", result.GeneratedAt.UTC().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(writer, "Window:    %s\n\n", formatWindow(result.Since, result.Until))

	// 2. Overall totals
	if _, err := contract.HeaderColor.Fprintln(writer, "Overall totals"); err != nil {
		return err
	}
	totals := result.Totals
	fmt.Fprintf(writer, "Repositories: %d\n", totals.Repos)
	fmt.Fprintf(writer, "Commits:      %d\n", totals.Commits)
	fmt.Fprintf(writer, "Additions:    %d\n", totals.Additions)
	fmt.Fprintf(writer, "Deletions:    %d\n", totals.Deletions)
	if _, err := contract.TotalsColor.Fprintf(writer, "Total lines:  %d\n", totals.Lines); err != nil {
		return err
	}
	fmt.Fprintf(writer, "Contributors: %d of %d registered users\n\n", len(result.UserStats), len(users))

	// 3. User ranking
	if _, err := contract.HeaderColor.Fprintln(writer, "User ranking (by total lines)"); err != nil {
		return err
	}
	if err := writeUserRankingTable(result, users, cfg, fmtFloat, intFmt, wide, nameWidth, writer); err != nil {
		return err
	}
	fmt.Fprintln(writer)

	// 4. Repository ranking
	if _, err := contract.HeaderColor.Fprintln(writer, "Repository ranking (by total lines)"); err != nil {
		return err
	}
	if err := writeRepoRankingTable(result.RepoStats, intFmt, wide, writer); err != nil {
		return err
	}
	fmt.Fprintln(writer)

	// 5. Diagnostics footer
	if diag.UnknownSkips > 0 || diag.ExternalSkips > 0 || diag.EmptyRepos > 0 {
		if _, err := contract.WarningColor.Fprintf(writer, "Skipped: %d unknown-author commits, %d external commits, %d repos without commits\n",
			diag.UnknownSkips, diag.ExternalSkips, diag.EmptyRepos); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(writer, "Aggregation completed in %v. Cache backend: %s\n", duration, cfg.CacheBackend); err != nil {
		return err
	}
	return nil
}

// writeUserRankingTable renders the per-user ranking table.
func writeUserRankingTable(result *schema.Result, users []schema.User, cfg *contract.Config, fmtFloat func(float64) string, intFmt string, wide bool, nameWidth int, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	headers := []string{"Rank", "User"}
	if wide {
		headers = append(headers, "Name")
	}
	headers = append(headers, "Lines", "Added", "Deleted", "Commits", "Repos")
	if wide {
		headers = append(headers, "Ratio")
	}
	table.Header(headers)

	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, r := range rankUsers(result, users, cfg.ResultLimit) {
		row := []string{
			strconv.Itoa(i + 1),
			contract.TruncateName(r.Login, nameWidth),
		}
		if wide {
			row = append(row, contract.TruncateName(r.Stat.FullName, nameWidth))
		}
		row = append(row,
			fmt.Sprintf(intFmt, r.Stat.TotalLines),
			fmt.Sprintf(intFmt, r.Stat.Additions),
			fmt.Sprintf(intFmt, r.Stat.Deletions),
			fmt.Sprintf(intFmt, r.Stat.Commits),
			fmt.Sprintf(intFmt, r.Stat.ReposCount),
		)
		if wide {
			// Average lines changed per commit
			ratio := 0.0
			if r.Stat.Commits > 0 {
				ratio = float64(r.Stat.TotalLines) / float64(r.Stat.Commits)
			}
			row = append(row, fmtFloat(ratio))
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeRepoRankingTable renders the per-repository ranking table.
func writeRepoRankingTable(repos []schema.RepoStat, intFmt string, wide bool, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	headers := []string{"Rank", "Repository", "Lines", "Added", "Deleted", "Commits", "Authors"}
	if wide {
		headers = append(headers, "Contributors")
	}
	table.Header(headers)

	table.Configure(func(tcfg *tablewriter.Config) {
		tcfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for i, r := range rankRepos(repos) {
		row := []string{
			strconv.Itoa(i + 1),
			r.Name,
			fmt.Sprintf(intFmt, r.TotalLines),
			fmt.Sprintf(intFmt, r.Additions),
			fmt.Sprintf(intFmt, r.Deletions),
			fmt.Sprintf(intFmt, r.Commits),
			fmt.Sprintf(intFmt, r.ContributorsCount),
		}
		if wide {
			row = append(row, formatContributors(r.Contributors))
		}
		data = append(data, row)
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

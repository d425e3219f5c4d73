package output

import (
	"fmt"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/flocklens/flocklens/internal/core"
)

// FormatGroup renders an industry-group crawl result as a table, nodes
// ordered by descending in-degree.
func FormatGroup(result *core.GroupResult) string {
	if result == nil {
		return ""
	}

	type entry struct {
		node  int64
		count int
	}
	entries := make([]entry, 0, len(result.InDegree))
	for node, count := range result.InDegree {
		entries = append(entries, entry{node: node, count: count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].node < entries[j].node
	})

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Node", "In-Degree"})
	for _, e := range entries {
		t.AppendRow(table.Row{e.node, e.count})
	}
	t.AppendFooter(table.Row{
		fmt.Sprintf("%d nodes", len(entries)),
		fmt.Sprintf("%d requests", result.Requests),
	})

	return t.Render()
}

// FormatUsers renders hydrated users as a table.
func FormatUsers(users []core.User) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "Handle", "Location", "Followers", "Following", "Verified", "Protected"})
	for _, u := range users {
		t.AppendRow(table.Row{
			u.ID, u.Handle, u.Location, u.FollowersCount, u.FriendsCount,
			yesNo(u.Verified), yesNo(u.Protected),
		})
	}
	return t.Render()
}

// FormatPosts renders posts as a table, truncating long text.
func FormatPosts(posts []core.Post) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "Author", "Posted", "Favorites", "Reposts", "Text"})
	for _, p := range posts {
		t.AppendRow(table.Row{
			p.ID,
			p.UserHandle,
			formatUnix(p.CreatedAtUnix),
			p.FavoriteCount,
			p.RepostCount,
			truncate(postText(p), 60),
		})
	}
	return t.Render()
}

// FormatCredentials renders stored credentials, never showing secrets.
func FormatCredentials(records []core.CredentialRecord) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "Label", "Created"})
	for _, rec := range records {
		t.AppendRow(table.Row{rec.ID, rec.Label, rec.CreatedAt.Format(time.RFC3339)})
	}
	return t.Render()
}

// FormatCrawlRuns renders recorded crawl runs, newest first as stored.
func FormatCrawlRuns(runs []core.CrawlRun) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "Seeds", "Depth", "Nodes", "Requests", "Started", "Duration"})
	for _, run := range runs {
		t.AppendRow(table.Row{
			run.ID,
			len(run.Seeds),
			run.Depth,
			run.Nodes,
			run.Requests,
			run.StartedAt.UTC().Format("2006-01-02 15:04"),
			run.CompletedAt.Sub(run.StartedAt).Round(time.Second).String(),
		})
	}
	return t.Render()
}

// FormatIDs renders a plain id listing, one per row.
func FormatIDs(ids []int64) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID"})
	for _, id := range ids {
		t.AppendRow(table.Row{id})
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d total", len(ids))})
	return t.Render()
}

func postText(p core.Post) string {
	if p.FullText != "" {
		return p.FullText
	}
	return p.Text
}

func truncate(s string, limit int) string {
	if limit <= 3 || len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}

func formatUnix(ts int64) string {
	if ts == 0 {
		return ""
	}
	return time.Unix(ts, 0).UTC().Format("2006-01-02 15:04")
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

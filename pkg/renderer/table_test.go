package renderer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTMLRendersHeaderAndRows(t *testing.T) {
	page, err := HTML(Table{
		Title:       "Department Activity Report - CS",
		GeneratedAt: "2024-05-01 10:30",
		Meta:        []string{"Date Range: 2024-04-01 to End", "Total Submissions: 1"},
		Columns:     []string{"ID", "Student"},
		Rows:        [][]string{{"abc123", "Asha Rao"}},
	})
	require.NoError(t, err)

	html := string(page)
	require.Contains(t, html, "<h2>Department Activity Report - CS</h2>")
	require.Contains(t, html, "<p>Generated: 2024-05-01 10:30</p>")
	require.Contains(t, html, "<p>Date Range: 2024-04-01 to End</p>")
	require.Contains(t, html, "<th>Student</th>")
	require.Contains(t, html, "<td>Asha Rao</td>")
	require.NotContains(t, html, `class="empty"`)
}

func TestHTMLEscapesCells(t *testing.T) {
	page, err := HTML(Table{
		Title:   "Filtered Activity Report",
		Columns: []string{"Remarks"},
		Rows:    [][]string{{`<script>alert("x")</script>`}},
	})
	require.NoError(t, err)
	require.NotContains(t, string(page), "<script>")
	require.Contains(t, string(page), "&lt;script&gt;")
}

func TestHTMLEmptyMessageReplacesTable(t *testing.T) {
	page, err := HTML(Table{
		Title:        "Department Activity Report - MECH",
		Columns:      []string{"ID"},
		EmptyMessage: "No data found for department MECH",
	})
	require.NoError(t, err)
	html := string(page)
	require.Contains(t, html, "No data found for department MECH")
	require.False(t, strings.Contains(html, "<table>"))
}

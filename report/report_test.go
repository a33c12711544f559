package report

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/smallnest/nodegraphgo/graph"
	"github.com/smallnest/nodegraphgo/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sample builds src -> double plus an unlinked consumer, then runs it.
func sample(t *testing.T, value any) *graph.Graph {
	t.Helper()
	g := graph.NewGraph(graph.WithLogger(&log.NoOpLogger{}), graph.WithGraphID("demo"))
	src := g.AddNode(graph.NewKind("src", nil, []string{"x"}, func(context.Context, map[string]any) (map[string]any, error) {
		return map[string]any{"x": value}, nil
	}))
	dbl := g.AddNode(graph.NewKind("double", graph.Required("x"), []string{"y", "z"}, func(_ context.Context, in map[string]any) (map[string]any, error) {
		return map[string]any{"z": "zz", "y": in["x"]}, nil
	}))
	g.AddNode(graph.NewKind("orphan", graph.Required("a", "b"), nil, nil))
	require.NoError(t, g.AddLink(src, "x", dbl, "x"))
	_, err := g.Run(context.Background(), nil)
	require.NoError(t, err)
	return g
}

func TestBuild(t *testing.T) {
	r := Build(sample(t, 21))

	assert.Equal(t, "demo", r.GraphID)
	require.Len(t, r.Rows, 3)
	assert.Equal(t, Row{ID: 1, Kind: "src", State: graph.StateFresh, Outputs: map[string]any{"x": 21}}, r.Rows[0])
	assert.Equal(t, "y=21, z=zz", r.Rows[1].outputsCell())
	assert.Equal(t, graph.StateStale, r.Rows[2].State)
	assert.Equal(t, []string{"a", "b"}, r.Rows[2].Missing)
	assert.Nil(t, r.Rows[2].Outputs)

	assert.Equal(t, 2, r.Count(graph.StateFresh))
	assert.Equal(t, "3 nodes: 2 fresh, 0 runnable, 1 stale", r.Summary())
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short"))
	assert.Equal(t, "a b", truncate("a\nb"))

	long := strings.Repeat("x", 100)
	got := truncate(long)
	assert.Equal(t, maxValueWidth, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "…"))
}

func TestMarkdown(t *testing.T) {
	md := Build(sample(t, "a|b")).Markdown()

	assert.True(t, strings.HasPrefix(md, "# Graph demo\n\n3 nodes: 2 fresh, 0 runnable, 1 stale\n\n"))
	assert.Contains(t, md, "| ID | Kind | State | Missing inputs | Outputs |\n")
	assert.Contains(t, md, `| 1 | src | fresh |  | x=a\|b |`)
	assert.Contains(t, md, "| 3 | orphan | stale | a, b |  |")
}

func TestHTML(t *testing.T) {
	out := Build(sample(t, "<script>alert(1)</script>")).HTML()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(out))
	require.NoError(t, err)

	assert.Equal(t, "Graph demo", strings.TrimSpace(doc.Find("h1").Text()))
	assert.Equal(t, 0, doc.Find("script").Length())

	rows := doc.Find("table tbody tr")
	require.Equal(t, 3, rows.Length())

	var kinds []string
	rows.Each(func(_ int, s *goquery.Selection) {
		kinds = append(kinds, strings.TrimSpace(s.Find("td").Eq(1).Text()))
	})
	assert.Equal(t, []string{"src", "double", "orphan"}, kinds)

	headers := doc.Find("table thead th")
	assert.Equal(t, 5, headers.Length())
	assert.Equal(t, "Missing inputs", strings.TrimSpace(headers.Eq(3).Text()))

	state := strings.TrimSpace(rows.Eq(2).Find("td").Eq(2).Text())
	assert.Equal(t, "stale", state)
}

func TestTerminal(t *testing.T) {
	out := Build(sample(t, 21)).Terminal()

	assert.Contains(t, out, "Graph demo")
	assert.Contains(t, out, "3 nodes: 2 fresh, 0 runnable, 1 stale")
	for _, want := range []string{"Kind", "Missing inputs", "src", "double", "orphan", "a, b", "x=21"} {
		assert.Contains(t, out, want)
	}
}

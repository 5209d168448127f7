package main

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/kailas-cloud/hybridsearch/pkg/sdk"
)

func TestAppCommands(t *testing.T) {
	app := newApp(&bytes.Buffer{})

	var names []string
	for _, cmd := range app.Commands {
		names = append(names, cmd.Name)
	}
	assert.Equal(t, []string{"search", "index", "ingest", "enqueue", "stats", "health"}, names)
}

func TestGlobalFlagDefaults(t *testing.T) {
	app := newApp(&bytes.Buffer{})

	defaults := map[string]string{}
	var dims int
	for _, flag := range app.Flags {
		switch f := flag.(type) {
		case *cli.StringFlag:
			defaults[f.Name] = f.Value
		case *cli.IntFlag:
			if f.Name == "dimensions" {
				dims = f.Value
			}
		}
	}
	assert.Equal(t, "localhost:6379", defaults["redis"])
	assert.Equal(t, "all-MiniLM-L6-v2", defaults["embedding-model"])
	assert.Equal(t, "warn", defaults["log-level"])
	assert.Equal(t, 384, dims)
}

func TestCommandsValidateArgsBeforeConnecting(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"search without query", []string{"hsctl", "search"}, "query is required"},
		{"ingest without urls", []string{"hsctl", "ingest"}, "at least one url"},
		{"index without content", []string{"hsctl", "index", "--url", "https://a"}, "content"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newApp(&bytes.Buffer{}).Run(tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSearchView(t *testing.T) {
	out := searchView(sdk.SearchResponse{
		Query:      "q",
		Mode:       sdk.ModeFused,
		TotalFound: 1,
		Results: []sdk.Result{{
			ID: "a", Title: "A", URL: "https://a", Content: "alpha", Score: 0.9,
			Features: map[string]float64{"lexical": 1},
		}},
		QueryTime: 1500 * time.Millisecond,
	})

	assert.Equal(t, "fused", out.Mode)
	assert.InDelta(t, 1.5, out.QueryTime, 1e-9)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "https://a", out.Results[0].URL)
	assert.Equal(t, 1.0, out.Results[0].Features["lexical"])
}

func TestIngestView(t *testing.T) {
	out := ingestView(sdk.IngestReport{
		Total: 2, Indexed: 1, Failed: 1, Committed: true,
		Duration: 1234567 * time.Microsecond,
		Outcomes: []sdk.SourceOutcome{
			{URL: "https://a", ID: "a", Status: "indexed"},
			{URL: "https://b", Status: "failed", Err: errors.New("fetch failed: 404")},
		},
	})

	assert.Equal(t, "1.235s", out.Duration)
	assert.Empty(t, out.Outcomes[0].Error)
	assert.Equal(t, "fetch failed: 404", out.Outcomes[1].Error)
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	app := newApp(&buf)
	app.Commands = append(app.Commands, &cli.Command{
		Name: "echo",
		Action: func(c *cli.Context) error {
			return printJSON(c, map[string]int{"appended": 2})
		},
	})

	require.NoError(t, app.Run([]string{"hsctl", "echo"}))
	assert.JSONEq(t, `{"appended": 2}`, buf.String())
}

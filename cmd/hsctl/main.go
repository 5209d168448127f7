// Command hsctl drives a hybridsearch index directly from the shell.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/kailas-cloud/hybridsearch/internal/logger"
	"github.com/kailas-cloud/hybridsearch/internal/version"
	"github.com/kailas-cloud/hybridsearch/pkg/sdk"
)

func main() {
	_ = godotenv.Load()

	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "hsctl:", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:    "hsctl",
		Usage:   "Query and feed a hybrid BM25 + vector search index",
		Version: version.Version,
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "redis",
				Usage:   "Redis address holding the index and crawl queue",
				Value:   "localhost:6379",
				EnvVars: []string{"REDIS_ADDR"},
			},
			&cli.StringFlag{
				Name:    "password",
				Usage:   "Redis password",
				EnvVars: []string{"REDIS_PASSWORD"},
			},
			&cli.StringFlag{
				Name:    "embedding-url",
				Usage:   "OpenAI-compatible embeddings endpoint",
				Value:   "http://localhost:8080/v1",
				EnvVars: []string{"EMBEDDING_BASE_URL"},
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Embedding model name",
				Value:   "all-MiniLM-L6-v2",
				EnvVars: []string{"EMBEDDING_MODEL"},
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "Embedding provider API key",
				EnvVars: []string{"EMBEDDING_API_KEY"},
			},
			&cli.IntFlag{
				Name:  "dimensions",
				Usage: "Embedding vector size",
				Value: 384,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Run a lexical, vector or fused query",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "mode",
						Aliases: []string{"m"},
						Usage:   "lexical, vector or fused",
						Value:   "fused",
					},
					&cli.IntFlag{Name: "rows", Aliases: []string{"n"}, Usage: "Number of results", Value: 10},
					&cli.IntFlag{Name: "rerank-docs", Usage: "Candidates drawn from each retriever", Value: 20},
				},
			},
			{
				Name:   "index",
				Usage:  "Embed and store one document",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "url", Usage: "Document URL", Required: true},
					&cli.StringFlag{Name: "title", Usage: "Document title"},
					&cli.StringFlag{Name: "content", Usage: "Document body", Required: true},
				},
			},
			{
				Name:      "ingest",
				Usage:     "Fetch, extract and index URLs, then commit",
				ArgsUsage: "<url>...",
				Action:    ingestCommand,
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "politeness",
						Usage: "Pause between fetches (negative disables)",
						Value: 2 * time.Second,
					},
				},
			},
			{
				Name:      "enqueue",
				Usage:     "Append URLs to the crawl queue",
				ArgsUsage: "<url>...",
				Action:    enqueueCommand,
			},
			{
				Name:   "stats",
				Usage:  "Show index size and queue length",
				Action: statsCommand,
			},
			{
				Name:   "health",
				Usage:  "Check index, queue and embedder",
				Action: healthCommand,
			},
		},
	}
}

// openClient builds an SDK client from the global flags.
func openClient(c *cli.Context, extra ...sdk.Option) (*sdk.Client, error) {
	log, err := logger.NewLogger("local", c.String("log-level"))
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	emb := sdk.NewOpenAIEmbedder(sdk.OpenAIConfig{
		BaseURL:    c.String("embedding-url"),
		APIKey:     c.String("api-key"),
		Model:      c.String("embedding-model"),
		Dimensions: c.Int("dimensions"),
		Timeout:    30 * time.Second,
	})

	opts := append([]sdk.Option{
		sdk.WithRedis(c.String("redis"), c.String("password")),
		sdk.WithEmbedder(emb),
		sdk.WithEmbeddingModel(c.String("embedding-model")),
		sdk.WithDimensions(c.Int("dimensions")),
		sdk.WithLogger(log),
	}, extra...)

	client, err := sdk.New(c.Context, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return client, nil
}

func commandContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
}

func searchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("query is required")
	}
	ctx, cancel := commandContext(c)
	defer cancel()

	client, err := openClient(c)
	if err != nil {
		return err
	}
	defer client.Close()

	resp, err := client.Search(ctx, sdk.Query{
		Text:       c.Args().First(),
		Mode:       sdk.SearchMode(c.String("mode")),
		Rows:       c.Int("rows"),
		RerankDocs: c.Int("rerank-docs"),
	})
	if err != nil {
		return err
	}
	return printJSON(c, searchView(resp))
}

func indexCommand(c *cli.Context) error {
	ctx, cancel := commandContext(c)
	defer cancel()

	client, err := openClient(c)
	if err != nil {
		return err
	}
	defer client.Close()

	res, err := client.Index(ctx, c.String("url"), c.String("title"), c.String("content"))
	if err != nil {
		return err
	}
	return printJSON(c, map[string]any{
		"id":                  res.ID,
		"embedding_dimension": res.EmbeddingDimension,
	})
}

func ingestCommand(c *cli.Context) error {
	urls := c.Args().Slice()
	if len(urls) == 0 {
		return errors.New("at least one url is required")
	}
	ctx, cancel := commandContext(c)
	defer cancel()

	client, err := openClient(c, sdk.WithPoliteness(c.Duration("politeness")))
	if err != nil {
		return err
	}
	defer client.Close()

	rep, err := client.Ingest(ctx, urls)
	if err != nil {
		return err
	}
	if err := printJSON(c, ingestView(rep)); err != nil {
		return err
	}
	if rep.CommitErr != nil {
		return fmt.Errorf("batch not committed: %w", rep.CommitErr)
	}
	return nil
}

func enqueueCommand(c *cli.Context) error {
	ctx, cancel := commandContext(c)
	defer cancel()

	client, err := openClient(c)
	if err != nil {
		return err
	}
	defer client.Close()

	res, err := client.Enqueue(ctx, c.Args().Slice())
	if err != nil {
		return err
	}
	return printJSON(c, map[string]any{
		"appended":     res.Appended,
		"queue_length": res.QueueLength,
	})
}

func statsCommand(c *cli.Context) error {
	ctx, cancel := commandContext(c)
	defer cancel()

	client, err := openClient(c)
	if err != nil {
		return err
	}
	defer client.Close()

	st, err := client.Stats(ctx)
	if err != nil {
		return err
	}
	return printJSON(c, map[string]any{
		"documents_indexed":  st.DocumentsIndexed,
		"crawl_queue_length": st.CrawlQueueLength,
		"embedding_model":    st.EmbeddingModel,
		"vector_dimension":   st.VectorDimension,
	})
}

func healthCommand(c *cli.Context) error {
	ctx, cancel := commandContext(c)
	defer cancel()

	client, err := openClient(c)
	if err != nil {
		return err
	}
	defer client.Close()

	h := client.Health(ctx)
	if err := printJSON(c, map[string]any{"status": h.Status, "services": h.Services}); err != nil {
		return err
	}
	if h.Status != "healthy" {
		return cli.Exit("", 2)
	}
	return nil
}

type resultView struct {
	ID       string             `json:"id"`
	Title    string             `json:"title"`
	URL      string             `json:"url"`
	Content  string             `json:"content"`
	Score    float64            `json:"score"`
	Features map[string]float64 `json:"features,omitempty"`
}

type searchOutput struct {
	Query      string       `json:"query"`
	Mode       string       `json:"mode"`
	TotalFound int          `json:"total_found"`
	Results    []resultView `json:"results"`
	QueryTime  float64      `json:"query_time"`
}

func searchView(r sdk.SearchResponse) searchOutput {
	out := searchOutput{
		Query:      r.Query,
		Mode:       string(r.Mode),
		TotalFound: r.TotalFound,
		Results:    make([]resultView, len(r.Results)),
		QueryTime:  r.QueryTime.Seconds(),
	}
	for i, res := range r.Results {
		out.Results[i] = resultView(res)
	}
	return out
}

type outcomeView struct {
	URL    string `json:"url"`
	ID     string `json:"id,omitempty"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type ingestOutput struct {
	Total     int           `json:"total"`
	Indexed   int           `json:"indexed"`
	Skipped   int           `json:"skipped"`
	Failed    int           `json:"failed"`
	Committed bool          `json:"committed"`
	Duration  string        `json:"duration"`
	Outcomes  []outcomeView `json:"outcomes"`
}

func ingestView(r sdk.IngestReport) ingestOutput {
	out := ingestOutput{
		Total:     r.Total,
		Indexed:   r.Indexed,
		Skipped:   r.Skipped,
		Failed:    r.Failed,
		Committed: r.Committed,
		Duration:  r.Duration.Round(time.Millisecond).String(),
		Outcomes:  make([]outcomeView, len(r.Outcomes)),
	}
	for i, o := range r.Outcomes {
		v := outcomeView{URL: o.URL, ID: o.ID, Status: o.Status}
		if o.Err != nil {
			v.Error = o.Err.Error()
		}
		out.Outcomes[i] = v
	}
	return out
}

func printJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}


// Package sdk embeds the hybridsearch engine in a Go program: hybrid BM25 and
// vector retrieval, direct indexing, web ingestion and the crawl queue,
// backed by Redis 8 with the search module.
//
//	emb := sdk.NewOpenAIEmbedder(sdk.OpenAIConfig{BaseURL: "http://localhost:8000/v1", Model: "all-MiniLM-L6-v2"})
//	client, err := sdk.New(ctx,
//	    sdk.WithRedis("localhost:6379", ""),
//	    sdk.WithEmbedder(emb),
//	    sdk.WithDimensions(384),
//	)
//	if err != nil { ... }
//	defer client.Close()
//
//	report, _ := client.Ingest(ctx, []string{"https://example.com/post"})
//	res, _ := client.Search(ctx, sdk.Query{Text: "hybrid retrieval", Mode: sdk.ModeFused, Rows: 5})
package sdk

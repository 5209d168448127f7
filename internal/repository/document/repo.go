package document

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/hybridsearch/internal/db"
	"github.com/kailas-cloud/hybridsearch/internal/domain"
	"github.com/kailas-cloud/hybridsearch/internal/repository/index"
)

// store is the consumer interface for the index writer (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Commit(ctx context.Context, opts db.CommitOptions) error
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo writes normalized documents to the search index.
type Repo struct {
	store  store
	layout index.Layout
	commit db.CommitOptions
}

// New creates a document repository.
func New(s store, layout index.Layout, commit db.CommitOptions) *Repo {
	return &Repo{store: s, layout: layout, commit: commit}
}

// Upsert stores a document under its deterministic key, overwriting any
// previous version of the same source.
func (r *Repo) Upsert(ctx context.Context, doc *domain.IndexableDocument) error {
	key := r.layout.DocKey(doc.ID)
	if err := r.store.HSet(ctx, key, toHash(doc)); err != nil {
		return fmt.Errorf("hset %s: %w", key, classify(err))
	}
	return nil
}

// Get loads a stored document by id.
func (r *Repo) Get(ctx context.Context, id string) (domain.IndexableDocument, error) {
	key := r.layout.DocKey(id)
	fields, err := r.store.HGetAll(ctx, key)
	if err != nil {
		return domain.IndexableDocument{}, fmt.Errorf("hgetall %s: %w", key, classify(err))
	}
	return fromHash(fields)
}

// Commit makes all writes issued so far durable.
func (r *Repo) Commit(ctx context.Context) error {
	if err := r.store.Commit(ctx, r.commit); err != nil {
		return fmt.Errorf("commit: %w", classify(err))
	}
	return nil
}

// Count returns the number of indexed documents.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.SearchCount(ctx, r.layout.Name(), "*")
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", r.layout.Name(), classify(err))
	}
	return n, nil
}

// classify tags connection-level store failures as index unavailability.
func classify(err error) error {
	if errors.Is(err, db.ErrUnavailable) {
		return fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	return err
}

func toHash(d *domain.IndexableDocument) map[string]string {
	crawled := d.CrawledAt.UTC()
	return map[string]string{
		index.FieldID:            d.ID,
		index.FieldURL:           d.URL,
		index.FieldTitle:         d.Title,
		index.FieldContent:       d.Content,
		index.FieldVector:        db.EncodeVector(d.Vector),
		index.FieldDomain:        d.Domain,
		index.FieldCrawlDate:     crawled.Format(time.RFC3339),
		index.FieldCrawlTS:       strconv.FormatInt(crawled.Unix(), 10),
		index.FieldPageRank:      strconv.FormatFloat(d.PageRank, 'f', -1, 64),
		index.FieldContentLength: strconv.Itoa(d.ContentLength),
	}
}

func fromHash(f map[string]string) (domain.IndexableDocument, error) {
	doc := domain.IndexableDocument{
		ID:      f[index.FieldID],
		URL:     f[index.FieldURL],
		Title:   f[index.FieldTitle],
		Content: f[index.FieldContent],
		Domain:  f[index.FieldDomain],
	}

	var err error
	if v, ok := f[index.FieldVector]; ok {
		if doc.Vector, err = db.DecodeVector(v); err != nil {
			return domain.IndexableDocument{}, fmt.Errorf("%w: %w", domain.ErrMalformedResponse, err)
		}
	}
	if v, ok := f[index.FieldCrawlDate]; ok {
		if doc.CrawledAt, err = time.Parse(time.RFC3339, v); err != nil {
			return domain.IndexableDocument{}, fmt.Errorf("%w: crawl_date: %w", domain.ErrMalformedResponse, err)
		}
	}
	if v, ok := f[index.FieldPageRank]; ok {
		if doc.PageRank, err = strconv.ParseFloat(v, 64); err != nil {
			return domain.IndexableDocument{}, fmt.Errorf("%w: page_rank: %w", domain.ErrMalformedResponse, err)
		}
	}
	if v, ok := f[index.FieldContentLength]; ok {
		if doc.ContentLength, err = strconv.Atoi(v); err != nil {
			return domain.IndexableDocument{}, fmt.Errorf("%w: content_length: %w", domain.ErrMalformedResponse, err)
		}
	}
	return doc, nil
}

package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/hybridsearch/internal/db"
)

// SearchKNN runs a KNN vector similarity search via FT.SEARCH.
// Scores are cosine similarities (1 - distance), clamped at 0.
func (s *Store) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if len(q.Vector) == 0 {
		return nil, fmt.Errorf("vector is required")
	}
	if q.K <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	field := q.VectorField
	if field == "" {
		field = "vector"
	}
	queryStr := fmt.Sprintf("*=>[KNN %d @%s $BLOB]", q.K, field)

	args := []string{q.IndexName, queryStr}

	if len(q.ReturnFields) > 0 {
		fields := append(append([]string{}, q.ReturnFields...), knnScoreField)
		args = append(args, "RETURN", strconv.Itoa(len(fields)))
		args = append(args, fields...)
	}

	args = append(args,
		"SORTBY", knnScoreField,
		"LIMIT", "0", strconv.Itoa(q.K),
		"PARAMS", "2", "BLOB", vectorToBytes(q.Vector),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, opErr(db.OpSearch, err)
	}

	return knnReply.parse(raw)
}

// SearchBM25 runs a BM25 text search via FT.SEARCH. Terms are OR-ed and
// escaped; field weights declared in the schema apply.
func (s *Store) SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if q.IndexName == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if len(q.Terms) == 0 {
		return nil, fmt.Errorf("at least one term is required")
	}
	if q.TopK <= 0 {
		return nil, fmt.Errorf("topK must be positive")
	}

	args := []string{q.IndexName, buildTextQuery(q.Fields, q.Terms)}

	if len(q.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(q.ReturnFields)))
		args = append(args, q.ReturnFields...)
	}

	args = append(args,
		"SCORER", "BM25",
		"WITHSCORES",
		"LIMIT", "0", strconv.Itoa(q.TopK),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, opErr(db.OpSearch, err)
	}

	return bm25Reply.parse(raw)
}

// SearchCount returns document count via FT.SEARCH with LIMIT 0 0.
func (s *Store) SearchCount(ctx context.Context, index, query string) (int, error) {
	cmd := s.b().Arbitrary("FT.SEARCH").Args(index, query, "LIMIT", "0", "0", "DIALECT", "2").Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return 0, opErr(db.OpSearch, err)
	}
	if len(raw) == 0 {
		return 0, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return int(total), nil
}

// --- Result parsing ---

const knnScoreField = "__vector_score"

// reply describes the FT.SEARCH layout: WITHSCORES adds a score after each
// key, otherwise the score is read from a returned field.
type reply struct {
	withScores bool
	scoreField string
	// toScore maps the raw number to a similarity.
	toScore func(float64) float64
}

var (
	bm25Reply = reply{withScores: true, toScore: func(v float64) float64 { return v }}
	// Cosine distance to similarity, clamped at 0.
	knnReply = reply{scoreField: knnScoreField, toScore: func(d float64) float64 { return max(0, 1-d) }}
)

// parse decodes [total, key, (score,) fields, ...]. Any entry with a
// missing key, field list or score fails the whole reply with db.ErrBadReply.
func (r reply) parse(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w: %w", err, db.ErrBadReply)
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	stride := 2
	if r.withScores {
		stride = 3
	}
	if (len(raw)-1)%stride != 0 {
		return nil, fmt.Errorf("%d trailing elements after %d entries: %w",
			(len(raw)-1)%stride, (len(raw)-1)/stride, db.ErrBadReply)
	}
	entries := make([]db.SearchEntry, 0, (len(raw)-1)/stride)
	for i := 1; i < len(raw); i += stride {
		e, err := r.entry(raw[i : i+stride])
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", len(entries), err)
		}
		entries = append(entries, e)
	}
	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func (r reply) entry(group []rueidis.RedisMessage) (db.SearchEntry, error) {
	if !group[0].IsString() {
		return db.SearchEntry{}, fmt.Errorf("key: %w", db.ErrBadReply)
	}
	key, err := group[0].ToString()
	if err != nil {
		return db.SearchEntry{}, fmt.Errorf("key: %w", db.ErrBadReply)
	}
	last := group[len(group)-1]
	if !last.IsArray() {
		return db.SearchEntry{}, fmt.Errorf("%s: fields: %w", key, db.ErrBadReply)
	}
	fields, err := last.ToArray()
	if err != nil {
		return db.SearchEntry{}, fmt.Errorf("%s: fields: %w", key, db.ErrBadReply)
	}
	e := db.SearchEntry{Key: key, Fields: parseFieldPairs(fields)}

	var rawScore string
	if r.withScores {
		if !group[1].IsString() {
			return db.SearchEntry{}, fmt.Errorf("%s: score: %w", key, db.ErrBadReply)
		}
		if rawScore, err = group[1].ToString(); err != nil {
			return db.SearchEntry{}, fmt.Errorf("%s: score: %w", key, db.ErrBadReply)
		}
	} else {
		var ok bool
		if rawScore, ok = e.Fields[r.scoreField]; !ok {
			return db.SearchEntry{}, fmt.Errorf("%s: missing %s: %w", key, r.scoreField, db.ErrBadReply)
		}
		delete(e.Fields, r.scoreField)
	}
	v, err := strconv.ParseFloat(rawScore, 64)
	if err != nil {
		return db.SearchEntry{}, fmt.Errorf("%s: score %q: %w", key, rawScore, db.ErrBadReply)
	}
	e.Score = r.toScore(v)
	return e, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		if !fields[j].IsString() || !fields[j+1].IsString() {
			continue
		}
		name, nerr := fields[j].ToString()
		value, verr := fields[j+1].ToString()
		if nerr == nil && verr == nil {
			m[name] = value
		}
	}
	return m
}

// --- Query helpers ---

// buildTextQuery renders "@f1|f2:(t1 | t2)", or "(t1 | t2)" without fields.
func buildTextQuery(fields, terms []string) string {
	escaped := make([]string, len(terms))
	for i, t := range terms {
		escaped[i] = escapeQuery(t)
	}
	body := "(" + strings.Join(escaped, " | ") + ")"
	if len(fields) == 0 {
		return body
	}
	return "@" + strings.Join(fields, "|") + ":" + body
}

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`:`, `\:`,
	`.`, `\.`,
	`,`, `\,`,
	`/`, `\/`,
	` `, `\ `,
)

func vectorToBytes(v []float32) string {
	return db.EncodeVector(v)
}

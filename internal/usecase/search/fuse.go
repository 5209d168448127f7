package search

import (
	"slices"

	"github.com/kailas-cloud/hybridsearch/internal/domain/search/result"
)

// Weights scales normalized retriever scores during fusion.
type Weights struct {
	LexicalOnly float64
	BothLexical float64
	BothVector  float64
	VectorOnly  float64
}

// DefaultWeights favour lexical evidence: a document found by both
// retrievers scores 0.6*lexical + 0.4*vector.
func DefaultWeights() Weights {
	return Weights{LexicalOnly: 1.0, BothLexical: 0.6, BothVector: 0.4, VectorOnly: 0.4}
}

// Fuse merges two ranked lists into one. Each list is divided by its own
// maximum score, documents are merged by ID in first-appearance order
// (lexical list first), combined with w, stably sorted by descending score
// and cut to rows. A document present in both lists keeps the lexical
// record's title, url and content.
//
// Max normalization is sensitive to a single outlier score; that is accepted.
func Fuse(lexical, vector []result.ScoredDocument, rows int, w Weights) []result.Fused {
	nl := normalize(lexical)
	nv := normalize(vector)

	type entry struct {
		doc     result.ScoredDocument
		lexical float64
		vector  float64
		inLex   bool
		inVec   bool
	}

	order := make([]string, 0, len(lexical)+len(vector))
	byID := make(map[string]*entry, len(lexical)+len(vector))

	for i, d := range lexical {
		if e, ok := byID[d.ID()]; ok {
			// Duplicate id within one list: keep the better normalized score.
			e.lexical = max(e.lexical, nl[i])
			continue
		}
		byID[d.ID()] = &entry{doc: d, lexical: nl[i], inLex: true}
		order = append(order, d.ID())
	}
	for i, d := range vector {
		e, ok := byID[d.ID()]
		if !ok {
			e = &entry{doc: d}
			byID[d.ID()] = e
			order = append(order, d.ID())
		}
		if e.inVec {
			e.vector = max(e.vector, nv[i])
			continue
		}
		e.vector = nv[i]
		e.inVec = true
	}

	out := make([]result.Fused, 0, len(order))
	for _, id := range order {
		e := byID[id]
		var (
			score float64
			p     result.Provenance
		)
		switch {
		case e.inLex && e.inVec:
			score = w.BothLexical*e.lexical + w.BothVector*e.vector
			p = result.FromBoth
		case e.inLex:
			score = w.LexicalOnly * e.lexical
			p = result.FromLexical
		default:
			score = w.VectorOnly * e.vector
			p = result.FromVector
		}
		out = append(out, result.NewFused(e.doc, score, p, e.lexical, e.vector))
	}

	slices.SortStableFunc(out, func(a, b result.Fused) int {
		switch {
		case a.Score() > b.Score():
			return -1
		case a.Score() < b.Score():
			return 1
		default:
			return 0
		}
	})

	if rows >= 0 && len(out) > rows {
		out = out[:rows]
	}
	return out
}

// normalize divides every score by the set maximum. A set whose maximum is
// not positive normalizes to zeros.
func normalize(docs []result.ScoredDocument) []float64 {
	out := make([]float64, len(docs))
	var top float64
	for i := range docs {
		top = max(top, docs[i].Score())
	}
	if top <= 0 {
		return out
	}
	for i := range docs {
		out[i] = docs[i].Score() / top
	}
	return out
}

package result

// Feature names attached to fused results.
const (
	FeatureLexical = "lexical"
	FeatureVector  = "vector"
)

// Provenance records which retrievers contributed a fused result.
type Provenance string

// Provenance values.
const (
	FromLexical Provenance = "lexical"
	FromVector  Provenance = "vector"
	FromBoth    Provenance = "both"
)

// ScoredDocument is a single search hit. Score scale depends on the producer:
// native BM25 or cosine similarity for single-retriever results, fused otherwise.
type ScoredDocument struct {
	id       string
	title    string
	url      string
	content  string
	score    float64
	features map[string]float64
}

// New creates a scored document.
func New(id, title, url, content string, score float64) ScoredDocument {
	return ScoredDocument{id: id, title: title, url: url, content: content, score: score}
}

// ID returns the document identifier.
func (d *ScoredDocument) ID() string { return d.id }

// Title returns the document title.
func (d *ScoredDocument) Title() string { return d.title }

// URL returns the source location.
func (d *ScoredDocument) URL() string { return d.url }

// Content returns the display content (possibly truncated).
func (d *ScoredDocument) Content() string { return d.content }

// Score returns the relevance score.
func (d *ScoredDocument) Score() float64 { return d.score }

// Features returns named numeric features, nil when none were attached.
func (d *ScoredDocument) Features() map[string]float64 { return d.features }

// WithContent returns a copy carrying different display content.
func (d ScoredDocument) WithContent(content string) ScoredDocument {
	d.content = content
	return d
}

// Fused is a ScoredDocument produced by score fusion.
type Fused struct {
	ScoredDocument
	provenance Provenance
}

// NewFused creates a fused result. The normalized per-retriever scores that
// contributed are exposed as features.
func NewFused(doc ScoredDocument, score float64, p Provenance, lexical, vector float64) Fused {
	doc.score = score
	doc.features = make(map[string]float64, 2)
	if p != FromVector {
		doc.features[FeatureLexical] = lexical
	}
	if p != FromLexical {
		doc.features[FeatureVector] = vector
	}
	return Fused{ScoredDocument: doc, provenance: p}
}

// Provenance reports which retrievers contributed this result.
func (f *Fused) Provenance() Provenance { return f.provenance }

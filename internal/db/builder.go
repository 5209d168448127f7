package db

import "strings"

// IndexBuilder assembles an IndexDefinition over hashes.
type IndexBuilder struct {
	def IndexDefinition
}

// NewIndex starts building an FT index definition.
func NewIndex(name string) *IndexBuilder {
	return &IndexBuilder{def: IndexDefinition{Name: name, StorageType: StorageHash}}
}

// Prefix adds key prefixes covered by the index.
func (b *IndexBuilder) Prefix(prefixes ...string) *IndexBuilder {
	b.def.Prefixes = append(b.def.Prefixes, prefixes...)
	return b
}

// Language sets the stemming language for TEXT fields.
func (b *IndexBuilder) Language(lang string) *IndexBuilder {
	b.def.Language = lang
	return b
}

// Stopwords replaces the stopword list. No arguments disables stopwords.
func (b *IndexBuilder) Stopwords(words ...string) *IndexBuilder {
	b.def.Stopwords = append([]string{}, words...)
	return b
}

// Numeric adds a NUMERIC field.
func (b *IndexBuilder) Numeric(name string, sortable bool) *IndexBuilder {
	return b.field(IndexField{Name: name, Type: IndexFieldNumeric, Sortable: sortable})
}

// Tag adds a TAG field.
func (b *IndexBuilder) Tag(name string) *IndexBuilder {
	return b.field(IndexField{Name: name, Type: IndexFieldTag})
}

// Text adds a BM25-scored TEXT field with the given weight.
func (b *IndexBuilder) Text(name string, weight float64) *IndexBuilder {
	return b.field(IndexField{Name: name, Type: IndexFieldText, TextWeight: weight})
}

// TextNoStem adds a TEXT field matched on exact terms only.
func (b *IndexBuilder) TextNoStem(name string, weight float64) *IndexBuilder {
	return b.field(IndexField{Name: name, Type: IndexFieldText, TextWeight: weight, NoStem: true})
}

// VectorHNSW adds an HNSW FLOAT32 vector field exposed under alias.
func (b *IndexBuilder) VectorHNSW(name, alias string, dim int, distance DistanceMetric, m, efConstruct int) *IndexBuilder {
	return b.field(IndexField{
		Name:              name,
		Alias:             alias,
		Type:              IndexFieldVector,
		VectorDim:         dim,
		VectorDistance:    distance,
		VectorM:           m,
		VectorEFConstruct: efConstruct,
	})
}

func (b *IndexBuilder) field(f IndexField) *IndexBuilder {
	b.def.Fields = append(b.def.Fields, f)
	return b
}

// Build validates and returns the index definition.
func (b *IndexBuilder) Build() (*IndexDefinition, error) {
	if err := b.def.Validate(); err != nil {
		return nil, err
	}
	def := b.def
	return &def, nil
}

// MustBuild calls Build and panics on error.
func (b *IndexBuilder) MustBuild() *IndexDefinition {
	def, err := b.Build()
	if err != nil {
		panic(err)
	}
	return def
}

// String renders the full FT.CREATE command for logs.
func (idx *IndexDefinition) String() string {
	args, err := idx.Args()
	if err != nil {
		return "FT.CREATE " + idx.Name + " (invalid: " + err.Error() + ")"
	}
	return "FT.CREATE " + strings.Join(args, " ")
}

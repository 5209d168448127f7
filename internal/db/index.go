package db

import (
	"errors"
	"fmt"
	"strconv"
)

// StorageType is the FT index source. Documents are always hashes here.
type StorageType string

// StorageHash stores documents as Redis hashes.
const StorageHash StorageType = "HASH"

// DistanceMetric used by KNN queries.
type DistanceMetric string

// Supported KNN metrics.
const (
	DistanceL2     DistanceMetric = "L2"
	DistanceIP     DistanceMetric = "IP"
	DistanceCosine DistanceMetric = "COSINE"
)

// IndexFieldType enumerates supported FT index field types.
type IndexFieldType int

const (
	// IndexFieldNumeric is a numeric field.
	IndexFieldNumeric IndexFieldType = iota
	// IndexFieldTag is an exact-match tag field.
	IndexFieldTag
	// IndexFieldText is a full-text field scored by BM25.
	IndexFieldText
	// IndexFieldVector is an HNSW FLOAT32 vector field.
	IndexFieldVector
)

// IndexField describes a single field in an FT index schema.
type IndexField struct {
	Name  string
	Alias string // AS alias in FT.CREATE SCHEMA
	Type  IndexFieldType

	// TEXT
	TextWeight float64 // WEIGHT, 1.0 when zero
	NoStem     bool

	// NUMERIC and TEXT
	Sortable bool

	// VECTOR
	VectorDim         int
	VectorDistance    DistanceMetric
	VectorM           int // max edges per node, server default 16
	VectorEFConstruct int // build-time candidate list, server default 200
}

// IndexDefinition is a complete FT.CREATE request.
type IndexDefinition struct {
	Name        string
	StorageType StorageType
	Prefixes    []string

	// Language selects the stemmer, e.g. "english". Empty keeps the server default.
	Language string
	// Stopwords replaces the server stopword list when non-nil. An empty,
	// non-nil slice disables stopwords.
	Stopwords []string

	Fields []IndexField
}

// Validate checks that the index definition is well-formed.
func (idx *IndexDefinition) Validate() error {
	if idx.Name == "" {
		return errors.New("index name is required")
	}
	if !IsValidIdentifier(idx.Name) {
		return errors.New("index name contains invalid characters")
	}
	if len(idx.Fields) == 0 {
		return errors.New("at least one field is required")
	}

	seen := make(map[string]bool, len(idx.Fields))
	for i := range idx.Fields {
		f := &idx.Fields[i]
		if f.Name == "" {
			return fmt.Errorf("field name is required at index %d", i)
		}
		key := f.Name
		if f.Alias != "" {
			key = f.Alias
		}
		if seen[key] {
			return errors.New("duplicate field name: " + key)
		}
		seen[key] = true

		switch f.Type {
		case IndexFieldVector:
			if f.VectorDim <= 0 {
				return errors.New("vector field requires positive DIM")
			}
		case IndexFieldText:
			if f.TextWeight < 0 {
				return errors.New("text field " + f.Name + " has negative weight")
			}
		case IndexFieldNumeric, IndexFieldTag:
		default:
			return fmt.Errorf("field %s: unknown type %d", f.Name, f.Type)
		}
	}

	return nil
}

// Args renders the FT.CREATE arguments that follow the command name.
func (idx *IndexDefinition) Args() ([]string, error) {
	if err := idx.Validate(); err != nil {
		return nil, err
	}

	storage := idx.StorageType
	if storage == "" {
		storage = StorageHash
	}
	args := []string{idx.Name, "ON", string(storage)}

	if len(idx.Prefixes) > 0 {
		args = append(args, "PREFIX", strconv.Itoa(len(idx.Prefixes)))
		args = append(args, idx.Prefixes...)
	}
	if idx.Language != "" {
		args = append(args, "LANGUAGE", idx.Language)
	}
	if idx.Stopwords != nil {
		args = append(args, "STOPWORDS", strconv.Itoa(len(idx.Stopwords)))
		args = append(args, idx.Stopwords...)
	}

	args = append(args, "SCHEMA")
	for i := range idx.Fields {
		args = append(args, idx.Fields[i].args()...)
	}
	return args, nil
}

func (f *IndexField) args() []string {
	args := []string{f.Name}
	if f.Alias != "" {
		args = append(args, "AS", f.Alias)
	}

	switch f.Type {
	case IndexFieldNumeric:
		args = append(args, "NUMERIC")
	case IndexFieldTag:
		args = append(args, "TAG")
	case IndexFieldText:
		args = append(args, "TEXT")
		if f.TextWeight > 0 && f.TextWeight != 1 {
			args = append(args, "WEIGHT", strconv.FormatFloat(f.TextWeight, 'f', -1, 64))
		}
		if f.NoStem {
			args = append(args, "NOSTEM")
		}
	case IndexFieldVector:
		return append(args, f.vectorArgs()...)
	}

	if f.Sortable {
		args = append(args, "SORTABLE")
	}
	return args
}

func (f *IndexField) vectorArgs() []string {
	distance := f.VectorDistance
	if distance == "" {
		distance = DistanceCosine
	}

	attrs := []string{
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(f.VectorDim),
		"DISTANCE_METRIC", string(distance),
	}
	if f.VectorM > 0 {
		attrs = append(attrs, "M", strconv.Itoa(f.VectorM))
	}
	if f.VectorEFConstruct > 0 {
		attrs = append(attrs, "EF_CONSTRUCTION", strconv.Itoa(f.VectorEFConstruct))
	}

	return append([]string{"VECTOR", "HNSW", strconv.Itoa(len(attrs))}, attrs...)
}

// IsValidIdentifier reports whether s matches [a-zA-Z0-9_:-]+.
func IsValidIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '_' || r == ':' || r == '-':
		default:
			return false
		}
	}
	return true
}

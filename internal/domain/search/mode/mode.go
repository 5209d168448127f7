package mode

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/hybridsearch/internal/domain"
)

// Mode is the retrieval strategy.
type Mode string

// Search mode constants.
const (
	// Lexical ranks by BM25 term statistics only.
	Lexical Mode = "lexical"
	// Vector ranks by embedding similarity only.
	Vector Mode = "vector"
	// Fused blends normalized lexical and vector scores.
	Fused Mode = "fused"
)

// aliases accepts the legacy wire names.
var aliases = map[string]Mode{
	"bm25":   Lexical,
	"hybrid": Fused,
}

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == Lexical || m == Vector || m == Fused
}

// Parse resolves a wire value (case-insensitive, legacy aliases allowed).
// Empty input yields def.
func Parse(s string, def Mode) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return def, nil
	}
	if m, ok := aliases[s]; ok {
		return m, nil
	}
	if m := Mode(s); m.IsValid() {
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrInvalidMode, s)
}

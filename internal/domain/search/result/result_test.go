package result

import "testing"

func TestNew(t *testing.T) {
	d := New("doc-1", "Title", "https://x", "hello", 0.95)

	if d.ID() != "doc-1" {
		t.Errorf("ID() = %q", d.ID())
	}
	if d.Title() != "Title" || d.URL() != "https://x" || d.Content() != "hello" {
		t.Errorf("unexpected fields: %+v", d)
	}
	if d.Score() != 0.95 {
		t.Errorf("Score() = %f", d.Score())
	}
	if d.Features() != nil {
		t.Errorf("Features() = %v, want nil", d.Features())
	}
}

func TestWithContent_Copies(t *testing.T) {
	d := New("a", "", "", "long body", 1)
	short := d.WithContent("long...")

	if d.Content() != "long body" {
		t.Errorf("original mutated: %q", d.Content())
	}
	if short.Content() != "long..." {
		t.Errorf("copy content = %q", short.Content())
	}
}

func TestNewFused_Features(t *testing.T) {
	base := New("b", "B", "", "", 5)

	both := NewFused(base, 0.7, FromBoth, 0.5, 1.0)
	if both.Score() != 0.7 || both.Provenance() != FromBoth {
		t.Errorf("unexpected fused: score=%v provenance=%v", both.Score(), both.Provenance())
	}
	if both.Features()[FeatureLexical] != 0.5 || both.Features()[FeatureVector] != 1.0 {
		t.Errorf("features = %v", both.Features())
	}

	lex := NewFused(base, 1.0, FromLexical, 1.0, 0)
	if _, ok := lex.Features()[FeatureVector]; ok {
		t.Error("lexical-only result must not carry a vector feature")
	}

	if base.Score() != 5 || base.Features() != nil {
		t.Error("NewFused must not mutate its input")
	}
}

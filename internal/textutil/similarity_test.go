package textutil

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Gibson   Guitar  Corp ", "gibson guitar corp"},
		{"FENDER", "fender"},
		{"Höfner", "hofner"},
		{"\tPRS\nGuitars", "prs guitars"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFoldKeyKeepsDiacritics(t *testing.T) {
	if FoldKey("GIBSON  Guitar") != FoldKey("gibson guitar") {
		t.Fatal("expected case and whitespace to fold")
	}
	if FoldKey("Höfner") == FoldKey("Hofner") {
		t.Fatal("expected diacritics to remain significant in identity keys")
	}
}

func TestSimilarityReflexive(t *testing.T) {
	for _, name := range []string{"", "a", "Gibson", "Paul Reed Smith Guitars"} {
		if got := Similarity(name, name); got != 1 {
			t.Errorf("Similarity(%q, %q) = %v, want 1", name, name, got)
		}
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	pairs := [][2]string{
		{"Gibson", "Gibsen"},
		{"Fender Musical Instruments", "Fender"},
		{"", "Ibanez"},
		{"Rickenbacker", "Rickenbaker"},
	}
	for _, p := range pairs {
		ab := Similarity(p[0], p[1])
		ba := Similarity(p[1], p[0])
		if ab != ba {
			t.Errorf("Similarity not symmetric for %q/%q: %v vs %v", p[0], p[1], ab, ba)
		}
	}
}

func TestSimilarityCaseAndWhitespaceInsensitive(t *testing.T) {
	if got := Similarity("  fender ", "FENDER"); got != 1 {
		t.Fatalf("expected normalized names to score 1, got %v", got)
	}
}

func TestSimilaritySingleEditBounded(t *testing.T) {
	base := "Gibson Guitar Corporation"
	edited := "Gibson Guitar Corporatoin"
	got := Similarity(base, edited)
	want := 1 - 2.0/25.0
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("Similarity = %v, want %v", got, want)
	}
	oneEdit := Similarity(base, "Gibson Guitar Corporatio")
	if math.Abs(oneEdit-(1-1.0/25.0)) > 1e-9 {
		t.Fatalf("single deletion should cost 1/25, got %v", oneEdit)
	}
}

func TestSimilarityRange(t *testing.T) {
	if got := Similarity("abc", "xyz"); got != 0 {
		t.Fatalf("disjoint names should score 0, got %v", got)
	}
	if got := Similarity("", "abc"); got != 0 {
		t.Fatalf("empty vs non-empty should score 0, got %v", got)
	}
}

func TestScorerReuse(t *testing.T) {
	s := NewScorer("Martin")
	candidates := []string{"martin", "Martn", "Marten Guitars", "Taylor", "MARTIN "}
	for _, c := range candidates {
		if got, want := s.Score(c), Similarity("Martin", c); got != want {
			t.Errorf("Score(%q) = %v, Similarity = %v", c, got, want)
		}
	}
}

func BenchmarkScorerHundredsOfCandidates(b *testing.B) {
	names := make([]string, 0, 500)
	for i := 0; i < 500; i++ {
		names = append(names, "Manufacturer Number "+string(rune('A'+i%26))+string(rune('a'+i%23)))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s := NewScorer("Manufacturer Number Qx")
		for _, n := range names {
			s.Score(n)
		}
	}
}

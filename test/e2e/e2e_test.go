package e2e

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/hyperjump/konomi/internal/classify"
	"github.com/hyperjump/konomi/internal/interest"
	"github.com/hyperjump/konomi/internal/store"
)

// writeTable marshals the corpus domains into a classification table file.
func writeTable(t *testing.T, dir string, domains map[string]string) string {
	t.Helper()
	data, err := json.Marshal(map[string]interface{}{
		"version": 1,
		"domains": domains,
	})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "domains.json")
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func loadCorpusClassifier(t *testing.T, corpus *Corpus) *classify.Classifier {
	t.Helper()
	tablePath := writeTable(t, t.TempDir(), corpus.Domains)
	table, err := classify.LoadTable(tablePath)
	if err != nil {
		t.Fatal(err)
	}
	return classify.NewClassifier(table)
}

func expectedVector(t *testing.T, expected map[string]uint32) interest.Vector {
	t.Helper()
	var v interest.Vector
	for category, count := range expected {
		it, err := interest.Parse(category)
		if err != nil {
			t.Fatal(err)
		}
		v[it] = count
	}
	return v
}

func TestE2E_SessionsProduceExpectedProfiles(t *testing.T) {
	corpus := BuildCorpus()
	classifier := loadCorpusClassifier(t, corpus)

	for _, session := range corpus.Sessions {
		t.Run(session.Name, func(t *testing.T) {
			st, err := store.New(filepath.Join(t.TempDir(), "konomi.db"), classifier)
			if err != nil {
				t.Fatal(err)
			}
			defer st.Close()

			got, err := st.Ingest(context.Background(), session.URLs)
			if err != nil {
				t.Fatalf("ingest: %v", err)
			}
			want := expectedVector(t, session.Expected)
			if got != want {
				t.Errorf("vector = %v, want %v", got, want)
			}
		})
	}
}

func TestE2E_CumulativeProfileSurvivesReopen(t *testing.T) {
	corpus := BuildCorpus()
	classifier := loadCorpusClassifier(t, corpus)
	dbPath := filepath.Join(t.TempDir(), "konomi.db")

	var want interest.Vector
	for _, session := range corpus.Sessions {
		st, err := store.New(dbPath, classifier)
		if err != nil {
			t.Fatalf("session %q: %v", session.Name, err)
		}
		if _, err := st.Ingest(context.Background(), session.URLs); err != nil {
			t.Fatalf("session %q: ingest: %v", session.Name, err)
		}
		if err := st.Close(); err != nil {
			t.Fatalf("session %q: close: %v", session.Name, err)
		}
		want = want.Merge(expectedVector(t, session.Expected))
	}

	st, err := store.New(dbPath, classifier)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	got, err := st.UserInterestVector(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Errorf("vector after reopen = %v, want %v", got, want)
	}
}

func TestE2E_MetricsWithinScaleAndMonotone(t *testing.T) {
	corpus := BuildCorpus()
	classifier := loadCorpusClassifier(t, corpus)

	st, err := store.New(filepath.Join(t.TempDir(), "konomi.db"), classifier)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	for _, session := range corpus.Sessions {
		if _, err := st.Ingest(context.Background(), session.URLs); err != nil {
			t.Fatalf("session %q: %v", session.Name, err)
		}
	}

	metrics, err := st.CalculateMetrics(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	values := []uint32{
		metrics.TopSingleInterestSimilarity,
		metrics.Top2InterestSimilarity,
		metrics.Top3InterestSimilarity,
	}
	for i, v := range values {
		if v > 1000 {
			t.Errorf("metric %d = %d, want <= 1000", i, v)
		}
	}
	if metrics.Top2InterestSimilarity < metrics.TopSingleInterestSimilarity {
		t.Errorf("top-2 %d < top-1 %d", metrics.Top2InterestSimilarity, metrics.TopSingleInterestSimilarity)
	}
	if metrics.Top3InterestSimilarity < metrics.Top2InterestSimilarity {
		t.Errorf("top-3 %d < top-2 %d", metrics.Top3InterestSimilarity, metrics.Top2InterestSimilarity)
	}
	if metrics.TopSingleInterestSimilarity == 0 {
		t.Error("expected non-zero top-1 similarity for a populated profile")
	}
}

func TestE2E_ReferenceScores(t *testing.T) {
	corpus := BuildCorpus()
	classifier := loadCorpusClassifier(t, corpus)

	var sportsRef, foodRef interest.Vector
	sportsRef[interest.Sports] = 10
	foodRef[interest.Food] = 10
	st, err := store.New(filepath.Join(t.TempDir(), "konomi.db"), classifier,
		store.WithReferences(map[string]interest.Vector{
			"sports_profile": sportsRef,
			"food_profile":   foodRef,
		}))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	// The sports-only session yields a pure sports profile.
	var sportsSession *Session
	for i := range corpus.Sessions {
		if corpus.Sessions[i].Name == "sports weekend" {
			sportsSession = &corpus.Sessions[i]
		}
	}
	if sportsSession == nil {
		t.Fatal("corpus is missing the sports weekend session")
	}
	if _, err := st.Ingest(context.Background(), sportsSession.URLs); err != nil {
		t.Fatal(err)
	}

	scores, err := st.CompareReferences(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	bySample := make(map[string]uint32, len(scores))
	for _, score := range scores {
		bySample[score.Name] = score.Similarity
	}
	if got := bySample["sports_profile"]; got != 1000 {
		t.Errorf("sports_profile similarity = %d, want 1000", got)
	}
	if got := bySample["food_profile"]; got != 0 {
		t.Errorf("food_profile similarity = %d, want 0", got)
	}
}

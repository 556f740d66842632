// Package cli provides CLI output helpers for Konomi.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/hyperjump/konomi/internal/interest"
	"github.com/hyperjump/konomi/internal/store"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// WriteVector writes an interest vector to w in the given format. Text output
// lists every category in taxonomy order so profiles are easy to diff.
func WriteVector(w io.Writer, vec interest.Vector, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(vec)
	default:
		writeVectorText(w, vec)
		return nil
	}
}

func writeVectorText(w io.Writer, vec interest.Vector) {
	fmt.Fprintf(w, "total: %d\n\n", vec.Total())
	for _, it := range interest.All() {
		fmt.Fprintf(w, "%-13s %d\n", it.String()+":", vec[it])
	}
}

// WriteMetrics writes interest metrics to w in the given format.
func WriteMetrics(w io.Writer, metrics interest.Metrics, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(metrics)
	default:
		fmt.Fprintf(w, "top_single_interest_similarity: %4d   # cosine vs strongest category, 0-1000\n", metrics.TopSingleInterestSimilarity)
		fmt.Fprintf(w, "top_2_interest_similarity:      %4d\n", metrics.Top2InterestSimilarity)
		fmt.Fprintf(w, "top_3_interest_similarity:      %4d\n", metrics.Top3InterestSimilarity)
		return nil
	}
}

// WriteReferences writes reference similarity scores to w in the given format.
func WriteReferences(w io.Writer, scores []store.ReferenceScore, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(scores)
	default:
		if len(scores) == 0 {
			fmt.Fprintln(w, "no reference vectors configured")
			return nil
		}
		for _, score := range scores {
			fmt.Fprintf(w, "%-24s %4d\n", score.Name, score.Similarity)
		}
		return nil
	}
}

// WriteStatus writes store stats to w in the given format.
func WriteStatus(w io.Writer, stats store.Stats, format OutputFormat) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)
	default:
		fmt.Fprintf(w, "state:          %s\n", stats.State)
		fmt.Fprintf(w, "db_path:        %s\n", stats.DBPath)
		fmt.Fprintf(w, "db_size_bytes:  %d\n", stats.DBSizeBytes)
		fmt.Fprintf(w, "total_count:    %d   # visits folded into the vector\n", stats.TotalCount)
		fmt.Fprintf(w, "table_size:     %d   # classification table entries\n", stats.TableSize)
		fmt.Fprintf(w, "references:     %d\n", stats.References)
		return nil
	}
}

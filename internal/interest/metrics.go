package interest

// Metrics holds the similarity scores that validate a user's interest vector.
// Each value is a cosine similarity scaled by 1000 and rounded, so it is an
// integer in [0, 1000]. The reference for each score is the user's own vector
// restricted to its top 1, 2, or 3 categories; an all-zero vector scores zero
// everywhere.
type Metrics struct {
	TopSingleInterestSimilarity uint32 `json:"top_single_interest_similarity"`
	Top2InterestSimilarity      uint32 `json:"top_2_interest_similarity"`
	Top3InterestSimilarity      uint32 `json:"top_3_interest_similarity"`
}

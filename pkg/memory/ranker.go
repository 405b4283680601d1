package memory

import "sort"

// Fuse blends similarity-search results and keyword-scan results into
// one ranked list.
//
// Each similarity result contributes alpha * (1 - score): the native
// score is treated as a cosine distance and converted to a complement
// weight. Each keyword result contributes (1 - alpha) * rank, where
// rank decays linearly by scan position ((i+1)/n) since the scan has
// no score of its own. An item appearing in both sets is represented
// once with its contributions summed. The union is sorted descending
// by accumulated score, ties keeping original encounter order, and
// truncated to the top three results.
//
// alpha = 1 degenerates to pure similarity ordering, alpha = 0 to pure
// keyword-rank ordering. An empty keyword set contributes nothing; the
// rank denominator is never zero.
func Fuse(similarity []ScoredPoint, keyword []ScoredPoint, alpha float64) []RankedResult {
	scores := make(map[string]float64, len(similarity)+len(keyword))
	order := make([]ScoredPoint, 0, len(similarity)+len(keyword))
	seen := make(map[string]bool, len(similarity)+len(keyword))

	for _, item := range similarity {
		scores[item.ID] += alpha * (1 - item.Score)

		if !seen[item.ID] {
			seen[item.ID] = true
			order = append(order, item)
		}
	}

	for position, item := range keyword {
		rank := float64(position+1) / float64(len(keyword))
		scores[item.ID] += (1 - alpha) * rank

		if !seen[item.ID] {
			seen[item.ID] = true
			order = append(order, item)
		}
	}

	results := make([]RankedResult, 0, len(order))

	for _, item := range order {
		results = append(results, RankedResult{
			Episode: episodeFromPayload(item.ID, item.Payload),
			Score:   scores[item.ID],
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topResults {
		results = results[:topResults]
	}

	return results
}

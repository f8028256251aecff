package simulation

import "github.com/nvandessel/conjoint/internal/models"

// TaskShares is the fraction of respondents choosing each concept in a task.
type TaskShares struct {
	Task   int             `json:"task"`
	Shares map[int]float64 `json:"shares"` // concept -> share in [0, 1]
}

// Shares summarizes a response table per task. Concepts nobody chose are
// omitted.
func Shares(responses *models.ResponseTable) []TaskShares {
	out := make([]TaskShares, responses.NumTasks())
	n := responses.Len()
	for task := range out {
		counts := make(map[int]int)
		for i := 0; i < n; i++ {
			counts[responses.Row(i).Choices[task]]++
		}
		shares := make(map[int]float64, len(counts))
		for concept, c := range counts {
			shares[concept] = float64(c) / float64(n)
		}
		out[task] = TaskShares{Task: task + 1, Shares: shares}
	}
	return out
}

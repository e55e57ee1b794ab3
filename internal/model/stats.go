package model

// Stats is a per-mode snapshot from one of the stats tables, with the
// global rank resolved from the leaderboard.
type Stats struct {
	RankedScore int64
	Accuracy    float64
	Playcount   int
	TotalScore  int64
	PP          int
	GlobalRank  int
}

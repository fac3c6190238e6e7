package domain

// SuggestOutput pairs the two suggestion sources for one settled query.
// They stay separate lists: history entries are user-deletable, remote
// suggestions are not.
type SuggestOutput struct {
	Query   string
	Records []HistoryRecord // prefix matches from local history
	Words   []string        // remote autocomplete suggestions
}

package incident

import "strings"

// FilterAll matches every incident regardless of priority or status.
const FilterAll = "all"

// FilterValues returns the selectable filter values: "all" plus every
// priority and status. Priorities and statuses share one selector
// namespace; a filter value matches a record when it equals either field.
func FilterValues() []string {
	values := []string{FilterAll}
	for _, p := range Priorities() {
		values = append(values, p.String())
	}
	values = append(values, StatusOpen.String(), StatusClosed.String())
	return values
}

// MatchesFilter reports whether the record passes the single-value filter.
func MatchesFilter(i Incident, filter string) bool {
	return filter == FilterAll ||
		i.Priority.String() == filter ||
		i.Status.String() == filter
}

// MatchesSearch reports whether the record matches the free-text search:
// case-insensitive substring over title, location, and creator name. An
// empty search term matches everything.
func MatchesSearch(i Incident, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(i.Title), term) ||
		strings.Contains(strings.ToLower(i.Location), term) ||
		(i.Creator != nil && strings.Contains(strings.ToLower(i.Creator.Name), term))
}

// Matches combines the filter and search predicates.
func Matches(i Incident, filter, term string) bool {
	return MatchesFilter(i, filter) && MatchesSearch(i, term)
}

// Filter derives the visible view from the raw collection. The result is a
// fresh slice; the input is never mutated.
func Filter(in []Incident, filter, term string) []Incident {
	out := make([]Incident, 0, len(in))
	for _, inc := range in {
		if Matches(inc, filter, term) {
			out = append(out, inc)
		}
	}
	return out
}

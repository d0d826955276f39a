package incident

import (
	"testing"
)

func sampleCollection() []Incident {
	return []Incident{
		{
			ID: 1, Title: "Gas odor near compressor station",
			Type: TypeGasBuildup, Priority: PriorityCritical, Status: StatusOpen,
			Location: "Compressor station 2",
			Creator:  &UserSummary{ID: 1, Name: "Duty Operator"},
		},
		{
			ID: 2, Title: "Pump vibration above limit",
			Type: TypeEquipmentFailure, Priority: PriorityHigh, Status: StatusClosed,
			Location: "Pump house",
			Creator:  &UserSummary{ID: 2, Name: "Shift Lead"},
		},
		{
			ID: 3, Title: "PLC link loss",
			Type: TypeAutomationFault, Priority: PriorityMedium, Status: StatusOpen,
			Location: "Metering skid",
		},
		{
			ID: 4, Title: "Surface rust on bracket",
			Type: TypeCorrosion, Priority: PriorityLow, Status: StatusClosed,
			Location: "Pipeline km 14",
			Creator:  &UserSummary{ID: 1, Name: "Duty Operator"},
		},
	}
}

// The "all" filter with an empty search term must pass the collection
// through untouched.
func TestFilterAllEmptySearchReturnsEverything(t *testing.T) {
	in := sampleCollection()
	got := Filter(in, FilterAll, "")
	if len(got) != len(in) {
		t.Fatalf("expected %d incidents, got %d", len(in), len(got))
	}
	for i := range in {
		if got[i].ID != in[i].ID {
			t.Errorf("order changed at %d: got ID %d want %d", i, got[i].ID, in[i].ID)
		}
	}
}

// A filter value matches when it equals either the priority or the
// status of a record.
func TestFilterMatchesPriorityOrStatus(t *testing.T) {
	in := sampleCollection()

	tests := []struct {
		filter string
		want   []int
	}{
		{"critical", []int{1}},
		{"high", []int{2}},
		{"open", []int{1, 3}},
		{"closed", []int{2, 4}},
		{"low", []int{4}},
		{"all", []int{1, 2, 3, 4}},
	}
	for _, tt := range tests {
		got := Filter(in, tt.filter, "")
		if len(got) != len(tt.want) {
			t.Errorf("filter %q: got %d incidents, want %d", tt.filter, len(got), len(tt.want))
			continue
		}
		for i, id := range tt.want {
			if got[i].ID != id {
				t.Errorf("filter %q: position %d got ID %d want %d", tt.filter, i, got[i].ID, id)
			}
		}
	}
}

// A filter value that matches nothing yields an empty view, never an
// error.
func TestFilterNoMatchesYieldsEmpty(t *testing.T) {
	got := Filter(sampleCollection(), "critical", "nonexistent-term")
	if len(got) != 0 {
		t.Fatalf("expected empty view, got %d incidents", len(got))
	}
}

// Search is a case-insensitive substring over title, location, and
// creator name.
func TestSearchFields(t *testing.T) {
	in := sampleCollection()

	tests := []struct {
		term string
		want []int
	}{
		{"COMPRESSOR", []int{1}},   // title, case-insensitive
		{"pump house", []int{2}},   // location
		{"duty operator", []int{1, 4}}, // creator name
		{"", []int{1, 2, 3, 4}},    // empty term matches all
		{"km 14", []int{4}},
	}
	for _, tt := range tests {
		got := Filter(in, FilterAll, tt.term)
		if len(got) != len(tt.want) {
			t.Errorf("search %q: got %d incidents, want %d", tt.term, len(got), len(tt.want))
			continue
		}
		for i, id := range tt.want {
			if got[i].ID != id {
				t.Errorf("search %q: position %d got ID %d want %d", tt.term, i, got[i].ID, id)
			}
		}
	}
}

// A record without a creator must not match creator-name searches and
// must not panic.
func TestSearchNilCreator(t *testing.T) {
	in := sampleCollection()
	got := Filter(in, FilterAll, "operator")
	for _, inc := range got {
		if inc.ID == 3 {
			t.Fatalf("record without creator matched a creator-name search")
		}
	}
}

// Filter and search combine with AND semantics.
func TestFilterAndSearchCombine(t *testing.T) {
	in := sampleCollection()
	got := Filter(in, "open", "plc")
	if len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("expected only ID 3, got %v", got)
	}

	// Same search under a non-matching filter yields nothing.
	got = Filter(in, "closed", "plc")
	if len(got) != 0 {
		t.Fatalf("expected empty view, got %d incidents", len(got))
	}
}

// Filtering must not mutate the input collection.
func TestFilterDoesNotMutateInput(t *testing.T) {
	in := sampleCollection()
	before := make([]Incident, len(in))
	copy(before, in)

	_ = Filter(in, "critical", "gas")

	for i := range in {
		if in[i].ID != before[i].ID || in[i].Title != before[i].Title {
			t.Fatalf("input collection mutated at index %d", i)
		}
	}
}

// FilterValues exposes "all" first, then priorities, then statuses.
func TestFilterValuesOrder(t *testing.T) {
	values := FilterValues()
	want := []string{"all", "low", "medium", "high", "critical", "open", "closed"}
	if len(values) != len(want) {
		t.Fatalf("got %d values, want %d", len(values), len(want))
	}
	for i := range want {
		if values[i] != want[i] {
			t.Errorf("position %d: got %q want %q", i, values[i], want[i])
		}
	}
}

// Stats are computed over the raw collection regardless of any filter.
func TestSummarize(t *testing.T) {
	st := Summarize(sampleCollection())
	if st.Total != 4 {
		t.Errorf("total: got %d want 4", st.Total)
	}
	if st.Critical != 1 {
		t.Errorf("critical: got %d want 1", st.Critical)
	}
	if st.High != 1 {
		t.Errorf("high: got %d want 1", st.High)
	}
	if st.Open != 2 {
		t.Errorf("open: got %d want 2", st.Open)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	st := Summarize(nil)
	if st.Total != 0 || st.Critical != 0 || st.High != 0 || st.Open != 0 {
		t.Fatalf("expected zero stats for empty collection, got %+v", st)
	}
}

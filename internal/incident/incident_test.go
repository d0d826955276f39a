package incident

import "testing"

func TestStatusToggle(t *testing.T) {
	if StatusOpen.Toggle() != StatusClosed {
		t.Errorf("open should toggle to closed")
	}
	if StatusClosed.Toggle() != StatusOpen {
		t.Errorf("closed should toggle to open")
	}
}

func TestTypeAndPriorityValidation(t *testing.T) {
	for _, typ := range Types() {
		if !typ.IsValid() {
			t.Errorf("type %q should be valid", typ)
		}
	}
	if Type("flood").IsValid() {
		t.Errorf("unknown type accepted")
	}

	for _, p := range Priorities() {
		if !p.IsValid() {
			t.Errorf("priority %q should be valid", p)
		}
	}
	if Priority("urgent").IsValid() {
		t.Errorf("unknown priority accepted")
	}
	if Status("pending").IsValid() {
		t.Errorf("unknown status accepted")
	}
}

// Drafts require a title and a location; everything else is optional
// locally.
func TestDraftValidate(t *testing.T) {
	d := Draft{Title: "Leak", Location: "Pump house", Type: TypeLeak, Priority: PriorityLow}
	if err := d.Validate(); err != nil {
		t.Fatalf("valid draft rejected: %v", err)
	}

	d.Title = ""
	if err := d.Validate(); err != ErrTitleRequired {
		t.Errorf("expected ErrTitleRequired, got %v", err)
	}

	d.Title = "Leak"
	d.Location = ""
	if err := d.Validate(); err != ErrLocationRequired {
		t.Errorf("expected ErrLocationRequired, got %v", err)
	}
}

// DraftFrom seeds the edit buffer from the record's current values and
// leaves the record itself untouched.
func TestDraftFrom(t *testing.T) {
	inc := Incident{
		ID: 7, Title: "Leak", Description: "drip", Type: TypeLeak,
		Priority: PriorityHigh, Status: StatusOpen, Location: "Valve pit",
	}
	d := DraftFrom(inc)
	if d.Title != inc.Title || d.Description != inc.Description ||
		d.Type != inc.Type || d.Priority != inc.Priority || d.Location != inc.Location {
		t.Fatalf("draft does not mirror the record: %+v", d)
	}

	d.Title = "Edited"
	if inc.Title != "Leak" {
		t.Fatalf("editing the draft mutated the record")
	}
}

func TestCreatorName(t *testing.T) {
	inc := Incident{}
	if got := inc.CreatorName(); got != "unknown" {
		t.Errorf("nil creator: got %q want %q", got, "unknown")
	}
	inc.Creator = &UserSummary{Name: "Duty Operator"}
	if got := inc.CreatorName(); got != "Duty Operator" {
		t.Errorf("got %q want %q", got, "Duty Operator")
	}
}

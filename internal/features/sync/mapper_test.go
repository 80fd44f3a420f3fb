package sync

import (
	"strings"
	"testing"

	"go-callsync/internal/features/staging"
)

func baseRow() staging.CallRecord {
	return staging.CallRecord{
		ID:               1,
		ContactNumber:    "+1 (555) 123-4567",
		Email:            "alice@example.com",
		ContactFirstName: "Alice",
		ContactLastName:  "Smith",
		Type:             "call",
		Direction:        "outbound",
		StartedAt:        "2023-05-01 14:30:00",
	}
}

func TestBuildActivityRequiresContact(t *testing.T) {
	mapper := &Mapper{OwnerID: "owner-1"}

	if got := mapper.BuildActivity(baseRow(), "", nil); got != nil {
		t.Errorf("expected nil activity without a contact match, got %+v", got)
	}
	if got := mapper.BuildActivity(baseRow(), "", &AgentInfo{ID: "a1", Name: "Jane Doe"}); got != nil {
		t.Errorf("agent match must not substitute for a contact match, got %+v", got)
	}
}

func TestBuildActivityRequiresParseableTimestamp(t *testing.T) {
	mapper := &Mapper{OwnerID: "owner-1"}
	row := baseRow()
	row.StartedAt = "yesterday-ish"

	if got := mapper.BuildActivity(row, "c1", nil); got != nil {
		t.Errorf("expected nil activity for unparsable timestamp, got %+v", got)
	}
}

func TestBuildActivitySubject(t *testing.T) {
	mapper := &Mapper{OwnerID: "owner-1"}

	tests := []struct {
		name    string
		mutate  func(*staging.CallRecord)
		agent   *AgentInfo
		subject string
	}{
		{
			name:    "outbound call",
			mutate:  func(r *staging.CallRecord) {},
			subject: "Outbound Call - Alice Smith",
		},
		{
			name:    "inbound sms",
			mutate:  func(r *staging.CallRecord) { r.Type = "sms"; r.Direction = "inbound" },
			subject: "Inbound SMS - Alice Smith",
		},
		{
			name:    "missing type defaults to call",
			mutate:  func(r *staging.CallRecord) { r.Type = "" },
			subject: "Outbound Call - Alice Smith",
		},
		{
			name: "no name falls back to Unknown",
			mutate: func(r *staging.CallRecord) {
				r.ContactFirstName = ""
				r.ContactLastName = ""
			},
			subject: "Outbound Call - Unknown",
		},
		{
			name:    "agent appended",
			mutate:  func(r *staging.CallRecord) {},
			agent:   &AgentInfo{ID: "a1", Name: "Jane Doe"},
			subject: "Outbound Call - Alice Smith | Jane Doe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			row := baseRow()
			tt.mutate(&row)

			activity := mapper.BuildActivity(row, "c1", tt.agent)
			if activity == nil {
				t.Fatal("expected an activity")
			}
			if activity.Subject != tt.subject {
				t.Errorf("Subject = %q, want %q", activity.Subject, tt.subject)
			}
		})
	}
}

func TestBuildActivitySubjectTruncatedAfterComposition(t *testing.T) {
	mapper := &Mapper{OwnerID: "owner-1"}
	row := baseRow()
	row.ContactFirstName = strings.Repeat("x", 300)

	activity := mapper.BuildActivity(row, "c1", nil)
	if activity == nil {
		t.Fatal("expected an activity")
	}
	if len([]rune(activity.Subject)) != 255 {
		t.Errorf("Subject length = %d, want 255", len([]rune(activity.Subject)))
	}
	// The template literals survive; only the tail is cut.
	if !strings.HasPrefix(activity.Subject, "Outbound Call - xxx") {
		t.Errorf("Subject prefix mangled: %q", activity.Subject[:30])
	}
}

func TestBuildActivityTimestamps(t *testing.T) {
	mapper := &Mapper{OwnerID: "owner-1"}

	activity := mapper.BuildActivity(baseRow(), "c1", nil)
	if activity == nil {
		t.Fatal("expected an activity")
	}

	start := "2023-05-01T14:30:00.000+0000"
	end := "2023-05-01T14:45:00.000+0000" // start + fixed 15 minutes

	if activity.StartDateTime != start {
		t.Errorf("StartDateTime = %q, want %q", activity.StartDateTime, start)
	}
	if activity.EndDateTime != end {
		t.Errorf("EndDateTime = %q, want %q", activity.EndDateTime, end)
	}
	if activity.OriginalActivityDate != start {
		t.Errorf("OriginalActivityDate = %q, want %q", activity.OriginalActivityDate, start)
	}
	// Audit fields carry the historical interaction time, not the sync time.
	if activity.CreatedDate != start || activity.LastModifiedDate != start {
		t.Errorf("CreatedDate/LastModifiedDate = %q/%q, want both %q",
			activity.CreatedDate, activity.LastModifiedDate, start)
	}
	if activity.OwnerID != "owner-1" {
		t.Errorf("OwnerID = %q, want %q", activity.OwnerID, "owner-1")
	}
}

func TestBuildActivityDescription(t *testing.T) {
	mapper := &Mapper{OwnerID: "owner-1"}

	row := baseRow()
	row.Body = "hello"
	row.Recording = "rec-url"

	activity := mapper.BuildActivity(row, "c1", nil)
	if activity == nil {
		t.Fatal("expected an activity")
	}
	if activity.Description != "hello\nrec-url" {
		t.Errorf("Description = %q, want %q", activity.Description, "hello\nrec-url")
	}

	// All free-text fields empty: description stays empty and serializes
	// as absent via omitempty.
	empty := mapper.BuildActivity(baseRow(), "c1", nil)
	if empty.Description != "" {
		t.Errorf("Description = %q, want empty", empty.Description)
	}

	long := baseRow()
	long.Body = strings.Repeat("a", 40000)
	capped := mapper.BuildActivity(long, "c1", nil)
	if len([]rune(capped.Description)) != maxDescriptionLen {
		t.Errorf("Description length = %d, want %d", len([]rune(capped.Description)), maxDescriptionLen)
	}
}

func TestBuildActivityDispositions(t *testing.T) {
	mapper := &Mapper{OwnerID: "owner-1"}

	row := baseRow()
	row.CallDisposition = strings.Repeat("d", 300)
	row.DispositionStatus = "completed"

	activity := mapper.BuildActivity(row, "c1", nil)
	if activity == nil {
		t.Fatal("expected an activity")
	}
	if len([]rune(activity.CallDisposition)) != maxDispositionLen {
		t.Errorf("CallDisposition length = %d, want %d", len([]rune(activity.CallDisposition)), maxDispositionLen)
	}
	if activity.DispositionStatus != "completed" {
		t.Errorf("DispositionStatus = %q", activity.DispositionStatus)
	}
	if activity.CallDirection != "outbound" {
		t.Errorf("CallDirection = %q, want passthrough %q", activity.CallDirection, "outbound")
	}
}

package sync

import (
	"strings"
	"time"

	"go-callsync/internal/features/crm"
	"go-callsync/internal/features/staging"
)

// activityDuration is the fixed span every synced interaction is given in
// the CRM calendar. Carried over from the original job unchanged.
const activityDuration = 15 * time.Minute

const (
	maxSubjectLen     = 255
	maxDescriptionLen = 32000
	maxDispositionLen = 255
)

// Mapper converts one staging row plus its resolved identities into one
// target activity. OwnerID is the default assignee stamped on every
// created record.
type Mapper struct {
	OwnerID string
}

// BuildActivity returns nil when the row is unmappable: a contact match is
// mandatory and the start timestamp must normalize. An agent match is
// optional. Callers count a nil result as skipped.
func (m *Mapper) BuildActivity(row staging.CallRecord, contactID string, agent *AgentInfo) *crm.Activity {
	ts := NormalizeTimestamp(row.StartedAt)
	if ts == "" || contactID == "" {
		return nil
	}

	kind := row.Type
	if kind == "" {
		kind = "call"
	}

	name := strings.TrimSpace(row.ContactFirstName + " " + row.ContactLastName)
	if name == "" {
		name = "Unknown"
	}

	subject := capitalize(row.Direction) + " "
	if kind == "sms" {
		subject += "SMS"
	} else {
		subject += "Call"
	}
	subject += " - " + name
	if agent != nil && agent.Name != "" {
		subject += " | " + agent.Name
	}

	start, _ := time.Parse(CanonicalLayout, ts)
	end := start.Add(activityDuration).Format(CanonicalLayout)

	var parts []string
	for _, p := range []string{row.Body, row.Notes, row.Recording, row.Voicemail} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	description := truncate(strings.Join(parts, "\n"), maxDescriptionLen)

	activity := &crm.Activity{
		Subject:              truncate(subject, maxSubjectLen),
		WhoID:                contactID,
		StartDateTime:        ts,
		EndDateTime:          end,
		Description:          description,
		OriginalActivityDate: ts,
		OwnerID:              m.OwnerID,
		// Forced to the historical start so the CRM's own timeline orders
		// by when the interaction happened, not when the sync ran.
		CreatedDate:       ts,
		LastModifiedDate:  ts,
		CallDirection:     row.Direction,
		CallDisposition:   truncate(row.CallDisposition, maxDispositionLen),
		DispositionStatus: row.DispositionStatus,
	}
	if agent != nil {
		activity.AgentID = agent.ID
	}

	return activity
}

func capitalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

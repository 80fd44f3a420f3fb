package sync

import (
	"context"
	"fmt"
	"strings"
)

// AgentInfo is the resolved CRM user an activity gets attributed to.
type AgentInfo struct {
	ID   string
	Name string
}

// IdentityMap holds the per-run lookup tables mapping normalized contact
// and agent identifiers to CRM record ids. It is built once before the
// sync stage and read-only afterwards.
//
// Keys map to exactly one id: when the CRM holds duplicate identifiers the
// later record wins. CRM identifiers are expected unique in practice, so
// the rule exists for robustness, not correctness.
type IdentityMap struct {
	emailMap map[string]string
	phoneMap map[string]string
	agentMap map[string]AgentInfo
}

// BuildIdentityMap materializes both reference feeds and indexes them.
// Feed errors are returned as-is; retrying is the caller's concern.
func BuildIdentityMap(ctx context.Context, feed ReferenceFeed) (*IdentityMap, error) {
	m := &IdentityMap{
		emailMap: make(map[string]string),
		phoneMap: make(map[string]string),
		agentMap: make(map[string]AgentInfo),
	}

	contacts, err := feed.ListContacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load contacts: %v", err)
	}
	for _, c := range contacts {
		if c.Email != "" {
			m.emailMap[strings.ToLower(c.Email)] = c.ID
		}
		if key := NormalizePhone(c.Phone); key != "" {
			m.phoneMap[key] = c.ID
		}
		if key := NormalizePhone(c.MobilePhone); key != "" {
			m.phoneMap[key] = c.ID
		}
	}

	agents, err := feed.ListAgents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load agents: %v", err)
	}
	for _, a := range agents {
		info := AgentInfo{ID: a.ID, Name: a.Name}

		// Prefer the dialer login; fall back to the display name.
		key := strings.ToLower(a.AlowareUsername)
		if key == "" {
			key = strings.ToLower(a.Name)
		}
		if key == "" {
			continue
		}
		m.agentMap[key] = info

		// Secondary display-name index so staged rows carrying either a
		// login or a human name both resolve. Non-overwriting: a login key
		// already claimed stays claimed.
		if nameKey := strings.ToLower(a.Name); nameKey != "" {
			if _, exists := m.agentMap[nameKey]; !exists {
				m.agentMap[nameKey] = info
			}
		}
	}

	return m, nil
}

// LookupContact resolves a contact id, email first, phone second. The
// first populated match wins; empty identifiers never match.
func (m *IdentityMap) LookupContact(email, phone string) (string, bool) {
	if email != "" {
		if id, ok := m.emailMap[strings.ToLower(email)]; ok {
			return id, true
		}
	}
	if key := NormalizePhone(phone); key != "" {
		if id, ok := m.phoneMap[key]; ok {
			return id, true
		}
	}
	return "", false
}

// LookupAgent resolves the originating agent by username or display name.
// An agent match is optional; callers treat a miss as "unattributed".
func (m *IdentityMap) LookupAgent(username string) (AgentInfo, bool) {
	key := strings.ToLower(strings.TrimSpace(username))
	if key == "" {
		return AgentInfo{}, false
	}
	info, ok := m.agentMap[key]
	return info, ok
}

// Contacts reports how many distinct contact keys are indexed.
func (m *IdentityMap) Contacts() int {
	return len(m.emailMap) + len(m.phoneMap)
}

// Agents reports how many distinct agent keys are indexed.
func (m *IdentityMap) Agents() int {
	return len(m.agentMap)
}

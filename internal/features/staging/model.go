package staging

// CallRecord is one imported telephony row from the aloware_import staging
// table. Rows are immutable once imported; ID is the ordinal used for
// deterministic pagination.
type CallRecord struct {
	ID                int64  `json:"id"`
	ContactNumber     string `json:"contact_number"`
	Email             string `json:"email"`
	ContactFirstName  string `json:"contact_first_name"`
	ContactLastName   string `json:"contact_last_name"`
	Type              string `json:"type"`      // call | sms
	Direction         string `json:"direction"` // inbound | outbound | ...
	StartedAt         string `json:"started_at"`
	Body              string `json:"body"`
	Notes             string `json:"notes"`
	Recording         string `json:"recording"`
	Voicemail         string `json:"voicemail"`
	CallDisposition   string `json:"call_disposition"`
	DispositionStatus string `json:"disposition_status"`
	AgentUsername     string `json:"agent_username"`
}

// ImportSummary reports one file-import invocation.
type ImportSummary struct {
	FileName string `json:"file_name"`
	Parsed   int    `json:"parsed"`
	Inserted int    `json:"inserted"`
}

package crm

// Contact is the CRM master record matched against staged interactions.
type Contact struct {
	ID          string `json:"id" bson:"_id"`
	Email       string `json:"email" bson:"email,omitempty"`
	Phone       string `json:"phone" bson:"phone,omitempty"`
	MobilePhone string `json:"mobile_phone" bson:"mobile_phone,omitempty"`
}

// Agent is the CRM user a staged interaction may be attributed to.
// AlowareUsername carries the dialer login when the CRM has one on file.
type Agent struct {
	ID              string `json:"id" bson:"_id"`
	Name            string `json:"name" bson:"name"`
	AlowareUsername string `json:"aloware_username" bson:"aloware_username,omitempty"`
}

// Activity is the output record written for every synced interaction.
// OriginalActivityDate doubles as the marker identifying sync-produced
// records, which is what makes purge-before-sync safe.
//
// Timestamps are kept in their canonical fixed-offset string form
// (2006-01-02T15:04:05.000+0000). CreatedDate and LastModifiedDate are
// deliberately the historical start timestamp, not the write time, so the
// CRM timeline orders activities by when the interaction happened.
type Activity struct {
	Subject              string `json:"subject" bson:"subject"`
	WhoID                string `json:"who_id" bson:"who_id"`
	AgentID              string `json:"agent_id,omitempty" bson:"agent_id,omitempty"`
	StartDateTime        string `json:"start_date_time" bson:"start_date_time"`
	EndDateTime          string `json:"end_date_time" bson:"end_date_time"`
	Description          string `json:"description,omitempty" bson:"description,omitempty"`
	OriginalActivityDate string `json:"original_activity_date" bson:"original_activity_date"`
	OwnerID              string `json:"owner_id" bson:"owner_id"`
	CreatedDate          string `json:"created_date" bson:"created_date"`
	LastModifiedDate     string `json:"last_modified_date" bson:"last_modified_date"`
	CallDirection        string `json:"call_direction,omitempty" bson:"call_direction,omitempty"`
	CallDisposition      string `json:"call_disposition,omitempty" bson:"call_disposition,omitempty"`
	DispositionStatus    string `json:"disposition_status,omitempty" bson:"disposition_status,omitempty"`
}

// WriteError is one rejection detail from a bulk create.
type WriteError struct {
	Code    int    `json:"code" bson:"code"`
	Message string `json:"message" bson:"message"`
}

// WriteResult reports one record's outcome from a bulk create. The batch
// is never atomic: each record succeeds or fails independently.
type WriteResult struct {
	Success bool         `json:"success"`
	Errors  []WriteError `json:"errors,omitempty"`
}

package staging

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go-callsync/internal/database"

	_ "github.com/lib/pq"
)

type StagingRepository interface {
	FetchPage(ctx context.Context, offset, limit int) ([]CallRecord, error)
	Count(ctx context.Context) (int, error)
	InsertBatch(ctx context.Context, rows []CallRecord) (int, error)
}

const selectColumns = `id, contact_number, email, contact_first_name, contact_last_name,
	type, direction, started_at, body, notes, recording, voicemail,
	call_disposition, disposition_status, agent_username`

type StagingRepositoryImpl struct {
	db *sql.DB
}

func NewStagingRepository(staging *database.StagingDB) StagingRepository {
	return &StagingRepositoryImpl{db: staging.DB}
}

// FetchPage returns one page of rows in stable ordinal order. An empty
// page signals the caller that the source is exhausted.
func (r *StagingRepositoryImpl) FetchPage(ctx context.Context, offset, limit int) ([]CallRecord, error) {
	query := fmt.Sprintf("SELECT %s FROM aloware_import ORDER BY id OFFSET $1 LIMIT $2", selectColumns)
	rows, err := r.db.QueryContext(ctx, query, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch staging page at offset %d: %v", offset, err)
	}
	defer rows.Close()

	var records []CallRecord
	for rows.Next() {
		var rec CallRecord
		var (
			contactNumber, email, firstName, lastName    sql.NullString
			callType, direction, startedAt               sql.NullString
			body, notes, recording, voicemail            sql.NullString
			callDisposition, dispositionStatus, username sql.NullString
		)
		if err := rows.Scan(&rec.ID, &contactNumber, &email, &firstName, &lastName,
			&callType, &direction, &startedAt, &body, &notes, &recording, &voicemail,
			&callDisposition, &dispositionStatus, &username); err != nil {
			return nil, fmt.Errorf("failed to scan staging row: %v", err)
		}
		rec.ContactNumber = contactNumber.String
		rec.Email = email.String
		rec.ContactFirstName = firstName.String
		rec.ContactLastName = lastName.String
		rec.Type = callType.String
		rec.Direction = direction.String
		rec.StartedAt = startedAt.String
		rec.Body = body.String
		rec.Notes = notes.String
		rec.Recording = recording.String
		rec.Voicemail = voicemail.String
		rec.CallDisposition = callDisposition.String
		rec.DispositionStatus = dispositionStatus.String
		rec.AgentUsername = username.String
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Count is a progress-display hint; pagination stops on an empty page,
// not on reaching this number.
func (r *StagingRepositoryImpl) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM aloware_import").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count staging rows: %v", err)
	}
	return count, nil
}

// InsertBatch appends imported rows. IDs are assigned by the table's
// sequence, preserving import order as the pagination ordinal.
func (r *StagingRepositoryImpl) InsertBatch(ctx context.Context, records []CallRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	cols := []string{
		"contact_number", "email", "contact_first_name", "contact_last_name",
		"type", "direction", "started_at", "body", "notes", "recording",
		"voicemail", "call_disposition", "disposition_status", "agent_username",
	}

	inserted := 0
	for _, rec := range records {
		placeholders := make([]string, len(cols))
		for i := range cols {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
		}
		query := fmt.Sprintf("INSERT INTO aloware_import (%s) VALUES (%s)",
			strings.Join(cols, ", "), strings.Join(placeholders, ", "))

		_, err := r.db.ExecContext(ctx, query,
			nullable(rec.ContactNumber), nullable(rec.Email),
			nullable(rec.ContactFirstName), nullable(rec.ContactLastName),
			nullable(rec.Type), nullable(rec.Direction), nullable(rec.StartedAt),
			nullable(rec.Body), nullable(rec.Notes), nullable(rec.Recording),
			nullable(rec.Voicemail), nullable(rec.CallDisposition),
			nullable(rec.DispositionStatus), nullable(rec.AgentUsername))
		if err != nil {
			return inserted, fmt.Errorf("failed to insert staging row: %v", err)
		}
		inserted++
	}

	return inserted, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

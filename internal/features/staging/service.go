package staging

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

type StagingService interface {
	ImportFile(ctx context.Context, file io.Reader, filename string) (*ImportSummary, error)
	Count(ctx context.Context) (int, error)
}

type StagingServiceImpl struct {
	Repo StagingRepository
}

func NewStagingService(repo StagingRepository) StagingService {
	return &StagingServiceImpl{Repo: repo}
}

func (s *StagingServiceImpl) Count(ctx context.Context) (int, error) {
	return s.Repo.Count(ctx)
}

// ImportFile parses an Aloware activity export (CSV or XLSX) and appends
// its rows to the staging table.
func (s *StagingServiceImpl) ImportFile(ctx context.Context, file io.Reader, filename string) (*ImportSummary, error) {
	var (
		records []CallRecord
		err     error
	)

	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		records, err = parseCSV(file)
	case strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xls"):
		records, err = parseExcel(file)
	default:
		return nil, fmt.Errorf("unsupported file format")
	}
	if err != nil {
		return nil, err
	}

	inserted, err := s.Repo.InsertBatch(ctx, records)
	if err != nil {
		return nil, err
	}

	return &ImportSummary{
		FileName: filename,
		Parsed:   len(records),
		Inserted: inserted,
	}, nil
}

func parseCSV(file io.Reader) ([]CallRecord, error) {
	reader := csv.NewReader(file)

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	var records []CallRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		records = append(records, recordFromRow(headers, row))
	}

	return records, nil
}

func parseExcel(file io.Reader) ([]CallRecord, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read Excel rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty Excel file")
	}

	headers := rows[0]
	var records []CallRecord
	for _, row := range rows[1:] {
		records = append(records, recordFromRow(headers, row))
	}

	return records, nil
}

// recordFromRow maps the export's column headers onto a staging row.
// Header names follow the Aloware export verbatim.
func recordFromRow(headers []string, row []string) CallRecord {
	var rec CallRecord
	for i, header := range headers {
		if i >= len(row) {
			break
		}
		value := strings.TrimSpace(row[i])
		switch strings.TrimSpace(header) {
		case "Contact Number":
			rec.ContactNumber = value
		case "Email":
			rec.Email = value
		case "Contact First Name":
			rec.ContactFirstName = value
		case "Contact Last Name":
			rec.ContactLastName = value
		case "Type":
			rec.Type = value
		case "Direction":
			rec.Direction = value
		case "Started At":
			rec.StartedAt = value
		case "Body":
			rec.Body = value
		case "Notes":
			rec.Notes = value
		case "Recording":
			rec.Recording = value
		case "Voicemail":
			rec.Voicemail = value
		case "Call Disposition":
			rec.CallDisposition = value
		case "Disposition Status":
			rec.DispositionStatus = value
		case "User":
			rec.AgentUsername = value
		}
	}
	return rec
}

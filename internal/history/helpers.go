package history

import (
	"database/sql"
	"errors"
	"strings"
	"time"
)

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		id           int64
		sessionID    string
		owner        sql.NullString
		cardCount    int
		favorite     sql.NullString
		commandCount int
		status       string
		errorMessage sql.NullString
		outputPath   sql.NullString
		outputBytes  int64
		createdRaw   string
		finishedRaw  sql.NullString
	)
	if err := scanner.Scan(
		&id,
		&sessionID,
		&owner,
		&cardCount,
		&favorite,
		&commandCount,
		&status,
		&errorMessage,
		&outputPath,
		&outputBytes,
		&createdRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}

	run := &Run{
		ID:           id,
		SessionID:    sessionID,
		Owner:        owner.String,
		CardCount:    cardCount,
		Favorite:     favorite.String,
		CommandCount: commandCount,
		Status:       Status(status),
		ErrorMessage: errorMessage.String,
		OutputPath:   outputPath.String,
		OutputBytes:  outputBytes,
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		run.CreatedAt = created
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	return run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", count), ",")
}

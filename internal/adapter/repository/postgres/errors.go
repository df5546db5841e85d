package postgres

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	codeUniqueViolation    = "23505"
	codeExclusionViolation = "23P01"
)

func hasCode(err error, code string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == code
}

// isOverlapViolation reports whether err is the bookings_no_overlap exclusion constraint firing
func isOverlapViolation(err error) bool {
	return hasCode(err, codeExclusionViolation)
}

func isUniqueViolation(err error) bool {
	return hasCode(err, codeUniqueViolation)
}

func nullableUUID(id *uuid.UUID) interface{} {
	if id == nil {
		return nil
	}
	return id.String()
}

func parseNullUUID(s sql.NullString) (*uuid.UUID, error) {
	if !s.Valid {
		return nil, nil
	}
	id, err := uuid.Parse(s.String)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

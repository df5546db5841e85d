package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/simaogato/hostelflow-backend/internal/domain"
)

// apartmentRepository implements domain.ApartmentRepository
type apartmentRepository struct {
	db *DB
}

// NewApartmentRepository creates a new apartment repository
func NewApartmentRepository(db *DB) domain.ApartmentRepository {
	return &apartmentRepository{db: db}
}

// GetByID retrieves an apartment with its rooms and partner agreements
func (r *apartmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Apartment, error) {
	query := `
		SELECT id, name, investment_target::text, investment_start_date
		FROM apartments
		WHERE id = $1
	`

	apt, err := scanApartment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("apartment", id)
		}
		return nil, fmt.Errorf("failed to get apartment by ID: %w", err)
	}

	if err := r.loadChildren(ctx, []*domain.Apartment{apt}); err != nil {
		return nil, err
	}
	return apt, nil
}

// List retrieves every apartment ordered by name
func (r *apartmentRepository) List(ctx context.Context) ([]*domain.Apartment, error) {
	query := `
		SELECT id, name, investment_target::text, investment_start_date
		FROM apartments
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list apartments: %w", err)
	}
	defer rows.Close()

	apartments := make([]*domain.Apartment, 0)
	for rows.Next() {
		apt, err := scanApartment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan apartment: %w", err)
		}
		apartments = append(apartments, apt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating apartments: %w", err)
	}

	if err := r.loadChildren(ctx, apartments); err != nil {
		return nil, err
	}
	return apartments, nil
}

// Create stores an apartment with its rooms and partner agreements in one transaction
func (r *apartmentRepository) Create(ctx context.Context, apt *domain.Apartment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var target interface{}
	if apt.InvestmentTarget != nil {
		target = apt.InvestmentTarget.String()
	}
	var start interface{}
	if apt.InvestmentStartDate != nil {
		start = domain.DateOf(*apt.InvestmentStartDate)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO apartments (id, name, investment_target, investment_start_date)
		VALUES ($1, $2, $3, $4)
	`, apt.ID, apt.Name, target, start)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("apartment %s already exists: %w", apt.ID, err)
		}
		return fmt.Errorf("failed to insert apartment: %w", err)
	}

	for _, room := range apt.Rooms {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO rooms (id, apartment_id, room_number, room_type, bed_count, bathroom_type)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, room.ID, apt.ID, room.RoomNumber, room.Type, room.BedCount, room.BathroomType)
		if err != nil {
			return fmt.Errorf("failed to insert room: %w", err)
		}
	}

	for _, p := range apt.Partners {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO partner_agreements (apartment_id, partner_id, name, percentage)
			VALUES ($1, $2, $3, $4)
		`, apt.ID, p.PartnerID, p.Name, p.Percentage.String())
		if err != nil {
			return fmt.Errorf("failed to insert partner agreement: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApartment(row rowScanner) (*domain.Apartment, error) {
	var apt domain.Apartment
	var target sql.NullString
	var start sql.NullTime

	if err := row.Scan(&apt.ID, &apt.Name, &target, &start); err != nil {
		return nil, err
	}

	if target.Valid {
		v, err := decimal.NewFromString(target.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse investment_target: %w", err)
		}
		apt.InvestmentTarget = &v
	}
	if start.Valid {
		d := domain.DateOf(start.Time)
		apt.InvestmentStartDate = &d
	}
	return &apt, nil
}

// loadChildren fills rooms and partners for all apartments with one query each
func (r *apartmentRepository) loadChildren(ctx context.Context, apartments []*domain.Apartment) error {
	if len(apartments) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*domain.Apartment, len(apartments))
	ids := make([]string, 0, len(apartments))
	for _, apt := range apartments {
		apt.Rooms = make([]domain.Room, 0)
		apt.Partners = make([]domain.PartnerAgreement, 0)
		byID[apt.ID] = apt
		ids = append(ids, apt.ID.String())
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, apartment_id, room_number, room_type, bed_count, bathroom_type
		FROM rooms
		WHERE apartment_id = ANY($1::uuid[])
		ORDER BY room_number
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to list rooms: %w", err)
	}
	for rows.Next() {
		var room domain.Room
		if err := rows.Scan(&room.ID, &room.ApartmentID, &room.RoomNumber, &room.Type, &room.BedCount, &room.BathroomType); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan room: %w", err)
		}
		if apt, ok := byID[room.ApartmentID]; ok {
			apt.Rooms = append(apt.Rooms, room)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating rooms: %w", err)
	}

	rows, err = r.db.QueryContext(ctx, `
		SELECT apartment_id, partner_id, name, percentage::text
		FROM partner_agreements
		WHERE apartment_id = ANY($1::uuid[])
		ORDER BY name
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to list partner agreements: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var aptID uuid.UUID
		var p domain.PartnerAgreement
		var pct string
		if err := rows.Scan(&aptID, &p.PartnerID, &p.Name, &pct); err != nil {
			return fmt.Errorf("failed to scan partner agreement: %w", err)
		}
		p.Percentage, err = decimal.NewFromString(pct)
		if err != nil {
			return fmt.Errorf("failed to parse percentage: %w", err)
		}
		if apt, ok := byID[aptID]; ok {
			apt.Partners = append(apt.Partners, p)
		}
	}
	return rows.Err()
}

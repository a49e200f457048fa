package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"crimewatch/internal/domain"
	"crimewatch/pkg/e"
)

type EmergencyRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewEmergencyRepo(pool *pgxpool.Pool, logger *slog.Logger) *EmergencyRepo {
	return &EmergencyRepo{pool: pool, logger: logger}
}

func (p *EmergencyRepo) Create(ctx context.Context, signal *domain.EmergencySignal) error {
	const op = "postgres.Emergency.Create"

	const query = `
		INSERT INTO emergency_signals (user_id, active, latitude, longitude, created_at)
		VALUES ($1, true, $2, $3, $4)
		RETURNING id
	`

	if signal.CreatedAt.IsZero() {
		signal.CreatedAt = time.Now().UTC()
	}
	signal.Active = true
	signal.ResolvedAt = nil

	err := p.pool.QueryRow(ctx, query,
		signal.UserID,
		signal.Latitude,
		signal.Longitude,
		signal.CreatedAt,
	).Scan(&signal.ID)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}

	return nil
}

func (p *EmergencyRepo) ListActive(ctx context.Context) ([]domain.EmergencySignal, error) {
	const op = "postgres.Emergency.ListActive"

	const query = `
		SELECT id, user_id, active, latitude, longitude, created_at, resolved_at
		FROM emergency_signals
		WHERE active
		ORDER BY created_at DESC
	`

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	signals := make([]domain.EmergencySignal, 0)
	for rows.Next() {
		var s domain.EmergencySignal
		if err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.Active,
			&s.Latitude,
			&s.Longitude,
			&s.CreatedAt,
			&s.ResolvedAt,
		); err != nil {
			p.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		signals = append(signals, s)
	}
	if err := rows.Err(); err != nil {
		p.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	return signals, nil
}

// Resolve flips exactly one active signal. A resolved or unknown id scans no
// row and comes back as ErrNotFound, so resolution can never happen twice.
func (p *EmergencyRepo) Resolve(ctx context.Context, id int64, at time.Time) (*domain.EmergencySignal, error) {
	const op = "postgres.Emergency.Resolve"

	const query = `
		UPDATE emergency_signals
		SET active = false, resolved_at = $2
		WHERE id = $1 AND active
		RETURNING id, user_id, active, latitude, longitude, created_at, resolved_at
	`

	var s domain.EmergencySignal
	err := p.pool.QueryRow(ctx, query, id, at).Scan(
		&s.ID,
		&s.UserID,
		&s.Active,
		&s.Latitude,
		&s.Longitude,
		&s.CreatedAt,
		&s.ResolvedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		p.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err), slog.Int64("id", id))
		return nil, e.WrapError(ctx, op, err)
	}

	return &s, nil
}

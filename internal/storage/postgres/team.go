package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"crimewatch/internal/domain"
	"crimewatch/pkg/e"
)

type TeamRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewTeamRepo(pool *pgxpool.Pool, logger *slog.Logger) *TeamRepo {
	return &TeamRepo{pool: pool, logger: logger}
}

const teamColumns = `id, name, type, members, status, latitude, longitude, created_at`

func scanTeam(row pgx.Row) (*domain.Team, error) {
	var t domain.Team
	var members []byte
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.Type,
		&members,
		&t.Status,
		&t.Latitude,
		&t.Longitude,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(members) > 0 {
		if err := json.Unmarshal(members, &t.Members); err != nil {
			return nil, err
		}
	}
	return &t, nil
}

func (p *TeamRepo) Create(ctx context.Context, team *domain.Team) error {
	const op = "postgres.Team.Create"

	const query = `
		INSERT INTO teams (name, type, members, status, latitude, longitude, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	if team.CreatedAt.IsZero() {
		team.CreatedAt = time.Now().UTC()
	}
	if team.Status == "" {
		team.Status = domain.TeamAvailable
	}

	members, err := json.Marshal(team.Members)
	if err != nil {
		return e.Wrap(op, err)
	}

	err = p.pool.QueryRow(ctx, query,
		team.Name,
		team.Type,
		members,
		team.Status,
		team.Latitude,
		team.Longitude,
		team.CreatedAt,
	).Scan(&team.ID)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}

	return nil
}

func (p *TeamRepo) Get(ctx context.Context, id int64) (*domain.Team, error) {
	const op = "postgres.Team.Get"

	query := fmt.Sprintf(`SELECT %s FROM teams WHERE id = $1`, teamColumns)

	team, err := scanTeam(p.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		p.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err), slog.Int64("id", id))
		return nil, e.WrapError(ctx, op, err)
	}
	return team, nil
}

func (p *TeamRepo) List(ctx context.Context) ([]domain.Team, error) {
	const op = "postgres.Team.List"

	query := fmt.Sprintf(`SELECT %s FROM teams ORDER BY created_at DESC`, teamColumns)

	rows, err := p.pool.Query(ctx, query)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	teams := make([]domain.Team, 0)
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			p.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		teams = append(teams, *t)
	}
	if err := rows.Err(); err != nil {
		p.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	return teams, nil
}

func (p *TeamRepo) UpdateStatus(ctx context.Context, id int64, status domain.TeamStatus) (*domain.Team, error) {
	const op = "postgres.Team.UpdateStatus"

	query := fmt.Sprintf(`
		UPDATE teams
		SET status = $2
		WHERE id = $1
		RETURNING %s`, teamColumns)

	team, err := scanTeam(p.pool.QueryRow(ctx, query, id, status))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		p.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err), slog.Int64("id", id))
		return nil, e.WrapError(ctx, op, err)
	}
	return team, nil
}

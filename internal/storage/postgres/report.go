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

type ReportRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewReportRepo(pool *pgxpool.Pool, logger *slog.Logger) *ReportRepo {
	return &ReportRepo{pool: pool, logger: logger}
}

const reportColumns = `id, user_id, crime_type, description, location, latitude, longitude,
	date, status, evidence, assigned_team, created_at, updated_at`

func scanReport(row pgx.Row) (*domain.CrimeReport, error) {
	var r domain.CrimeReport
	var evidence []byte
	err := row.Scan(
		&r.ID,
		&r.UserID,
		&r.CrimeType,
		&r.Description,
		&r.Location,
		&r.Latitude,
		&r.Longitude,
		&r.Date,
		&r.Status,
		&evidence,
		&r.AssignedTeam,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(evidence) > 0 {
		if err := json.Unmarshal(evidence, &r.Evidence); err != nil {
			return nil, err
		}
	}
	return &r, nil
}

func (p *ReportRepo) Create(ctx context.Context, report *domain.CrimeReport) error {
	const op = "postgres.Report.Create"

	const query = `
		INSERT INTO crime_reports
			(user_id, crime_type, description, location, latitude, longitude, date, status, evidence, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING id
	`

	now := time.Now().UTC()
	if report.CreatedAt.IsZero() {
		report.CreatedAt = now
	}
	report.UpdatedAt = report.CreatedAt
	if report.Status == "" {
		report.Status = domain.ReportPending
	}

	evidence, err := json.Marshal(report.Evidence)
	if err != nil {
		return e.Wrap(op, err)
	}

	err = p.pool.QueryRow(ctx, query,
		report.UserID,
		report.CrimeType,
		report.Description,
		report.Location,
		report.Latitude,
		report.Longitude,
		report.Date,
		report.Status,
		evidence,
		report.CreatedAt,
	).Scan(&report.ID)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}

	return nil
}

func (p *ReportRepo) Get(ctx context.Context, id int64) (*domain.CrimeReport, error) {
	const op = "postgres.Report.Get"

	query := fmt.Sprintf(`SELECT %s FROM crime_reports WHERE id = $1`, reportColumns)

	report, err := scanReport(p.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		p.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err), slog.Int64("id", id))
		return nil, e.WrapError(ctx, op, err)
	}
	return report, nil
}

func (p *ReportRepo) ListAll(ctx context.Context) ([]domain.CrimeReport, error) {
	const op = "postgres.Report.ListAll"
	query := fmt.Sprintf(`SELECT %s FROM crime_reports ORDER BY created_at DESC`, reportColumns)
	return p.list(ctx, op, query)
}

func (p *ReportRepo) ListByUser(ctx context.Context, userID int64) ([]domain.CrimeReport, error) {
	const op = "postgres.Report.ListByUser"
	query := fmt.Sprintf(`SELECT %s FROM crime_reports WHERE user_id = $1 ORDER BY created_at DESC`, reportColumns)
	return p.list(ctx, op, query, userID)
}

func (p *ReportRepo) list(ctx context.Context, op, query string, args ...any) ([]domain.CrimeReport, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	reports := make([]domain.CrimeReport, 0)
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			p.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		reports = append(reports, *r)
	}
	if err := rows.Err(); err != nil {
		p.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	return reports, nil
}

func (p *ReportRepo) UpdateStatus(ctx context.Context, id int64, status domain.ReportStatus) (*domain.CrimeReport, error) {
	const op = "postgres.Report.UpdateStatus"

	query := fmt.Sprintf(`
		UPDATE crime_reports
		SET status = $2, updated_at = $3
		WHERE id = $1
		RETURNING %s`, reportColumns)

	report, err := scanReport(p.pool.QueryRow(ctx, query, id, status, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		p.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err), slog.Int64("id", id))
		return nil, e.WrapError(ctx, op, err)
	}
	return report, nil
}

// AssignTeam attaches the team and moves the report out of pending in one
// transaction, so a report can never be observed pending with a team attached.
func (p *ReportRepo) AssignTeam(ctx context.Context, reportID, teamID int64) (*domain.CrimeReport, error) {
	const op = "postgres.Report.AssignTeam"

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		p.logger.Error("begin tx failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer tx.Rollback(ctx)

	query := fmt.Sprintf(`
		UPDATE crime_reports
		SET assigned_team = $2, status = $3, updated_at = $4
		WHERE id = $1
		RETURNING %s`, reportColumns)

	report, err := scanReport(tx.QueryRow(ctx, query, reportID, teamID, domain.ReportInProgress, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		p.logger.Error("report update failed", slog.String("op", op), slog.Any("error", err), slog.Int64("report_id", reportID))
		return nil, e.WrapError(ctx, op, err)
	}

	cmd, err := tx.Exec(ctx, `UPDATE teams SET status = $2 WHERE id = $1`, teamID, domain.TeamAssigned)
	if err != nil {
		p.logger.Error("team update failed", slog.String("op", op), slog.Any("error", err), slog.Int64("team_id", teamID))
		return nil, e.WrapError(ctx, op, err)
	}
	if cmd.RowsAffected() == 0 {
		return nil, fmt.Errorf("%s: team %d: %w", op, teamID, e.ErrNotFound)
	}

	if err := tx.Commit(ctx); err != nil {
		p.logger.Error("commit failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	return report, nil
}

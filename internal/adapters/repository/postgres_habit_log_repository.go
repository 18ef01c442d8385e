package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/comitanigiacomo/kanso-analytics-engine/internal/core/domain"
)

type PostgresHabitLogRepository struct {
	db *sqlx.DB
}

func NewPostgresHabitLogRepository(db *sqlx.DB) *PostgresHabitLogRepository {
	return &PostgresHabitLogRepository{db: db}
}

func (r *PostgresHabitLogRepository) Create(ctx context.Context, entry *domain.HabitLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	query := `
		INSERT INTO habit_logs (
			id, habit_id, user_id,
			date, value, note,
			version, created_at, updated_at, deleted_at
		) VALUES (
			:id, :habit_id, :user_id,
			:date, :value, :note,
			:version, :created_at, :updated_at, :deleted_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, entry)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code == "23503" {
				return errors.New("referenced habit or user does not exist")
			}
			if pqErr.Code == "23505" {
				return domain.ErrLogConflict
			}
		}
		return err
	}
	return nil
}

func (r *PostgresHabitLogRepository) GetByID(ctx context.Context, id string) (*domain.HabitLog, error) {
	var entry domain.HabitLog
	query := `SELECT * FROM habit_logs WHERE id = $1 AND deleted_at IS NULL`

	err := r.db.GetContext(ctx, &entry, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLogNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *PostgresHabitLogRepository) ListByHabitID(ctx context.Context, habitID string, from, to time.Time) ([]*domain.HabitLog, error) {
	logs := []*domain.HabitLog{}

	query := `
		SELECT * FROM habit_logs
		WHERE habit_id = $1
		  AND date >= $2
		  AND date <= $3
		  AND deleted_at IS NULL
		ORDER BY date DESC`

	err := r.db.SelectContext(ctx, &logs, query, habitID, from, to)
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *PostgresHabitLogRepository) ListByHabitIDAll(ctx context.Context, habitID string) ([]*domain.HabitLog, error) {
	logs := []*domain.HabitLog{}

	query := `
		SELECT * FROM habit_logs
		WHERE habit_id = $1 AND deleted_at IS NULL
		ORDER BY date ASC`

	err := r.db.SelectContext(ctx, &logs, query, habitID)
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *PostgresHabitLogRepository) ListByUserIDAndDateRange(ctx context.Context, userID string, from, to time.Time) ([]*domain.HabitLog, error) {
	logs := []*domain.HabitLog{}

	query := `
		SELECT * FROM habit_logs
		WHERE user_id = $1
		  AND date >= $2
		  AND date <= $3
		  AND deleted_at IS NULL
		ORDER BY date ASC`

	err := r.db.SelectContext(ctx, &logs, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *PostgresHabitLogRepository) Update(ctx context.Context, entry *domain.HabitLog) error {
	query := `
		UPDATE habit_logs
		SET value = :value,
		    note = :note,
		    date = :date,
		    version = :version,
		    updated_at = :updated_at
		WHERE id = :id
		  AND version = :version - 1  -- Optimistic Lock check
		  AND deleted_at IS NULL`

	result, err := r.db.NamedExecContext(ctx, query, entry)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		exists, _ := r.exists(ctx, entry.ID)
		if !exists {
			return domain.ErrLogNotFound
		}
		return domain.ErrLogConflict
	}

	return nil
}

func (r *PostgresHabitLogRepository) Delete(ctx context.Context, id string, userID string) error {
	now := time.Now().UTC()

	query := `
		UPDATE habit_logs
		SET deleted_at = $1,
		    updated_at = $1,
		    version = version + 1
		WHERE id = $2
		  AND user_id = $3 -- Security Check
		  AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, now, id, userID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrLogNotFound
	}

	return nil
}

func (r *PostgresHabitLogRepository) exists(ctx context.Context, id string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count, "SELECT count(*) FROM habit_logs WHERE id = $1", id)
	return count > 0, err
}

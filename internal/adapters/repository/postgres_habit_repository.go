package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/comitanigiacomo/kanso-analytics-engine/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresHabitRepository struct {
	db *sqlx.DB
}

func NewPostgresHabitRepository(db *sqlx.DB) *PostgresHabitRepository {
	return &PostgresHabitRepository{db: db}
}

type scannable interface {
	Scan(dest ...interface{}) error
}

const habitColumns = `
	id, user_id, name, icon, kind,
	schedule_kind, weekdays, times_per_week,
	category_id, daily_target,
	start_date, end_date, is_active,
	current_streak, longest_streak,
	version, created_at, updated_at, deleted_at`

func (r *PostgresHabitRepository) scanRow(row scannable) (*domain.Habit, error) {
	var h domain.Habit
	var weekdays pq.Int64Array
	var timesPerWeek sql.NullInt64

	err := row.Scan(
		&h.ID, &h.UserID, &h.Name, &h.Icon, &h.Kind,
		&h.Schedule.Kind, &weekdays, &timesPerWeek,
		&h.CategoryID, &h.DailyTarget,
		&h.StartDate, &h.EndDate, &h.IsActive,
		&h.CurrentStreak, &h.LongestStreak,
		&h.Version, &h.CreatedAt, &h.UpdatedAt, &h.DeletedAt,
	)
	if err != nil {
		return nil, err
	}

	for _, wd := range weekdays {
		h.Schedule.Weekdays = append(h.Schedule.Weekdays, int(wd))
	}
	if timesPerWeek.Valid {
		h.Schedule.TimesPerWeek = int(timesPerWeek.Int64)
	}

	return &h, nil
}

func weekdaysArray(s domain.Schedule) pq.Int64Array {
	arr := make(pq.Int64Array, 0, len(s.Weekdays))
	for _, wd := range s.Weekdays {
		arr = append(arr, int64(wd))
	}
	return arr
}

func timesPerWeekValue(s domain.Schedule) sql.NullInt64 {
	if s.Kind != domain.ScheduleTimesPerWeek {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(s.TimesPerWeek), Valid: true}
}

func (r *PostgresHabitRepository) Create(ctx context.Context, h *domain.Habit) error {
	query := `
        INSERT INTO habits (` + habitColumns + `
        ) VALUES (
            $1, $2, $3, $4, $5,
            $6, $7, $8,
            $9, $10,
            $11, $12, $13,
            $14, $15,
            1, $16, $17, NULL
        )`

	_, err := r.db.ExecContext(ctx, query,
		h.ID, h.UserID, h.Name, h.Icon, h.Kind,
		h.Schedule.Kind, weekdaysArray(h.Schedule), timesPerWeekValue(h.Schedule),
		h.CategoryID, h.DailyTarget,
		h.StartDate, h.EndDate, h.IsActive,
		h.CurrentStreak, h.LongestStreak,
		h.CreatedAt, h.UpdatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return errors.New("referenced user or category does not exist")
		}
		return fmt.Errorf("failed to insert habit: %w", err)
	}

	h.Version = 1
	return nil
}

func (r *PostgresHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = $1 AND deleted_at IS NULL`

	row := r.db.QueryRowContext(ctx, query, id)

	h, err := r.scanRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return h, nil
}

func (r *PostgresHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	query := `
        SELECT ` + habitColumns + ` FROM habits
        WHERE user_id = $1 AND deleted_at IS NULL
        ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var habits []*domain.Habit

	for rows.Next() {
		h, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan error: %w", err)
		}
		habits = append(habits, h)
	}

	return habits, rows.Err()
}

func (r *PostgresHabitRepository) Update(ctx context.Context, h *domain.Habit) error {
	query := `
        UPDATE habits SET
            name=$1, icon=$2, kind=$3,
            schedule_kind=$4, weekdays=$5, times_per_week=$6,
            category_id=$7, daily_target=$8,
            end_date=$9, is_active=$10,
            updated_at=NOW(), version = $11
        WHERE id=$12 AND version=$13 AND deleted_at IS NULL
        RETURNING updated_at`

	// The service bumps Version before the write, so the stored row must
	// still carry the previous one.
	row := r.db.QueryRowContext(ctx, query,
		h.Name, h.Icon, h.Kind,
		h.Schedule.Kind, weekdaysArray(h.Schedule), timesPerWeekValue(h.Schedule),
		h.CategoryID, h.DailyTarget,
		h.EndDate, h.IsActive,
		h.Version,
		h.ID, h.Version-1,
	)

	if err := row.Scan(&h.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var count int
			existsQuery := `SELECT count(*) FROM habits WHERE id = $1 AND deleted_at IS NULL`
			if checkErr := r.db.QueryRowContext(ctx, existsQuery, h.ID).Scan(&count); checkErr != nil {
				return fmt.Errorf("existence check failed: %w", checkErr)
			}
			if count == 0 {
				return domain.ErrHabitNotFound
			}
			return domain.ErrHabitConflict
		}
		return fmt.Errorf("update query failed: %w", err)
	}

	return nil
}

func (r *PostgresHabitRepository) Delete(ctx context.Context, id string) error {
	query := `
        UPDATE habits
        SET deleted_at = NOW(), updated_at = NOW(), version = version + 1
        WHERE id = $1 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}

func (r *PostgresHabitRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	query := `
        UPDATE habits
        SET current_streak = $1, longest_streak = $2, updated_at = NOW()
        WHERE id = $3 AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, current, longest, id)
	if err != nil {
		return fmt.Errorf("streak update failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}

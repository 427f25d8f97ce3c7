package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yuriataaide/dailydiet/internal"
)

type PostgresStorage struct {
	pool   *pgxpool.Pool
	logger internal.Logger
}

func NewPostgresStorage(dsn string, logger internal.Logger) (*PostgresStorage, error) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Errorf("failed to ping postgres: %v", err)
		pool.Close()
		return nil, err
	}
	return &PostgresStorage{pool: pool, logger: logger}, nil
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

// ApplyMigration runs a schema script best-effort at startup.
func (p *PostgresStorage) ApplyMigration(ctx context.Context, script string) error {
	_, err := p.pool.Exec(ctx, script)
	return err
}

// --- UserRepository ---

func (p *PostgresStorage) SaveUser(ctx context.Context, user *internal.User) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO users (id, name, email, session_id) VALUES ($1, $2, $3, $4)`,
		user.ID, user.Name, user.Email, user.SessionID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		p.logger.Errorf("failed to insert user: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) ListUsers(ctx context.Context, sessionID string) ([]internal.User, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, name, email, session_id FROM users WHERE session_id = $1`, sessionID)
	if err != nil {
		p.logger.Errorf("failed to query users: %v", err)
		return nil, err
	}
	defer rows.Close()

	users := []internal.User{}
	for rows.Next() {
		var u internal.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.SessionID); err != nil {
			p.logger.Errorf("failed to scan user: %v", err)
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (p *PostgresStorage) GetUser(ctx context.Context, sessionID, id string) (*internal.User, error) {
	row := p.pool.QueryRow(ctx, `SELECT id, name, email, session_id FROM users WHERE session_id = $1 AND id = $2`, sessionID, id)
	var u internal.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.SessionID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		p.logger.Errorf("failed to scan user: %v", err)
		return nil, err
	}
	return &u, nil
}

// --- MealRepository ---

func (p *PostgresStorage) SaveMeal(ctx context.Context, meal *internal.Meal) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO meals (id, user_id, name, description, is_on_diet, date, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		meal.ID, meal.OwnerID, meal.Name, meal.Description, meal.IsOnDiet, meal.Date, meal.CreatedAt)
	if err != nil {
		p.logger.Errorf("failed to insert meal: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) ListMeals(ctx context.Context, ownerID string) ([]internal.Meal, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, user_id, name, description, is_on_diet, date, created_at FROM meals WHERE user_id = $1 ORDER BY date DESC, created_at DESC, id ASC`, ownerID)
	if err != nil {
		p.logger.Errorf("failed to query meals: %v", err)
		return nil, err
	}
	defer rows.Close()

	meals := []internal.Meal{}
	for rows.Next() {
		var m internal.Meal
		if err := rows.Scan(&m.ID, &m.OwnerID, &m.Name, &m.Description, &m.IsOnDiet, &m.Date, &m.CreatedAt); err != nil {
			p.logger.Errorf("failed to scan meal: %v", err)
			return nil, err
		}
		meals = append(meals, m)
	}
	return meals, rows.Err()
}

func (p *PostgresStorage) GetMeal(ctx context.Context, ownerID, id string) (*internal.Meal, error) {
	row := p.pool.QueryRow(ctx, `SELECT id, user_id, name, description, is_on_diet, date, created_at FROM meals WHERE user_id = $1 AND id = $2`, ownerID, id)
	var m internal.Meal
	if err := row.Scan(&m.ID, &m.OwnerID, &m.Name, &m.Description, &m.IsOnDiet, &m.Date, &m.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		p.logger.Errorf("failed to scan meal: %v", err)
		return nil, err
	}
	return &m, nil
}

func (p *PostgresStorage) UpdateMeal(ctx context.Context, meal *internal.Meal) error {
	tag, err := p.pool.Exec(ctx, `UPDATE meals SET name = $1, description = $2, is_on_diet = $3, date = $4 WHERE user_id = $5 AND id = $6`,
		meal.Name, meal.Description, meal.IsOnDiet, meal.Date, meal.OwnerID, meal.ID)
	if err != nil {
		p.logger.Errorf("failed to update meal: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresStorage) DeleteMeal(ctx context.Context, ownerID, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM meals WHERE user_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		p.logger.Errorf("failed to delete meal: %v", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Compile-time assertions ---
var _ UserRepository = (*PostgresStorage)(nil)
var _ MealRepository = (*PostgresStorage)(nil)

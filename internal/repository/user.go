package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/taskhive/taskhive/internal/domain"
)

var userColumns = []string{"id", "full_name", "email", "telephone", "created_at"}

// UserRepository handles database operations for users. Emails are expected
// to arrive already normalized (see domain.NormalizeEmail).
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.Telephone,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}

// Create inserts a new user. A duplicate email surfaces as ErrEmailTaken.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query, args, err := psql.
		Insert("users").
		Columns("full_name", "email", "telephone").
		Values(user.FullName, user.Email, user.Telephone).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build Create query: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, domain.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	query, args, err := psql.
		Select(userColumns...).
		From("users").
		Where(sq.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByID query for user %s: %w", userID, err)
	}

	return scanUser(r.pool.QueryRow(ctx, query, args...))
}

// GetByEmail retrieves a user by normalized email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query, args, err := psql.
		Select(userColumns...).
		From("users").
		Where(sq.Eq{"email": domain.NormalizeEmail(email)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByEmail query: %w", err)
	}

	return scanUser(r.pool.QueryRow(ctx, query, args...))
}

// GetByIDs retrieves a batch of users keyed by ID.
func (r *UserRepository) GetByIDs(ctx context.Context, userIDs []string) (map[string]*domain.User, error) {
	users := make(map[string]*domain.User, len(userIDs))
	if len(userIDs) == 0 {
		return users, nil
	}

	query, args, err := psql.
		Select(userColumns...).
		From("users").
		Where(sq.Eq{"id": userIDs}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build GetByIDs query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users[user.ID] = user
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return users, nil
}

// UpsertByEmail creates the user or refreshes full_name/telephone on the
// existing row, in one statement keyed by the normalized email. Not a
// read-then-write: concurrent upserts for the same email converge on one row.
func (r *UserRepository) UpsertByEmail(ctx context.Context, user *domain.User) (*domain.User, error) {
	user.Email = domain.NormalizeEmail(user.Email)

	query, args, err := psql.
		Insert("users").
		Columns("full_name", "email", "telephone").
		Values(user.FullName, user.Email, user.Telephone).
		Suffix(`ON CONFLICT (email) DO UPDATE
			SET full_name = EXCLUDED.full_name, telephone = EXCLUDED.telephone
			RETURNING id, created_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build UpsertByEmail query: %w", err)
	}

	err = r.pool.QueryRow(ctx, query, args...).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert user: %w", err)
	}

	return user, nil
}

// List retrieves users matching an optional case-insensitive substring over
// full_name and email, with clamped pagination.
func (r *UserRepository) List(ctx context.Context, search string, page, pageSize int) ([]*domain.User, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	base := psql.Select(userColumns...).From("users")
	count := psql.Select("COUNT(*)").From("users")
	if search != "" {
		pattern := "%" + search + "%"
		match := sq.Or{sq.ILike{"full_name": pattern}, sq.ILike{"email": pattern}}
		base = base.Where(match)
		count = count.Where(match)
	}

	query, args, err := base.
		OrderBy("full_name ASC").
		OrderBy("id ASC").
		Limit(uint64(pageSize)).
		Offset(uint64((page - 1) * pageSize)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build List query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate rows: %w", err)
	}

	countQuery, countArgs, err := count.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count query: %w", err)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	return users, total, nil
}

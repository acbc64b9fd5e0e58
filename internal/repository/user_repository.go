package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/storefront-api/internal/domain"
)

// UserRepository defines persistence access for customer accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	// Update writes the editable profile fields. Password and role are untouched.
	Update(ctx context.Context, user *domain.User) error
	// CompleteProfile stores name, email, username, password hash and address on a
	// verified user whose profile is still incomplete. Reports false when the user
	// is missing, unverified or already registered.
	CompleteProfile(ctx context.Context, user *domain.User) (bool, error)
	SetPasswordHash(ctx context.Context, id, hash string) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, limit, offset int) ([]domain.User, int, error)
	SetActive(ctx context.Context, id string, active bool) error
	TouchLastLogin(ctx context.Context, id string, at time.Time) error

	// SetOTP overwrites the outstanding code of an existing user. ErrNotFound when
	// no user has the phone.
	SetOTP(ctx context.Context, phone, code string, expires time.Time) (*domain.User, error)
	// CreatePending inserts a phone-only user holding a code. ErrDuplicate when the
	// phone was registered concurrently.
	CreatePending(ctx context.Context, phone, code string, expires time.Time) (*domain.User, error)
	// ConsumeOTP clears a matching unexpired code, marks the user verified and stamps
	// the login time. Reports false when the code no longer matches.
	ConsumeOTP(ctx context.Context, id, code string, now time.Time) (bool, error)
	ClearOTP(ctx context.Context, id string) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userColumns = `id, phone, name, COALESCE(email, ''), username, password_hash, role, active, verified,
        otp_code, otp_expires, last_login,
        address_area, address_street, address_city, address_state, address_zip_code, address_country,
        created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	if err := row.Scan(
		&user.ID,
		&user.Phone,
		&user.Name,
		&user.Email,
		&user.Username,
		&user.PasswordHash,
		&user.Role,
		&user.Active,
		&user.Verified,
		&user.OTPCode,
		&user.OTPExpires,
		&user.LastLogin,
		&user.Address.Area,
		&user.Address.Street,
		&user.Address.City,
		&user.Address.State,
		&user.Address.ZipCode,
		&user.Address.Country,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (phone, name, email, username, password_hash, role, active, verified,
            address_area, address_street, address_city, address_state, address_zip_code, address_country)
        VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
        RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.Phone,
		user.Name,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.Role,
		user.Active,
		user.Verified,
		user.Address.Area,
		user.Address.Street,
		user.Address.City,
		user.Address.State,
		user.Address.ZipCode,
		user.Address.Country,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return translateWriteError(err)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET name=$1, email=NULLIF($2, ''), username=$3,
            address_area=$4, address_street=$5, address_city=$6, address_state=$7,
            address_zip_code=$8, address_country=$9, updated_at=NOW()
        WHERE id=$10
        RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.Username,
		user.Address.Area,
		user.Address.Street,
		user.Address.City,
		user.Address.State,
		user.Address.ZipCode,
		user.Address.Country,
		user.ID,
	).Scan(&user.UpdatedAt)
	return translateWriteError(err)
}

func (r *userRepository) CompleteProfile(ctx context.Context, user *domain.User) (bool, error) {
	const query = `
        UPDATE users SET name=$1, email=$2, username=$3, password_hash=$4,
            address_area=$5, address_street=$6, address_city=$7, address_state=$8,
            address_zip_code=$9, address_country=$10, updated_at=NOW()
        WHERE id=$11 AND verified AND (email IS NULL OR name = '')
        RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		user.Name,
		user.Email,
		user.Username,
		user.PasswordHash,
		user.Address.Area,
		user.Address.Street,
		user.Address.City,
		user.Address.State,
		user.Address.ZipCode,
		user.Address.Country,
		user.ID,
	).Scan(&user.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, translateWriteError(err)
	}
	return true, nil
}

func (r *userRepository) SetPasswordHash(ctx context.Context, id, hash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET password_hash=$1, updated_at=NOW() WHERE id=$2`, hash, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
}

func (r *userRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE phone=$1`, phone))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email))
}

func (r *userRepository) List(ctx context.Context, limit, offset int) ([]domain.User, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, *user)
	}
	return users, total, rows.Err()
}

func (r *userRepository) SetActive(ctx context.Context, id string, active bool) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE users SET active=$1, updated_at=NOW() WHERE id=$2`, active, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE users SET last_login=$1, updated_at=NOW() WHERE id=$2`, at, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) SetOTP(ctx context.Context, phone, code string, expires time.Time) (*domain.User, error) {
	const query = `
        UPDATE users SET otp_code=$1, otp_expires=$2, updated_at=NOW()
        WHERE phone=$3
        RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, query, code, expires, phone))
}

func (r *userRepository) CreatePending(ctx context.Context, phone, code string, expires time.Time) (*domain.User, error) {
	const query = `
        INSERT INTO users (phone, otp_code, otp_expires, role, active, verified)
        VALUES ($1, $2, $3, $4, TRUE, FALSE)
        RETURNING ` + userColumns
	user, err := scanUser(r.pool.QueryRow(ctx, query, phone, code, expires, domain.RoleUser))
	if err != nil {
		return nil, translateWriteError(err)
	}
	return user, nil
}

func (r *userRepository) ConsumeOTP(ctx context.Context, id, code string, now time.Time) (bool, error) {
	const query = `
        UPDATE users SET otp_code=NULL, otp_expires=NULL, verified=TRUE, last_login=$3, updated_at=NOW()
        WHERE id=$1 AND otp_code=$2 AND otp_expires > $3`
	cmd, err := r.pool.Exec(ctx, query, id, code, now)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() == 1, nil
}

func (r *userRepository) ClearOTP(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET otp_code=NULL, otp_expires=NULL, updated_at=NOW() WHERE id=$1`, id)
	return err
}

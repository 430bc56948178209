package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/example/ec-storefront/internal/apperror"
	"github.com/example/ec-storefront/internal/domain/user"
	"github.com/lib/pq"
)

const userColumns = `user_id, first_name, last_name, email, password_hash, role, account_status,
	is_email_verified, verification_token, token_expiry, reset_token, reset_expiry, created_at, updated_at`

const uniqueViolation = "23505"

// PostgresUserStore implements user.Repository.
type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgresUserStore(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) Insert(ctx context.Context, u *user.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, u.UserID, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.Role, u.AccountStatus,
		u.IsEmailVerified, nullString(u.VerificationToken), nullTime(u.TokenExpiry),
		nullString(u.ResetToken), nullTime(u.ResetExpiry), u.CreatedAt, u.UpdatedAt)
	return userWriteError("insert user", err)
}

func (s *PostgresUserStore) Update(ctx context.Context, u *user.User) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE users SET
			first_name = $2, last_name = $3, email = $4, password_hash = $5, role = $6,
			account_status = $7, is_email_verified = $8, verification_token = $9,
			token_expiry = $10, reset_token = $11, reset_expiry = $12, updated_at = $13
		WHERE user_id = $1
	`, u.UserID, u.FirstName, u.LastName, u.Email, u.PasswordHash, u.Role, u.AccountStatus,
		u.IsEmailVerified, nullString(u.VerificationToken), nullTime(u.TokenExpiry),
		nullString(u.ResetToken), nullTime(u.ResetExpiry), u.UpdatedAt)
	return userWriteError("update user", err)
}

func (s *PostgresUserStore) FindByID(ctx context.Context, userID string) (*user.User, error) {
	return s.findOne(ctx, "user_id", userID)
}

func (s *PostgresUserStore) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.findOne(ctx, "email", email)
}

func (s *PostgresUserStore) FindByVerificationToken(ctx context.Context, token string) (*user.User, error) {
	if token == "" {
		return nil, nil
	}
	return s.findOne(ctx, "verification_token", token)
}

func (s *PostgresUserStore) FindByResetToken(ctx context.Context, token string) (*user.User, error) {
	if token == "" {
		return nil, nil
	}
	return s.findOne(ctx, "reset_token", token)
}

// findOne looks a user up by column, which is always one of the constants above.
func (s *PostgresUserStore) findOne(ctx context.Context, column, value string) (*user.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+column+` = $1`, value)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Storage("find user", err)
	}
	return u, nil
}

func (s *PostgresUserStore) List(ctx context.Context) ([]*user.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, apperror.Storage("list users", err)
	}
	defer rows.Close()

	users := make([]*user.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, apperror.Storage("scan user", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Storage("scan user", err)
	}
	return users, nil
}

func (s *PostgresUserStore) Delete(ctx context.Context, userID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE user_id = $1`, userID)
	if err != nil {
		return false, apperror.Storage("delete user", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, apperror.Storage("delete user", err)
	}
	return n > 0, nil
}

func scanUser(row rowScanner) (*user.User, error) {
	var (
		u                             user.User
		verificationToken, resetToken sql.NullString
		tokenExpiry, resetExpiry      sql.NullTime
	)
	err := row.Scan(&u.UserID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.Role,
		&u.AccountStatus, &u.IsEmailVerified, &verificationToken, &tokenExpiry,
		&resetToken, &resetExpiry, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.VerificationToken = verificationToken.String
	u.ResetToken = resetToken.String
	if tokenExpiry.Valid {
		t := tokenExpiry.Time
		u.TokenExpiry = &t
	}
	if resetExpiry.Valid {
		t := resetExpiry.Time
		u.ResetExpiry = &t
	}
	return &u, nil
}

func userWriteError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return user.ErrEmailTaken
	}
	return apperror.Storage(op, err)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

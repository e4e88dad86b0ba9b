package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Leopold1975/recipebox/internal/pkg/config"
	"github.com/Leopold1975/recipebox/internal/pkg/pgtools"
	"github.com/Leopold1975/recipebox/internal/recipebox/domain/models"
	"github.com/Leopold1975/recipebox/internal/recipebox/repository/userrepo"
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersPostgresRepo struct {
	db *pgxpool.Pool
}

func New(ctx context.Context, cfg config.PostgresDB) (UsersPostgresRepo, error) {
	db, err := pgtools.Connect(ctx, pgtools.ConnString(cfg))
	if err != nil {
		return UsersPostgresRepo{}, fmt.Errorf("connect to db error: %w", err)
	}

	if err := pgtools.ApplyMigration(cfg); err != nil {
		return UsersPostgresRepo{}, fmt.Errorf("apply migration error: %w", err)
	}

	return UsersPostgresRepo{
		db: db,
	}, nil
}

func (ur UsersPostgresRepo) CreateUser(ctx context.Context, u models.User) (user models.User, err error) {
	tx, err := ur.db.Begin(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "create")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Insert("users").
		Columns("email", "name", "password_hash", "is_active", "is_staff", "is_superuser").
		Values(u.Email, u.Name, u.PasswordHash, u.IsActive, u.IsStaff, u.IsSuperuser).
		Suffix("RETURNING id, created_at").ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("to sql error: %w", err)
	}

	user = u

	if err = tx.QueryRow(ctx, query, args...).Scan(&user.ID, &user.CreatedAt); err != nil {
		target := new(pgconn.PgError)
		if errors.As(err, &target) && target.Code == "23505" {
			err = userrepo.ErrAlreadyExists

			return models.User{}, err
		}

		return models.User{}, fmt.Errorf("scan error: %w", err)
	}

	return user, nil
}

func (ur UsersPostgresRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	return ur.getUser(ctx, squirrel.Eq{"email": email})
}

func (ur UsersPostgresRepo) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	return ur.getUser(ctx, squirrel.Eq{"id": id})
}

func (ur UsersPostgresRepo) getUser(ctx context.Context, where squirrel.Eq) (models.User, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Select("id", "email", "name", "password_hash",
		"is_active", "is_staff", "is_superuser", "created_at").
		From("users").
		Where(where).ToSql()
	if err != nil {
		return models.User{}, fmt.Errorf("to sql error: %w", err)
	}

	var u models.User

	if err := ur.db.QueryRow(ctx, query, args...).Scan(
		&u.ID, &u.Email, &u.Name, &u.PasswordHash,
		&u.IsActive, &u.IsStaff, &u.IsSuperuser, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return u, userrepo.ErrNotFound
		}

		return u, fmt.Errorf("scan error: %w", err)
	}

	return u, nil
}

func (ur UsersPostgresRepo) UpdateUser(ctx context.Context, u models.User) (err error) {
	tx, err := ur.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "update")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Update("users").
		Set("name", u.Name).
		Set("password_hash", u.PasswordHash).
		Set("is_active", u.IsActive).
		Set("is_staff", u.IsStaff).
		Set("is_superuser", u.IsSuperuser).
		Where(squirrel.Eq{"id": u.ID}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	ct, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return userrepo.ErrNotFound
	}

	return nil
}

func (ur UsersPostgresRepo) Shutdown(ctx context.Context) error {
	done := make(chan struct{})

	go func() {
		ur.db.Close()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("context error: %w", ctx.Err())
	case <-done:
		return nil
	}
}

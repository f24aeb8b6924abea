package userrepo

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/givehub/givehub/internal/domain"
	"github.com/givehub/givehub/internal/pg"
)

type Repository struct {
	db        pg.Database
	txManager pg.TXManager
}

func New(db pg.Database, txManager pg.TXManager) *Repository {
	return &Repository{
		db:        db,
		txManager: txManager,
	}
}

const userColumns = "id, name, email, password_hash, is_admin, created_at"

func (r *Repository) findOne(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var user domain.User
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.IsAdmin, &user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		zap.L().Error("can't find user", zap.Error(err))
		return nil, err
	}
	return &user, nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
        SELECT ` + userColumns + `
        FROM users
        WHERE email = $1
    `
	return r.findOne(ctx, query, email)
}

// FindByID loads the user together with their assigned permissions.
func (r *Repository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
        SELECT ` + userColumns + `
        FROM users
        WHERE id = $1
    `
	user, err := r.findOne(ctx, query, id)
	if err != nil || user == nil {
		return user, err
	}

	permissions, err := r.GetUserPermissions(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Permissions = permissions
	return user, nil
}

func (r *Repository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	query := `
        INSERT INTO users (id, name, email, password_hash, is_admin)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at
    `
	err := r.db.QueryRow(ctx, query, user.ID, user.Name, user.Email, user.PasswordHash, user.IsAdmin).
		Scan(&user.CreatedAt)
	if err != nil {
		zap.L().Error("can't create user", zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (r *Repository) Update(ctx context.Context, user *domain.User) error {
	query := `
        UPDATE users
        SET name = $1, email = $2, password_hash = $3, is_admin = $4
        WHERE id = $5
    `
	_, err := r.db.Exec(ctx, query, user.Name, user.Email, user.PasswordHash, user.IsAdmin, user.ID)
	if err != nil {
		zap.L().Error("can't update user", zap.Error(err))
		return err
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	query := `
        DELETE FROM users
        WHERE id = $1
    `
	_, err := r.db.Exec(ctx, query, id)
	if err != nil {
		zap.L().Error("can't delete user", zap.Error(err))
		return err
	}
	return nil
}

// List filters by a name/email substring and optionally by admin flag.
func (r *Repository) List(ctx context.Context, search string, isAdmin *bool, limit, offset int) ([]domain.User, int64, error) {
	where := "WHERE 1=1"
	args := []any{}
	if search != "" {
		args = append(args, "%"+search+"%")
		n := strconv.Itoa(len(args))
		where += " AND (name ILIKE $" + n + " OR email ILIKE $" + n + ")"
	}
	if isAdmin != nil {
		args = append(args, *isAdmin)
		where += " AND is_admin = $" + strconv.Itoa(len(args))
	}

	var total int64
	countQuery := "SELECT COUNT(*) FROM users " + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		zap.L().Error("can't count users", zap.Error(err))
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(
		"SELECT "+userColumns+" FROM users %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		where, len(args)-1, len(args),
	)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		zap.L().Error("can't list users", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.IsAdmin, &user.CreatedAt); err != nil {
			zap.L().Error("can't scan user row", zap.Error(err))
			return nil, 0, err
		}
		users = append(users, user)
	}
	return users, total, nil
}

func (r *Repository) GetUserPermissions(ctx context.Context, userID string) ([]string, error) {
	query := `
        SELECT p.name
        FROM permissions p
        JOIN user_permissions up ON up.permission_id = p.id
        WHERE up.user_id = $1
        ORDER BY p.name
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		zap.L().Error("can't get user permissions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

func (r *Repository) ListPermissions(ctx context.Context) ([]domain.Permission, error) {
	query := `
        SELECT id, name, guard_name
        FROM permissions
        ORDER BY name
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		zap.L().Error("can't list permissions", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var permissions []domain.Permission
	for rows.Next() {
		var p domain.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.GuardName); err != nil {
			return nil, err
		}
		permissions = append(permissions, p)
	}
	return permissions, nil
}

func (r *Repository) AssignPermissions(ctx context.Context, userID string, names []string) error {
	query := `
        INSERT INTO user_permissions (user_id, permission_id)
        SELECT $1, id FROM permissions WHERE name = ANY($2)
        ON CONFLICT DO NOTHING
    `
	return r.txManager.Begin(ctx, func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, query, userID, names)
		if err != nil {
			zap.L().Error("can't assign permissions", zap.Error(err))
			return err
		}
		return nil
	})
}

// SyncPermissions replaces the user's direct permissions with the
// given set atomically.
func (r *Repository) SyncPermissions(ctx context.Context, userID string, names []string) error {
	return r.txManager.Begin(ctx, func(ctx context.Context) error {
		if _, err := r.db.Exec(ctx, `DELETE FROM user_permissions WHERE user_id = $1`, userID); err != nil {
			zap.L().Error("can't clear permissions", zap.Error(err))
			return err
		}
		query := `
        INSERT INTO user_permissions (user_id, permission_id)
        SELECT $1, id FROM permissions WHERE name = ANY($2)
        ON CONFLICT DO NOTHING
    `
		if _, err := r.db.Exec(ctx, query, userID, names); err != nil {
			zap.L().Error("can't sync permissions", zap.Error(err))
			return err
		}
		return nil
	})
}

func (r *Repository) RemovePermissions(ctx context.Context, userID string, names []string) error {
	query := `
        DELETE FROM user_permissions
        WHERE user_id = $1 AND permission_id IN (SELECT id FROM permissions WHERE name = ANY($2))
    `
	return r.txManager.Begin(ctx, func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, query, userID, names)
		if err != nil {
			zap.L().Error("can't remove permissions", zap.Error(err))
			return err
		}
		return nil
	})
}

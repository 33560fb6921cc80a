package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"

	"github.com/agrohub/marketplace/internal/domain"
	"github.com/agrohub/marketplace/internal/port"
)

var ErrUserNotFound = errors.New("user not found")

type userRepository struct {
	db querier
}

func NewUser(pool *pgxpool.Pool) port.UserRepository {
	return &userRepository{db: pool}
}

func (r *userRepository) GetUser(ctx context.Context, userID int64) (domain.User, error) {
	var u domain.User

	var (
		role      string
		name      *string
		companyID *int64
	)

	row := r.db.QueryRow(ctx,
		`SELECT id, role, phone, name, company_id, created_at FROM users WHERE id = $1`, userID)

	if err := row.Scan(&u.ID, &role, &u.Phone, &name, &companyID, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return u, fmt.Errorf("row.Scan: %w", ErrUserNotFound)
		}
		return u, fmt.Errorf("row.Scan: %w", err)
	}

	parsedRole, err := domain.ToRole(role)
	if err != nil {
		return u, fmt.Errorf("domain.ToRole[%s]: %w", role, err)
	}

	u.Role = parsedRole
	u.Name = lo.FromPtr(name)
	u.CompanyID = companyID

	return u, nil
}

func (r *userRepository) ListCompanyVendorIDs(ctx context.Context, companyID int64) ([]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id FROM users WHERE company_id = $1 AND role = $2 ORDER BY id`,
		companyID, string(domain.RoleVendor))
	if err != nil {
		return nil, fmt.Errorf("db.Query: %w", err)
	}
	defer rows.Close()

	var ids []int64

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return ids, nil
}

package repository_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/agrohub/marketplace/internal/domain"
)

func startPostgres(ctx context.Context) (testcontainers.Container, string, error) {
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("marketplace_test"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		tcpostgres.WithInitScripts(filepath.Join("..", "..", "migrations", "000001_init.up.sql")),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, "", fmt.Errorf("tcpostgres.Run: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return container, "", fmt.Errorf("container.ConnectionString: %w", err)
	}

	return container, connStr, nil
}

// phone numbers and article numbers carry UNIQUE constraints, so fixtures
// derive them from a counter instead of trusting randomness.
var fixtureSeq atomic.Int64

func createUser(ctx context.Context, pool *pgxpool.Pool, role domain.Role, companyID *int64) (domain.User, error) {
	var u domain.User

	phone := fmt.Sprintf("+7701%07d", fixtureSeq.Add(1))

	row := pool.QueryRow(ctx,
		`INSERT INTO users (role, phone, name, company_id) VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		string(role), phone, gofakeit.Name(), companyID)

	if err := row.Scan(&u.ID, &u.CreatedAt); err != nil {
		return u, fmt.Errorf("row.Scan: %w", err)
	}

	u.Role = role
	u.Phone = phone
	u.CompanyID = companyID

	return u, nil
}

func createProduct(ctx context.Context, pool *pgxpool.Pool, vendorID int64, price string, stock int) (domain.Product, error) {
	var p domain.Product

	p.VendorID = vendorID
	p.Name = gofakeit.ProductName()
	p.ArticleNumber = fmt.Sprintf("ART-%06d", fixtureSeq.Add(1))
	p.Price = domain.NewMoney(decimal.RequireFromString(price))
	p.StockQuantity = stock
	p.Status = domain.ProductStatusFor(stock)

	row := pool.QueryRow(ctx,
		`INSERT INTO products (vendor_id, name, article_number, price_amount, price_currency, stock_quantity, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at`,
		p.VendorID, p.Name, p.ArticleNumber,
		p.Price.Amount.String(), p.Price.Currency.String(),
		p.StockQuantity, string(p.Status))

	if err := row.Scan(&p.ID, &p.CreatedAt); err != nil {
		return p, fmt.Errorf("row.Scan: %w", err)
	}

	return p, nil
}

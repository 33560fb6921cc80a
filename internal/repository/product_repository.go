package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/agrohub/marketplace/internal/domain"
	"github.com/agrohub/marketplace/internal/port"
)

var (
	ErrProductNotFound = errors.New("product not found")

	// ErrStockConflict means the guarded decrement matched no row: the
	// stock moved under us or the product vanished.
	ErrStockConflict = errors.New("stock decrement conflict")
)

const productColumns = `id, vendor_id, name, article_number, price_amount::text, price_currency, stock_quantity, status, created_at`

type productRepository struct {
	db querier
}

func NewProduct(pool *pgxpool.Pool) port.ProductRepository {
	return &productRepository{db: pool}
}

func NewProductWithTx(tx pgx.Tx) port.ProductRepository {
	return &productRepository{db: tx}
}

func (r *productRepository) GetProduct(ctx context.Context, productID int64) (domain.Product, error) {
	var p domain.Product

	row := r.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, productID)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return p, fmt.Errorf("scanProduct: %w", ErrProductNotFound)
		}
		return p, fmt.Errorf("scanProduct: %w", err)
	}

	return p, nil
}

func (r *productRepository) GetProducts(ctx context.Context, productIDs []int64) ([]domain.Product, error) {
	return r.selectProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ANY($1)`, productIDs)
}

func (r *productRepository) LockProducts(ctx context.Context, productIDs []int64) ([]domain.Product, error) {
	// Deterministic lock order keeps concurrent checkouts deadlock-free.
	return r.selectProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE`, productIDs)
}

func (r *productRepository) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE products
		 SET stock_quantity = stock_quantity - $2,
		     status = CASE WHEN stock_quantity - $2 > 0 THEN $3 ELSE $4 END
		 WHERE id = $1 AND stock_quantity >= $2`,
		productID, quantity,
		string(domain.ProductStatusInStock), string(domain.ProductStatusOnOrder))
	if err != nil {
		return fmt.Errorf("db.Exec: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("product[%d] quantity[%d]: %w", productID, quantity, ErrStockConflict)
	}

	return nil
}

func (r *productRepository) selectProducts(ctx context.Context, sql string, productIDs []int64) ([]domain.Product, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx, sql, productIDs)
	if err != nil {
		return nil, fmt.Errorf("db.Query: %w", err)
	}
	defer rows.Close()

	var products []domain.Product

	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scanProduct: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return products, nil
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var (
		p             domain.Product
		priceAmount   string
		priceCurrency string
		status        string
		createdAt     time.Time
	)

	if err := row.Scan(&p.ID, &p.VendorID, &p.Name, &p.ArticleNumber,
		&priceAmount, &priceCurrency, &p.StockQuantity, &status, &createdAt); err != nil {
		return p, err
	}

	price, err := mapMoney(priceAmount, priceCurrency)
	if err != nil {
		return p, fmt.Errorf("mapMoney: %w", err)
	}

	p.Price = price
	p.Status = domain.ProductStatus(status)
	p.CreatedAt = createdAt

	return p, nil
}

func mapMoney(amount, currencyCode string) (domain.Money, error) {
	parsedAmount, err := decimal.NewFromString(amount)
	if err != nil {
		return domain.Money{}, fmt.Errorf("amount[%s] is not valid: %w", amount, err)
	}

	parsedCurrency, err := currency.ParseISO(currencyCode)
	if err != nil {
		return domain.Money{}, fmt.Errorf("currency[%s] is not valid: %w", currencyCode, err)
	}

	return domain.Money{Amount: parsedAmount, Currency: parsedCurrency}, nil
}

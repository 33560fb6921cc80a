package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"

	"github.com/agrohub/marketplace/internal/domain"
	"github.com/agrohub/marketplace/internal/port"
)

var (
	ErrNotFound = errors.New("order not found")
)

type orderRepository struct {
	db querier
}

func NewOrder(pool *pgxpool.Pool) port.OrderRepository {
	return &orderRepository{db: pool}
}

func NewOrderWithTx(tx pgx.Tx) port.OrderRepository {
	return &orderRepository{db: tx}
}

func (r *orderRepository) GetOrder(ctx context.Context, orderID int64) (domain.Order, error) {
	var o domain.Order

	order, err := withTx(ctx, r.db, func(q querier) (domain.Order, error) {
		row := q.QueryRow(ctx,
			`SELECT id, order_number, user_id, vendor_id, total_amount::text, currency,
			        status, delivery_address, comment, created_at
			 FROM orders WHERE id = $1`, orderID)

		dbOrder, err := scanOrder(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return o, fmt.Errorf("scanOrder: %w", ErrNotFound)
			}
			return o, fmt.Errorf("scanOrder: %w", err)
		}

		items, err := selectOrderItems(ctx, q, orderID)
		if err != nil {
			return o, fmt.Errorf("selectOrderItems: %w", err)
		}

		dbOrder.Items = items
		return dbOrder, nil
	})
	if err != nil {
		return o, fmt.Errorf("r.withTx: %w", err)
	}

	return order, nil
}

// InsertOrder is two-phase by design: the order number encodes the
// generated id, so the row is inserted first and updated with the derived
// number afterwards, all within one transaction.
func (r *orderRepository) InsertOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	var o domain.Order

	if len(order.Items) == 0 {
		return o, errors.New("no items in order")
	}

	created, err := withTx(ctx, r.db, func(q querier) (domain.Order, error) {
		row := q.QueryRow(ctx,
			`INSERT INTO orders (user_id, vendor_id, total_amount, currency, status, delivery_address, comment)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING id, created_at`,
			order.UserID, order.VendorID,
			order.TotalAmount.Amount.String(), order.TotalAmount.Currency.String(),
			string(order.Status),
			nilIfEmpty(order.DeliveryAddress), nilIfEmpty(order.Comment))

		var (
			orderID   int64
			createdAt time.Time
		)
		if err := row.Scan(&orderID, &createdAt); err != nil {
			return o, fmt.Errorf("row.Scan: %w", err)
		}

		orderNumber := domain.BuildOrderNumber(orderID, createdAt)

		if _, err := q.Exec(ctx,
			`UPDATE orders SET order_number = $1 WHERE id = $2`, orderNumber, orderID); err != nil {
			return o, fmt.Errorf("q.Exec order_number: %w", err)
		}

		items := make([]domain.OrderItem, 0, len(order.Items))
		for _, item := range order.Items {
			itemRow := q.QueryRow(
				ctx,
				`INSERT INTO order_items (order_id, product_id, quantity, price_amount, price_currency)
				 VALUES ($1, $2, $3, $4, $5)
				 RETURNING id`,
				orderID, item.ProductID, item.Quantity,
				item.PriceAtOrder.Amount.String(), item.PriceAtOrder.Currency.String())

			if err := itemRow.Scan(&item.ID); err != nil {
				return o, fmt.Errorf("itemRow.Scan: %w", err)
			}

			item.OrderID = orderID
			items = append(items, item)
		}

		stored := order
		stored.ID = orderID
		stored.OrderNumber = orderNumber
		stored.CreatedAt = createdAt
		stored.Items = items

		return stored, nil
	})
	if err != nil {
		return o, fmt.Errorf("r.withTx: %w", err)
	}

	return created, nil
}

func (r *orderRepository) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	sql := `SELECT o.id, o.order_number, o.user_id, o.vendor_id, o.total_amount::text, o.currency,
	               o.status, o.delivery_address, o.comment, o.created_at,
	               i.id, i.product_id, i.quantity, i.price_amount::text, i.price_currency
	        FROM orders o
	        JOIN order_items i ON i.order_id = o.id`

	where, args := buildOrderFilter(filter)
	sql += where + ` ORDER BY o.created_at DESC, o.id DESC, i.id`

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("db.Query: %w", err)
	}
	defer rows.Close()

	// Group join rows into orders, preserving the newest-first row order.
	var (
		orders []domain.Order
		byID   = make(map[int64]int)
	)

	for rows.Next() {
		order, item, err := scanOrderJoinRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanOrderJoinRow: %w", err)
		}

		idx, exists := byID[order.ID]
		if !exists {
			orders = append(orders, order)
			idx = len(orders) - 1
			byID[order.ID] = idx
		}

		orders[idx].Items = append(orders[idx].Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return orders, nil
}

func (r *orderRepository) UpdateOrderStatus(ctx context.Context, orderID int64, status domain.OrderStatus) (domain.Order, error) {
	var o domain.Order

	order, err := withTx(ctx, r.db, func(q querier) (domain.Order, error) {
		cmdTag, err := q.Exec(ctx,
			`UPDATE orders SET status = $2 WHERE id = $1`, orderID, string(status))
		if err != nil {
			return o, fmt.Errorf("q.Exec: %w", err)
		}

		if cmdTag.RowsAffected() == 0 {
			return o, fmt.Errorf("q.Exec: %w", ErrNotFound)
		}

		updated, err := NewOrderWithTx(q.(pgx.Tx)).GetOrder(ctx, orderID)
		if err != nil {
			return o, fmt.Errorf("GetOrder: %w", err)
		}

		return updated, nil
	})
	if err != nil {
		return o, fmt.Errorf("r.withTx: %w", err)
	}

	return order, nil
}

func buildOrderFilter(filter domain.OrderFilter) (string, []any) {
	var (
		clauses []string
		args    []any
	)

	addClause := func(column string, value any) {
		args = append(args, value)
		clauses = append(clauses, fmt.Sprintf("%s = ANY($%d)", column, len(args)))
	}

	if len(filter.IDs) > 0 {
		addClause("o.id", filter.IDs)
	}
	if len(filter.UserIDs) > 0 {
		addClause("o.user_id", filter.UserIDs)
	}
	if len(filter.VendorIDs) > 0 {
		addClause("o.vendor_id", filter.VendorIDs)
	}
	if len(filter.Statuses) > 0 {
		statuses := lo.Map(filter.Statuses, func(s domain.OrderStatus, _ int) string {
			return string(s)
		})
		addClause("o.status", statuses)
	}

	if len(clauses) == 0 {
		return "", nil
	}

	where := " WHERE " + clauses[0]
	for _, clause := range clauses[1:] {
		where += " AND " + clause
	}

	return where, args
}

func selectOrderItems(ctx context.Context, q querier, orderID int64) ([]domain.OrderItem, error) {
	rows, err := q.Query(ctx,
		`SELECT id, order_id, product_id, quantity, price_amount::text, price_currency
		 FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("q.Query: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem

	for rows.Next() {
		var (
			item          domain.OrderItem
			priceAmount   string
			priceCurrency string
		)

		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity,
			&priceAmount, &priceCurrency); err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}

		price, err := mapMoney(priceAmount, priceCurrency)
		if err != nil {
			return nil, fmt.Errorf("mapMoney: %w", err)
		}
		item.PriceAtOrder = price

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return items, nil
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var (
		o               domain.Order
		orderNumber     *string
		totalAmount     string
		currencyCode    string
		status          string
		deliveryAddress *string
		comment         *string
	)

	if err := row.Scan(&o.ID, &orderNumber, &o.UserID, &o.VendorID, &totalAmount, &currencyCode,
		&status, &deliveryAddress, &comment, &o.CreatedAt); err != nil {
		return o, err
	}

	total, err := mapMoney(totalAmount, currencyCode)
	if err != nil {
		return o, fmt.Errorf("mapMoney: %w", err)
	}

	parsedStatus, err := domain.ToOrderStatus(status)
	if err != nil {
		return o, fmt.Errorf("domain.ToOrderStatus[%s]: %w", status, err)
	}

	o.OrderNumber = lo.FromPtr(orderNumber)
	o.TotalAmount = total
	o.Status = parsedStatus
	o.DeliveryAddress = lo.FromPtr(deliveryAddress)
	o.Comment = lo.FromPtr(comment)

	return o, nil
}

func scanOrderJoinRow(rows pgx.Rows) (domain.Order, domain.OrderItem, error) {
	var (
		o               domain.Order
		item            domain.OrderItem
		orderNumber     *string
		totalAmount     string
		currencyCode    string
		status          string
		deliveryAddress *string
		comment         *string
		itemAmount      string
		itemCurrency    string
	)

	if err := rows.Scan(&o.ID, &orderNumber, &o.UserID, &o.VendorID, &totalAmount, &currencyCode,
		&status, &deliveryAddress, &comment, &o.CreatedAt,
		&item.ID, &item.ProductID, &item.Quantity, &itemAmount, &itemCurrency); err != nil {
		return o, item, err
	}

	total, err := mapMoney(totalAmount, currencyCode)
	if err != nil {
		return o, item, fmt.Errorf("mapMoney total: %w", err)
	}

	price, err := mapMoney(itemAmount, itemCurrency)
	if err != nil {
		return o, item, fmt.Errorf("mapMoney item: %w", err)
	}

	parsedStatus, err := domain.ToOrderStatus(status)
	if err != nil {
		return o, item, fmt.Errorf("domain.ToOrderStatus[%s]: %w", status, err)
	}

	o.OrderNumber = lo.FromPtr(orderNumber)
	o.TotalAmount = total
	o.Status = parsedStatus
	o.DeliveryAddress = lo.FromPtr(deliveryAddress)
	o.Comment = lo.FromPtr(comment)

	item.OrderID = o.ID
	item.PriceAtOrder = price

	return o, item, nil
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

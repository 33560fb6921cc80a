package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/agrohub/marketplace/internal/cartstore"
	"github.com/agrohub/marketplace/internal/domain"
	"github.com/agrohub/marketplace/internal/port"
	"github.com/agrohub/marketplace/internal/repository"
)

// CartService mutates the ephemeral cart. Product existence is checked at
// add time only; price and stock are not re-verified until checkout.
type CartService struct {
	carts    cartstore.Store
	products port.ProductRepository
}

func NewCart(carts cartstore.Store, products port.ProductRepository) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
	}
}

// List joins cart lines with live product state. Lines whose product has
// vanished from the catalog are silently dropped.
func (s *CartService) List(ctx context.Context, userID int64) ([]domain.CartItemView, error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("carts.Get: %w", err)
	}

	if len(cart.Lines) == 0 {
		return nil, nil
	}

	productIDs := lo.Map(cart.Lines, func(line domain.CartLine, _ int) int64 {
		return line.ProductID
	})

	products, err := s.products.GetProducts(ctx, lo.Uniq(productIDs))
	if err != nil {
		return nil, fmt.Errorf("products.GetProducts: %w", err)
	}

	byID := lo.SliceToMap(products, func(p domain.Product) (int64, domain.Product) {
		return p.ID, p
	})

	views := make([]domain.CartItemView, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		p, ok := byID[line.ProductID]
		if !ok {
			continue
		}

		views = append(views, domain.CartItemView{
			ProductID:     line.ProductID,
			Quantity:      line.Quantity,
			VendorID:      p.VendorID,
			Price:         p.Price,
			Name:          p.Name,
			ArticleNumber: p.ArticleNumber,
		})
	}

	return views, nil
}

func (s *CartService) Add(ctx context.Context, userID int64, productID int64, quantity int) error {
	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ProductNotFoundError{ProductID: productID}
		}
		return fmt.Errorf("products.GetProduct: %w", err)
	}

	line := domain.CartLine{
		ProductID: productID,
		Quantity:  quantity,
		VendorID:  p.VendorID,
	}

	if err := s.carts.Add(ctx, userID, line); err != nil {
		return fmt.Errorf("carts.Add: %w", err)
	}

	return nil
}

func (s *CartService) Remove(ctx context.Context, userID int64, productID int64) error {
	if err := s.carts.Remove(ctx, userID, productID); err != nil {
		return fmt.Errorf("carts.Remove: %w", err)
	}

	return nil
}

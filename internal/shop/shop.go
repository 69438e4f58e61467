// Package shop prices carts and turns them into orders.
package shop

import (
	"context"
	"errors"
	"fmt"

	"CosmicOutfits_OutfitBuilder/internal/config"
	"CosmicOutfits_OutfitBuilder/internal/models"
	"CosmicOutfits_OutfitBuilder/internal/storage"

	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

const bpsDenominator = 10_000

var ErrInvalidAddress = errors.New("invalid shipping address")

// Store is the slice of storage the checkout flow needs.
type Store interface {
	GetCart(ctx context.Context, userID string) (models.Cart, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	CreateOrder(ctx context.Context, userID, email string, addr models.Address, price storage.PriceFunc) (*models.Order, error)
	CancelOrder(ctx context.Context, id, userID string) (*models.Order, error)
}

// Emitter publishes row changes to realtime subscribers.
type Emitter interface {
	Emit(table, typ, userID string, record any)
}

type Service struct {
	store   Store
	events  Emitter
	pricing config.ShopConfig
	log     *zap.SugaredLogger
}

func NewService(store Store, events Emitter, pricing config.ShopConfig, log *zap.SugaredLogger) *Service {
	return &Service{
		store:   store,
		events:  events,
		pricing: pricing,
		log:     log.Named("shop"),
	}
}

// Price computes order totals for the given lines.
// Shipping is free once the subtotal reaches the threshold; tax is rounded half up.
func (s *Service) Price(items []models.CartItem) models.Totals {
	t := models.Totals{Currency: s.pricing.Currency}
	for _, it := range items {
		t.SubtotalCents += it.LineTotalCents()
	}
	if t.SubtotalCents > 0 {
		t.ShippingCents = s.pricing.ShippingCents
		if s.pricing.FreeShippingCents > 0 && t.SubtotalCents >= s.pricing.FreeShippingCents {
			t.ShippingCents = 0
		}
	}
	t.TaxCents = (t.SubtotalCents*s.pricing.TaxBPS + bpsDenominator/2) / bpsDenominator
	t.TotalCents = t.SubtotalCents + t.ShippingCents + t.TaxCents
	return t
}

// Quote prices the user's current cart without placing an order.
func (s *Service) Quote(ctx context.Context, userID string) (models.Cart, models.Totals, error) {
	cart, err := s.store.GetCart(ctx, userID)
	if err != nil {
		return models.Cart{}, models.Totals{}, err
	}
	if len(cart.Items) == 0 {
		return cart, models.Totals{}, storage.ErrEmptyCart
	}
	return cart, s.Price(cart.Items), nil
}

// Checkout places an order for the user's cart and announces the changes.
func (s *Service) Checkout(ctx context.Context, userID, email string, addr models.Address) (*models.Order, error) {
	if err := binding.Validator.ValidateStruct(addr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}

	order, err := s.store.CreateOrder(ctx, userID, email, addr, s.Price)
	if err != nil {
		return nil, err
	}
	s.log.Infow("order placed", "order_id", order.ID, "user_id", userID,
		"items", len(order.Items), "total_cents", order.TotalCents)

	s.events.Emit(models.TableOrders, models.EventInsert, userID, order)
	s.events.Emit(models.TableCart, models.EventDelete, userID, map[string]any{"cleared": true})
	s.announceStock(ctx, order.Items)
	return order, nil
}

// Cancel cancels a confirmed order and announces the restock.
func (s *Service) Cancel(ctx context.Context, orderID, userID string) (*models.Order, error) {
	order, err := s.store.CancelOrder(ctx, orderID, userID)
	if err != nil {
		return nil, err
	}
	s.log.Infow("order cancelled", "order_id", order.ID, "user_id", userID)

	s.events.Emit(models.TableOrders, models.EventUpdate, userID, order)
	s.announceStock(ctx, order.Items)
	return order, nil
}

// announceStock publishes the new stock level of every product in items once.
func (s *Service) announceStock(ctx context.Context, items []models.OrderItem) {
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if seen[it.ProductID] {
			continue
		}
		seen[it.ProductID] = true

		p, err := s.store.GetProduct(ctx, it.ProductID)
		if err != nil {
			s.log.Warnw("stock event skipped", "product_id", it.ProductID, "error", err)
			continue
		}
		s.events.Emit(models.TableProducts, models.EventUpdate, "", p)
	}
}

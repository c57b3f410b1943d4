package service

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/aether-industries/storefront-api/internal/models"
)

// CartStore is the persistence port for cart snapshots. Load returns
// (nil, nil) when no snapshot exists for the session.
type CartStore interface {
	Load(ctx context.Context, sessionID string) ([]byte, error)
	Save(ctx context.Context, sessionID string, data []byte) error
	Delete(ctx context.Context, sessionID string) error
}

// CartService holds the authoritative cart for each session and enforces
// at-most-one-line-per-product semantics. Every mutation serializes the full
// snapshot back to the store.
//
// Identity handling: the snapshot records the identity it was last written
// under. When the caller's current identity differs (login, logout, user
// switch; "" counts as an identity), the cart is cleared before the
// operation proceeds. This prevents cart leakage across accounts sharing a
// session, not cart expiry.
type CartService struct {
	store CartStore
}

// NewCartService constructs a CartService on top of a persistence port.
func NewCartService(store CartStore) *CartService {
	return &CartService{store: store}
}

// load deserializes the session's snapshot, clearing it when the identity
// changed since the last write. Malformed persisted data loads as an empty
// cart; the error is logged and never surfaced.
func (s *CartService) load(ctx context.Context, sessionID, identity string) (*models.CartSnapshot, error) {
	snap := &models.CartSnapshot{Owner: identity, Items: []models.CartItem{}}

	data, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return snap, nil
	}

	var stored models.CartSnapshot
	if err := json.Unmarshal(data, &stored); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("Malformed cart snapshot, resetting to empty")
		return snap, nil
	}
	if stored.Items == nil {
		stored.Items = []models.CartItem{}
	}

	if stored.Owner != identity {
		log.Info().Str("session_id", sessionID).Msg("Cart identity changed, clearing cart")
		if err := s.save(ctx, sessionID, snap); err != nil {
			return nil, err
		}
		return snap, nil
	}

	return &stored, nil
}

func (s *CartService) save(ctx context.Context, sessionID string, snap *models.CartSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return s.store.Save(ctx, sessionID, data)
}

// GetCart returns the session's cart lines.
func (s *CartService) GetCart(ctx context.Context, sessionID, identity string) ([]models.CartItem, error) {
	snap, err := s.load(ctx, sessionID, identity)
	if err != nil {
		return nil, err
	}
	return snap.Items, nil
}

// AddToCart merges a product snapshot into the cart: an existing line for the
// same product has its quantity incremented by quantity, otherwise a new line
// is appended. Quantity is not range-checked here; callers own validation.
func (s *CartService) AddToCart(ctx context.Context, sessionID, identity string, product models.CartProduct, quantity int) ([]models.CartItem, error) {
	snap, err := s.load(ctx, sessionID, identity)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range snap.Items {
		if snap.Items[i].ProductID == product.ProductID {
			snap.Items[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		snap.Items = append(snap.Items, models.CartItem{CartProduct: product, Quantity: quantity})
	}

	if err := s.save(ctx, sessionID, snap); err != nil {
		return nil, err
	}
	return snap.Items, nil
}

// RemoveFromCart deletes the line for productID. Absence is a no-op, not an
// error.
func (s *CartService) RemoveFromCart(ctx context.Context, sessionID, identity, productID string) ([]models.CartItem, error) {
	snap, err := s.load(ctx, sessionID, identity)
	if err != nil {
		return nil, err
	}

	kept := snap.Items[:0]
	for _, item := range snap.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	snap.Items = kept

	if err := s.save(ctx, sessionID, snap); err != nil {
		return nil, err
	}
	return snap.Items, nil
}

// UpdateItemQuantity overwrites the quantity on the matching line. A new
// quantity <= 0 removes the line instead. A missing product is a no-op.
func (s *CartService) UpdateItemQuantity(ctx context.Context, sessionID, identity, productID string, newQuantity int) ([]models.CartItem, error) {
	if newQuantity <= 0 {
		return s.RemoveFromCart(ctx, sessionID, identity, productID)
	}

	snap, err := s.load(ctx, sessionID, identity)
	if err != nil {
		return nil, err
	}

	for i := range snap.Items {
		if snap.Items[i].ProductID == productID {
			snap.Items[i].Quantity = newQuantity
			break
		}
	}

	if err := s.save(ctx, sessionID, snap); err != nil {
		return nil, err
	}
	return snap.Items, nil
}

// ClearCart empties the session's cart.
func (s *CartService) ClearCart(ctx context.Context, sessionID, identity string) error {
	return s.save(ctx, sessionID, &models.CartSnapshot{Owner: identity, Items: []models.CartItem{}})
}

// ItemCount returns the sum of all line quantities, not the line count.
func ItemCount(items []models.CartItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

// CartSubtotal sums price*quantity over lines with a non-null price that are
// not quote items. Quote lines contribute zero regardless of any price value.
func CartSubtotal(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		if item.Price.Valid && !item.IsQuoteItem {
			total = total.Add(item.Price.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}
	return total
}

// IsItemInCart reports whether a line exists for productID.
func IsItemInCart(items []models.CartItem, productID string) bool {
	for _, item := range items {
		if item.ProductID == productID {
			return true
		}
	}
	return false
}

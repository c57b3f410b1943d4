package models

import "github.com/shopspring/decimal"

// CartProduct is the denormalized snapshot of a product taken at the moment
// it is added to the cart. Later price or availability changes on the catalog
// record are deliberately not reflected in existing cart lines.
type CartProduct struct {
	ProductID             string              `json:"productId"`
	Name                  string              `json:"name"`
	Slug                  string              `json:"slug"`
	ImageURL              string              `json:"imageUrl"`
	Price                 decimal.NullDecimal `json:"price"`
	IsQuoteItem           bool                `json:"isQuoteItem"`
	RequiresCertification bool                `json:"requiresCertification"`
}

// CartItem is a cart line: a product snapshot plus a mutable quantity.
// Quantity is always >= 1 for persisted lines; a line dropping to zero is
// removed, never retained.
type CartItem struct {
	CartProduct
	Quantity int `json:"quantity"`
}

// CartSnapshot is the envelope serialized to the cart key-value store. Owner
// records the identity the cart was last written under so an identity change
// (login, logout, user switch) clears it before the next operation.
type CartSnapshot struct {
	Owner string     `json:"owner"`
	Items []CartItem `json:"items"`
}

// SnapshotCartProduct builds a cart snapshot from a catalog product.
// IsQuoteItem is derived as the negation of isPurchasable at add-time.
func SnapshotCartProduct(p *Product) CartProduct {
	return CartProduct{
		ProductID:             p.ID,
		Name:                  p.Name,
		Slug:                  p.Slug,
		ImageURL:              p.PrimaryImageURL,
		Price:                 p.Price,
		IsQuoteItem:           !p.IsPurchasable,
		RequiresCertification: p.RequiresCertification,
	}
}

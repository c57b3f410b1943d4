package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Availability enumerates the stocking states shown in the catalog.
type Availability string

const (
	AvailabilityInStock    Availability = "In Stock"
	AvailabilityOutOfStock Availability = "Out of Stock"
	AvailabilityPreOrder   Availability = "Pre-Order"
)

// Categories is the fixed set of catalog categories.
var Categories = []string{
	"Refrigerants",
	"Manifold Gauges",
	"Recovery Equipment",
	"Vacuum Pumps",
	"Leak Detectors",
	"Hoses & Fittings",
	"Tools & Gauges",
	"Accessories",
}

// CategoryRefrigerants gates the refrigerant-type filter dimension.
const CategoryRefrigerants = "Refrigerants"

// RefrigerantTypes and ApplicationOptions back the faceted filter sidebar.
var (
	RefrigerantTypes = []string{
		"HFC", "HFO", "HCFC Alternatives", "Natural Refrigerants", "Other Gases",
	}
	ApplicationOptions = []string{
		"Residential AC", "Commercial AC", "Commercial Refrigeration",
		"Automotive AC", "Chillers", "HVAC Tools", "Industrial Refrigeration",
		"Welding", "Medical",
	}
)

// SafetyInformation carries the compliance block of a product document.
type SafetyInformation struct {
	SDSFileURL       *string  `json:"sdsFileUrl,omitempty"`
	Precautions      []string `json:"precautions"`
	EPACertification *string  `json:"epaCertification,omitempty"`
}

// Product is a catalog entry. Price is nullable: a null price marks a
// quote-only item. JSONB-backed fields (specs, safety info, image lists)
// always come out of ParseProduct normalized, never nil.
type Product struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`

	Category        string `json:"category"`
	RefrigerantType string `json:"refrigerantType,omitempty"`
	Application     string `json:"application,omitempty"`

	PrimaryImageURL string   `json:"primaryImageUrl"`
	OtherImageURLs  []string `json:"otherImageUrls"`

	ShortDescription string `json:"shortDescription"`
	LongDescription  string `json:"longDescription"`
	ApplicationNotes string `json:"applicationNotes,omitempty"`

	TechnicalSpecs    map[string]string `json:"technicalSpecs"`
	SafetyInformation SafetyInformation `json:"safetyInformation"`

	Price                 decimal.NullDecimal `json:"price"`
	IsPurchasable         bool                `json:"isPurchasable"`
	RequiresCertification bool                `json:"requiresCertification"`
	Availability          Availability        `json:"availability"`
	SKU                   string              `json:"sku"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// legacyImage is the pre-migration image document shape. Old records stored a
// single images array with an isPrimary flag instead of the dedicated
// primaryImageUrl / otherImageUrls fields.
type legacyImage struct {
	URL       string `json:"url"`
	IsPrimary bool   `json:"isPrimary"`
}

const placeholderImageURL = "https://placehold.co/600x400.png"

// RawProduct is a product row as scanned from the store, before
// normalization. JSONB columns arrive as raw bytes; most scalar fields arrive
// nullable because legacy documents may lack them.
type RawProduct struct {
	ID                    string              `db:"id"`
	Slug                  string              `db:"slug"`
	Name                  string              `db:"name"`
	Category              string              `db:"category"`
	RefrigerantType       *string             `db:"refrigerant_type"`
	Application           *string             `db:"application"`
	PrimaryImageURL       *string             `db:"primary_image_url"`
	OtherImageURLs        []byte              `db:"other_image_urls"`
	LegacyImages          []byte              `db:"legacy_images"`
	ShortDescription      *string             `db:"short_description"`
	LongDescription       *string             `db:"long_description"`
	ApplicationNotes      *string             `db:"application_notes"`
	TechnicalSpecs        []byte              `db:"technical_specs"`
	SafetyInformation     []byte              `db:"safety_information"`
	Price                 decimal.NullDecimal `db:"price"`
	IsPurchasable         *bool               `db:"is_purchasable"`
	RequiresCertification *bool               `db:"requires_certification"`
	Availability          *string             `db:"availability"`
	SKU                   *string             `db:"sku"`
	CreatedAt             *time.Time          `db:"created_at"`
	UpdatedAt             *time.Time          `db:"updated_at"`
}

// ParseProduct normalizes a raw store row into a Product. Missing fields get
// type-appropriate defaults, legacy image shapes migrate into the current
// primaryImageUrl/otherImageUrls layout, and missing timestamps fall back to
// the epoch sentinel. It fails only when the row lacks an identity (empty id
// or name); callers drop such rows instead of aborting the whole fetch.
func ParseProduct(raw RawProduct) (Product, error) {
	if raw.ID == "" {
		return Product{}, fmt.Errorf("product row missing id")
	}
	if raw.Name == "" {
		return Product{}, fmt.Errorf("product %s missing name", raw.ID)
	}

	p := Product{
		ID:       raw.ID,
		Slug:     raw.Slug,
		Name:     raw.Name,
		Category: raw.Category,
		Price:    raw.Price,
	}

	p.RefrigerantType = strOrEmpty(raw.RefrigerantType)
	p.Application = strOrEmpty(raw.Application)
	p.ShortDescription = strOrEmpty(raw.ShortDescription)
	p.LongDescription = strOrEmpty(raw.LongDescription)
	p.ApplicationNotes = strOrEmpty(raw.ApplicationNotes)
	p.SKU = strOrEmpty(raw.SKU)

	if raw.IsPurchasable != nil {
		p.IsPurchasable = *raw.IsPurchasable
	}
	if raw.RequiresCertification != nil {
		p.RequiresCertification = *raw.RequiresCertification
	}

	// Invalid or missing availability defaults to Out of Stock so a corrupt
	// record can never look sellable.
	p.Availability = AvailabilityOutOfStock
	if raw.Availability != nil {
		switch Availability(*raw.Availability) {
		case AvailabilityInStock, AvailabilityOutOfStock, AvailabilityPreOrder:
			p.Availability = Availability(*raw.Availability)
		}
	}

	p.OtherImageURLs = parseStringList(raw.OtherImageURLs)
	p.PrimaryImageURL = strOrEmpty(raw.PrimaryImageURL)
	migrateLegacyImages(&p, raw.LegacyImages)

	p.TechnicalSpecs = parseSpecs(raw.TechnicalSpecs)
	p.SafetyInformation = parseSafetyInfo(raw.SafetyInformation)

	if raw.CreatedAt != nil {
		p.CreatedAt = *raw.CreatedAt
	} else {
		p.CreatedAt = time.Unix(0, 0).UTC()
	}
	if raw.UpdatedAt != nil {
		p.UpdatedAt = *raw.UpdatedAt
	} else {
		p.UpdatedAt = time.Unix(0, 0).UTC()
	}

	return p, nil
}

// migrateLegacyImages fills the primary/other image fields from the old
// images-array shape when the current fields are empty, then guarantees a
// primary image URL is always present.
func migrateLegacyImages(p *Product, legacyRaw []byte) {
	if p.PrimaryImageURL == "" && len(legacyRaw) > 0 {
		var old []legacyImage
		if err := json.Unmarshal(legacyRaw, &old); err == nil && len(old) > 0 {
			for _, img := range old {
				if img.IsPrimary && img.URL != "" {
					p.PrimaryImageURL = img.URL
					break
				}
			}
			if p.PrimaryImageURL == "" && old[0].URL != "" {
				p.PrimaryImageURL = old[0].URL
			}
			if len(p.OtherImageURLs) == 0 {
				for _, img := range old {
					if img.URL != "" && img.URL != p.PrimaryImageURL && len(p.OtherImageURLs) < 4 {
						p.OtherImageURLs = append(p.OtherImageURLs, img.URL)
					}
				}
			}
		}
	}

	if p.PrimaryImageURL == "" && len(p.OtherImageURLs) > 0 {
		p.PrimaryImageURL = p.OtherImageURLs[0]
		p.OtherImageURLs = p.OtherImageURLs[1:]
	}
	if p.PrimaryImageURL == "" {
		p.PrimaryImageURL = placeholderImageURL
	}
	if p.OtherImageURLs == nil {
		p.OtherImageURLs = []string{}
	}
}

func parseStringList(raw []byte) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return []string{}
	}
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// parseSpecs tolerates string, number, and boolean spec values; everything is
// rendered to a string for display.
func parseSpecs(raw []byte) map[string]string {
	if len(raw) == 0 {
		return map[string]string{}
	}
	var loose map[string]any
	if err := json.Unmarshal(raw, &loose); err != nil {
		return map[string]string{}
	}
	specs := make(map[string]string, len(loose))
	for k, v := range loose {
		if k == "" {
			continue
		}
		switch val := v.(type) {
		case string:
			specs[k] = val
		case bool:
			specs[k] = fmt.Sprintf("%t", val)
		case float64:
			specs[k] = decimal.NewFromFloat(val).String()
		}
	}
	return specs
}

func parseSafetyInfo(raw []byte) SafetyInformation {
	info := SafetyInformation{Precautions: []string{}}
	if len(raw) == 0 {
		return info
	}
	var parsed SafetyInformation
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return info
	}
	if parsed.Precautions == nil {
		parsed.Precautions = []string{}
	}
	return parsed
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestParseProductRequiresIdentity(t *testing.T) {
	_, err := ParseProduct(RawProduct{Name: "No ID"})
	assert.Error(t, err)

	_, err = ParseProduct(RawProduct{ID: "p1"})
	assert.Error(t, err)
}

func TestParseProductDefaults(t *testing.T) {
	p, err := ParseProduct(RawProduct{ID: "p1", Name: "Bare Product"})
	require.NoError(t, err)

	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "Bare Product", p.Name)
	assert.False(t, p.Price.Valid)
	assert.False(t, p.IsPurchasable)
	assert.Equal(t, AvailabilityOutOfStock, p.Availability)

	// Document fields normalize to empty, never nil.
	assert.NotNil(t, p.OtherImageURLs)
	assert.NotNil(t, p.TechnicalSpecs)
	assert.NotNil(t, p.SafetyInformation.Precautions)

	// Missing timestamps fall back to the epoch sentinel.
	assert.Equal(t, time.Unix(0, 0).UTC(), p.CreatedAt)
	assert.Equal(t, time.Unix(0, 0).UTC(), p.UpdatedAt)
}

func TestParseProductInvalidAvailabilityFallsBack(t *testing.T) {
	p, err := ParseProduct(RawProduct{ID: "p1", Name: "P", Availability: strPtr("Maybe")})
	require.NoError(t, err)
	assert.Equal(t, AvailabilityOutOfStock, p.Availability)

	p, err = ParseProduct(RawProduct{ID: "p1", Name: "P", Availability: strPtr("Pre-Order")})
	require.NoError(t, err)
	assert.Equal(t, AvailabilityPreOrder, p.Availability)
}

func TestParseProductPlaceholderImage(t *testing.T) {
	p, err := ParseProduct(RawProduct{ID: "p1", Name: "P"})
	require.NoError(t, err)
	assert.Equal(t, placeholderImageURL, p.PrimaryImageURL)
}

func TestParseProductPromotesFirstOtherImage(t *testing.T) {
	p, err := ParseProduct(RawProduct{
		ID: "p1", Name: "P",
		OtherImageURLs: []byte(`["https://img/a.png","https://img/b.png"]`),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://img/a.png", p.PrimaryImageURL)
	assert.Equal(t, []string{"https://img/b.png"}, p.OtherImageURLs)
}

func TestParseProductMigratesLegacyImages(t *testing.T) {
	legacy := `[
        {"url": "https://img/side.png", "isPrimary": false},
        {"url": "https://img/front.png", "isPrimary": true},
        {"url": "https://img/back.png", "isPrimary": false}
    ]`
	p, err := ParseProduct(RawProduct{ID: "p1", Name: "P", LegacyImages: []byte(legacy)})
	require.NoError(t, err)

	assert.Equal(t, "https://img/front.png", p.PrimaryImageURL)
	assert.Equal(t, []string{"https://img/side.png", "https://img/back.png"}, p.OtherImageURLs)
}

func TestParseProductLegacyImagesWithoutPrimaryFlag(t *testing.T) {
	legacy := `[{"url": "https://img/only.png", "isPrimary": false}]`
	p, err := ParseProduct(RawProduct{ID: "p1", Name: "P", LegacyImages: []byte(legacy)})
	require.NoError(t, err)
	assert.Equal(t, "https://img/only.png", p.PrimaryImageURL)
	assert.Empty(t, p.OtherImageURLs)
}

func TestParseProductCurrentImagesWinOverLegacy(t *testing.T) {
	p, err := ParseProduct(RawProduct{
		ID: "p1", Name: "P",
		PrimaryImageURL: strPtr("https://img/current.png"),
		LegacyImages:    []byte(`[{"url": "https://img/old.png", "isPrimary": true}]`),
	})
	require.NoError(t, err)
	assert.Equal(t, "https://img/current.png", p.PrimaryImageURL)
}

func TestParseProductSpecValueCoercion(t *testing.T) {
	p, err := ParseProduct(RawProduct{
		ID: "p1", Name: "P",
		TechnicalSpecs: []byte(`{"Net Weight": "25 lbs", "GWP": 2088, "Flammable": false, "": "dropped"}`),
	})
	require.NoError(t, err)

	assert.Equal(t, "25 lbs", p.TechnicalSpecs["Net Weight"])
	assert.Equal(t, "2088", p.TechnicalSpecs["GWP"])
	assert.Equal(t, "false", p.TechnicalSpecs["Flammable"])
	assert.NotContains(t, p.TechnicalSpecs, "")
}

func TestParseProductMalformedDocumentsNormalizeEmpty(t *testing.T) {
	p, err := ParseProduct(RawProduct{
		ID: "p1", Name: "P",
		OtherImageURLs:    []byte(`{"not": "a list"}`),
		TechnicalSpecs:    []byte(`[1,2,3]`),
		SafetyInformation: []byte(`"nope"`),
	})
	require.NoError(t, err)

	assert.Empty(t, p.TechnicalSpecs)
	assert.Empty(t, p.SafetyInformation.Precautions)
	assert.Nil(t, p.SafetyInformation.SDSFileURL)
}

func TestParseProductFullRecord(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	sds := "https://docs/sds.pdf"
	p, err := ParseProduct(RawProduct{
		ID:                    "r410a",
		Slug:                  "freon-410a",
		Name:                  "Freon 410A",
		Category:              "Refrigerants",
		RefrigerantType:       strPtr("HFC"),
		Application:           strPtr("Residential AC"),
		PrimaryImageURL:       strPtr("https://img/410a.png"),
		ShortDescription:      strPtr("25lb cylinder"),
		LongDescription:       strPtr("Genuine Freon brand R-410A."),
		SafetyInformation:     []byte(`{"sdsFileUrl": "` + sds + `", "precautions": ["Ventilate area"]}`),
		Price:                 decimal.NewNullDecimal(decimal.NewFromFloat(149.99)),
		IsPurchasable:         boolPtr(true),
		RequiresCertification: boolPtr(true),
		Availability:          strPtr("In Stock"),
		SKU:                   strPtr("FR-410A-25"),
		CreatedAt:             &now,
		UpdatedAt:             &now,
	})
	require.NoError(t, err)

	assert.Equal(t, "freon-410a", p.Slug)
	assert.Equal(t, "HFC", p.RefrigerantType)
	assert.True(t, p.IsPurchasable)
	assert.True(t, p.RequiresCertification)
	assert.Equal(t, AvailabilityInStock, p.Availability)
	require.NotNil(t, p.SafetyInformation.SDSFileURL)
	assert.Equal(t, sds, *p.SafetyInformation.SDSFileURL)
	assert.Equal(t, []string{"Ventilate area"}, p.SafetyInformation.Precautions)
	assert.Equal(t, now, p.CreatedAt)
}

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aether-industries/storefront-api/internal/models"
	"github.com/aether-industries/storefront-api/internal/repository"
	"github.com/aether-industries/storefront-api/internal/utils"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ProductForm is the admin create/update payload, validated field-by-field
// before any write is attempted.
type ProductForm struct {
	Name            string `json:"name" validate:"required,min=3"`
	Slug            string `json:"slug" validate:"omitempty,slugshape"`
	Category        string `json:"category" validate:"required,catalogcategory"`
	RefrigerantType string `json:"refrigerantType" validate:"omitempty"`
	Application     string `json:"application" validate:"omitempty"`

	PrimaryImageURL string   `json:"primaryImageUrl" validate:"required,url"`
	OtherImageURLs  []string `json:"otherImageUrls" validate:"omitempty,max=4,dive,url"`

	ShortDescription string `json:"shortDescription" validate:"required,min=10,max=200"`
	LongDescription  string `json:"longDescription" validate:"required,min=20"`
	ApplicationNotes string `json:"applicationNotes"`

	TechnicalSpecs    map[string]string         `json:"technicalSpecs"`
	SafetyInformation *models.SafetyInformation `json:"safetyInformation"`

	Price                 *decimal.Decimal `json:"price"`
	IsPurchasable         *bool            `json:"isPurchasable"`
	RequiresCertification bool             `json:"requiresCertification"`
	Availability          string           `json:"availability" validate:"omitempty,oneof='In Stock' 'Out of Stock' 'Pre-Order'"`
	SKU                   string           `json:"sku" validate:"required"`
}

// ValidationError carries per-field messages back to the admin form.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// fieldMessages maps validator tags to the admin-facing messages per field.
var fieldMessages = map[string]string{
	"Name.required":             "Name is required.",
	"Name.min":                  "Name must be at least 3 characters long.",
	"Slug.slugshape":            "Slug can only contain lowercase letters, numbers, and hyphens.",
	"Category.required":         "Category is required.",
	"Category.catalogcategory":  "Category must be one of the catalog categories.",
	"PrimaryImageURL.required":  "A primary image URL is required.",
	"PrimaryImageURL.url":       "Primary image must be a valid URL.",
	"OtherImageURLs.max":        "You can upload a maximum of 4 other images.",
	"OtherImageURLs.url":        "Each other image must be a valid URL.",
	"ShortDescription.required": "Short description is required.",
	"ShortDescription.min":      "Short description must be at least 10 characters.",
	"ShortDescription.max":      "Short description must be at most 200 characters.",
	"LongDescription.required":  "Long description is required.",
	"LongDescription.min":       "Long description must be at least 20 characters.",
	"Availability.oneof":        "Availability must be In Stock, Out of Stock, or Pre-Order.",
	"SKU.required":              "SKU is required.",
}

// ProductManagementService handles admin product CRUD. Writes are
// last-writer-wins full-record overwrites; there is no soft-delete or
// versioning.
type ProductManagementService struct {
	productRepo *repository.ProductRepository
	validate    *validator.Validate
}

// NewProductManagementService constructs a ProductManagementService.
func NewProductManagementService(productRepo *repository.ProductRepository) *ProductManagementService {
	v := validator.New()
	_ = v.RegisterValidation("slugshape", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("catalogcategory", func(fl validator.FieldLevel) bool {
		val := fl.Field().String()
		for _, c := range models.Categories {
			if c == val {
				return true
			}
		}
		return false
	})
	return &ProductManagementService{productRepo: productRepo, validate: v}
}

// validateForm runs struct validation and converts failures into the
// per-field error shape.
func (s *ProductManagementService) validateForm(form *ProductForm) *ValidationError {
	err := s.validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Fields: map[string]string{"_form": "Invalid submission."}}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		key := fe.StructField() + "." + fe.Tag()
		msg, ok := fieldMessages[key]
		if !ok {
			msg = fmt.Sprintf("Invalid value for %s.", fe.StructField())
		}
		fields[jsonFieldName(fe.StructField())] = msg
	}
	return &ValidationError{Fields: fields}
}

// resolveSlug derives a slug from the name when the form leaves it empty and
// checks uniqueness. The slug must be non-empty at persistence time.
func (s *ProductManagementService) resolveSlug(ctx context.Context, form *ProductForm, excludeID string) (string, *ValidationError, error) {
	slug := form.Slug
	if slug == "" {
		slug = utils.Slugify(form.Name)
	}
	if slug == "" {
		return "", &ValidationError{Fields: map[string]string{"slug": "A slug could not be derived from the name; set one explicitly."}}, nil
	}

	exists, err := s.productRepo.SlugExists(ctx, slug, excludeID)
	if err != nil {
		return "", nil, err
	}
	if exists {
		return "", &ValidationError{Fields: map[string]string{"slug": "This slug is already in use."}}, nil
	}
	return slug, nil, nil
}

func (s *ProductManagementService) formToProduct(form *ProductForm, id, slug string) *models.Product {
	p := &models.Product{
		ID:                    id,
		Slug:                  slug,
		Name:                  form.Name,
		Category:              form.Category,
		RefrigerantType:       form.RefrigerantType,
		Application:           form.Application,
		PrimaryImageURL:       form.PrimaryImageURL,
		OtherImageURLs:        form.OtherImageURLs,
		ShortDescription:      form.ShortDescription,
		LongDescription:       form.LongDescription,
		ApplicationNotes:      form.ApplicationNotes,
		TechnicalSpecs:        form.TechnicalSpecs,
		RequiresCertification: form.RequiresCertification,
		SKU:                   form.SKU,
	}

	if p.OtherImageURLs == nil {
		p.OtherImageURLs = []string{}
	}
	if p.TechnicalSpecs == nil {
		p.TechnicalSpecs = map[string]string{}
	}
	if form.SafetyInformation != nil {
		p.SafetyInformation = *form.SafetyInformation
	}
	if p.SafetyInformation.Precautions == nil {
		p.SafetyInformation.Precautions = []string{}
	}

	// Null price marks a quote-only item. The schema deliberately does not
	// require a price on purchasable products; the cart treats a purchasable
	// line with no price as contributing zero to the subtotal.
	if form.Price != nil {
		p.Price = decimal.NullDecimal{Decimal: *form.Price, Valid: true}
	}

	// Defaults mirror the admin form: purchasable unless switched off,
	// In Stock unless stated otherwise.
	p.IsPurchasable = true
	if form.IsPurchasable != nil {
		p.IsPurchasable = *form.IsPurchasable
	}
	p.Availability = models.AvailabilityInStock
	if form.Availability != "" {
		p.Availability = models.Availability(form.Availability)
	}

	return p
}

// CreateProduct validates the form and inserts a new product with a
// store-assigned id and server timestamps.
func (s *ProductManagementService) CreateProduct(ctx context.Context, form *ProductForm) (*models.Product, error) {
	if verr := s.validateForm(form); verr != nil {
		return nil, verr
	}
	slug, verr, err := s.resolveSlug(ctx, form, "")
	if err != nil {
		return nil, err
	}
	if verr != nil {
		return nil, verr
	}

	p := s.formToProduct(form, uuid.New().String(), slug)
	if err := s.productRepo.Create(ctx, p); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, &ValidationError{Fields: map[string]string{"slug": "This slug is already in use."}}
		}
		return nil, err
	}
	return p, nil
}

// UpdateProduct validates the form and overwrites the full record.
func (s *ProductManagementService) UpdateProduct(ctx context.Context, id string, form *ProductForm) (*models.Product, error) {
	if verr := s.validateForm(form); verr != nil {
		return nil, verr
	}
	slug, verr, err := s.resolveSlug(ctx, form, id)
	if err != nil {
		return nil, err
	}
	if verr != nil {
		return nil, verr
	}

	p := s.formToProduct(form, id, slug)
	if err := s.productRepo.Update(ctx, p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrProductNotFound
		}
		if repository.IsUniqueViolation(err) {
			return nil, &ValidationError{Fields: map[string]string{"slug": "This slug is already in use."}}
		}
		return nil, err
	}
	return p, nil
}

// GetProduct retrieves a product by id for the admin edit screen.
func (s *ProductManagementService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.ErrProductNotFound
		}
		return nil, err
	}
	return p, nil
}

// ListProducts returns the full catalog for the admin table.
func (s *ProductManagementService) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.productRepo.GetAll(ctx)
}

// DeleteProduct removes a product permanently.
func (s *ProductManagementService) DeleteProduct(ctx context.Context, id string) error {
	err := s.productRepo.Delete(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return utils.ErrProductNotFound
	}
	return err
}

// jsonFieldName maps validated struct fields to their JSON names for the
// field-by-field error payload.
func jsonFieldName(structField string) string {
	names := map[string]string{
		"Name":             "name",
		"Slug":             "slug",
		"Category":         "category",
		"RefrigerantType":  "refrigerantType",
		"Application":      "application",
		"PrimaryImageURL":  "primaryImageUrl",
		"OtherImageURLs":   "otherImageUrls",
		"ShortDescription": "shortDescription",
		"LongDescription":  "longDescription",
		"ApplicationNotes": "applicationNotes",
		"Availability":     "availability",
		"SKU":              "sku",
		"Price":            "price",
	}
	if n, ok := names[structField]; ok {
		return n
	}
	return structField
}

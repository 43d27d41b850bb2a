package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/meridiantours/meridian/internal/admin/audit"
	"github.com/meridiantours/meridian/internal/admin/domain"
	"github.com/meridiantours/meridian/internal/admin/store"
	"github.com/meridiantours/meridian/pkg/idx"
	"github.com/meridiantours/meridian/pkg/slogx"
)

var (
	ErrProductNotFound = errors.New("product_not_found")
	ErrProductSKUTaken = errors.New("product_sku_taken")
	ErrProductInUse    = errors.New("product_in_use")
)

// ProductsService manages the sellable catalogue.
type ProductsService struct {
	Store store.Store
	Audit *audit.Recorder
}

// ProductInput carries the mutable product fields for create and update.
type ProductInput struct {
	Name          string
	SKU           string
	Type          domain.ProductType
	Description   string
	PriceCents    int64
	Currency      string
	StockQuantity int
	Active        *bool // nil keeps the current value (create defaults to true)
}

func (in ProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return validationf("name is required")
	}
	if strings.TrimSpace(in.SKU) == "" {
		return validationf("sku is required")
	}
	if !in.Type.IsValid() {
		return validationf("unknown product type %q", in.Type)
	}
	if in.PriceCents < 0 {
		return validationf("price_cents must not be negative")
	}
	if in.StockQuantity < 0 {
		return validationf("stock_quantity must not be negative")
	}
	if in.Currency != "" && len(in.Currency) != 3 {
		return validationf("currency %q is not an ISO 4217 code", in.Currency)
	}
	return nil
}

// Create adds a catalogue item. SKU must be unique.
func (s *ProductsService) Create(ctx context.Context, meta audit.Meta, in ProductInput) (domain.Product, error) {
	l := slogx.FromContext(ctx)

	if err := in.validate(); err != nil {
		return domain.Product{}, err
	}

	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}

	now := time.Now().UTC()
	p := domain.Product{
		ID:            idx.New().String(),
		Name:          in.Name,
		SKU:           strings.ToUpper(strings.TrimSpace(in.SKU)),
		Type:          in.Type,
		Description:   in.Description,
		PriceCents:    in.PriceCents,
		Currency:      strings.ToUpper(currency),
		StockQuantity: in.StockQuantity,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.Active != nil {
		p.Active = *in.Active
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Products().CreateProduct(ctx, p); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrProductSKUTaken
			}
			return err
		}
		return s.Audit.Record(ctx, tx, audit.Event{
			Meta:         meta,
			Action:       "product.create",
			ResourceType: "product",
			ResourceID:   p.ID,
			Detail:       map[string]any{"sku": p.SKU},
		})
	})
	if err != nil {
		return domain.Product{}, err
	}

	l.Info("product created", slog.String("product_id", p.ID), slog.String("sku", p.SKU))
	return p, nil
}

// Get returns a product by id, inactive ones included.
func (s *ProductsService) Get(ctx context.Context, id string) (domain.Product, error) {
	p, err := s.Store.Products().GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Product{}, ErrProductNotFound
		}
		return domain.Product{}, err
	}
	return p, nil
}

// List returns a filtered page of products plus the total match count.
func (s *ProductsService) List(ctx context.Context, f store.ProductFilter) ([]domain.Product, int64, error) {
	products, err := s.Store.Products().ListProducts(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.Store.Products().CountProducts(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// ListPublic is the storefront listing, pinned to active products.
func (s *ProductsService) ListPublic(ctx context.Context, f store.ProductFilter) ([]domain.Product, int64, error) {
	f.ActiveOnly = true
	return s.List(ctx, f)
}

// Update rewrites a product's mutable fields.
func (s *ProductsService) Update(ctx context.Context, meta audit.Meta, id string, in ProductInput) (domain.Product, error) {
	l := slogx.FromContext(ctx)

	if err := in.validate(); err != nil {
		return domain.Product{}, err
	}

	p, err := s.Store.Products().GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Product{}, ErrProductNotFound
		}
		return domain.Product{}, err
	}

	p.Name = in.Name
	p.SKU = strings.ToUpper(strings.TrimSpace(in.SKU))
	p.Type = in.Type
	p.Description = in.Description
	p.PriceCents = in.PriceCents
	if in.Currency != "" {
		p.Currency = strings.ToUpper(in.Currency)
	}
	p.StockQuantity = in.StockQuantity
	if in.Active != nil {
		p.Active = *in.Active
	}
	p.UpdatedAt = time.Now().UTC()

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Products().UpdateProduct(ctx, p); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrProductSKUTaken
			}
			return err
		}
		return s.Audit.Record(ctx, tx, audit.Event{
			Meta:         meta,
			Action:       "product.update",
			ResourceType: "product",
			ResourceID:   p.ID,
			Detail:       map[string]any{"sku": p.SKU},
		})
	})
	if err != nil {
		return domain.Product{}, err
	}

	l.Info("product updated", slog.String("product_id", p.ID))
	return p, nil
}

// Delete removes a product. It is refused while any order line still
// references it; deactivate instead to stop new sales without rewriting
// order history.
func (s *ProductsService) Delete(ctx context.Context, meta audit.Meta, id string) error {
	l := slogx.FromContext(ctx)

	p, err := s.Store.Products().GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		refs, err := tx.Orders().CountItemsForProduct(ctx, id)
		if err != nil {
			return err
		}
		if refs > 0 {
			return ErrProductInUse
		}

		if err := tx.Products().DeleteProduct(ctx, id); err != nil {
			return err
		}
		return s.Audit.Record(ctx, tx, audit.Event{
			Meta:         meta,
			Action:       "product.delete",
			ResourceType: "product",
			ResourceID:   id,
			Detail:       map[string]any{"sku": p.SKU},
		})
	})
	if err != nil {
		return err
	}

	l.Info("product deleted", slog.String("product_id", id))
	return nil
}

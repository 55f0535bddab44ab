package repository

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"pastelaria-service/internal/imagestore"
	"pastelaria-service/internal/lifecycle"
	"pastelaria-service/internal/model"
	"pastelaria-service/pkg/logger"
)

const (
	KindCustomer    = "customer"
	KindProductType = "product_type"
	KindProduct     = "product"
)

type (
	CustomerRepository    = Repository[model.Customer, *model.Customer, model.CustomerFields]
	ProductTypeRepository = Repository[model.ProductType, *model.ProductType, model.ProductTypeFields]
	ProductRepository     = Repository[model.Product, *model.Product, model.ProductFields]
)

// NewCustomerRepository creates the customer repository
func NewCustomerRepository(session Session, opts ...Option) *CustomerRepository {
	return New[model.Customer, *model.Customer](session, Kind[model.Customer, model.CustomerFields]{
		Name:  KindCustomer,
		Merge: func(dst *model.Customer, in model.CustomerFields) { in.Apply(dst) },
	}, opts...)
}

// NewProductTypeRepository creates the product type repository
func NewProductTypeRepository(session Session, opts ...Option) *ProductTypeRepository {
	return New[model.ProductType, *model.ProductType](session, Kind[model.ProductType, model.ProductTypeFields]{
		Name:  KindProductType,
		Merge: func(dst *model.ProductType, in model.ProductTypeFields) { in.Apply(dst) },
	}, opts...)
}

// OrphanPolicy decides what happens to an image stored by a transaction
// that later rolls back
type OrphanPolicy string

const (
	// OrphanKeep leaves the file in the store
	OrphanKeep OrphanPolicy = "keep"
	// OrphanRemove discards the file after the rollback, best effort
	OrphanRemove OrphanPolicy = "remove"
)

// ParseOrphanPolicy parses the IMAGE_ORPHAN_POLICY setting
func ParseOrphanPolicy(s string) (OrphanPolicy, error) {
	switch p := OrphanPolicy(s); p {
	case OrphanKeep, OrphanRemove:
		return p, nil
	case "":
		return OrphanKeep, nil
	default:
		return "", fmt.Errorf("unknown image orphan policy %q", s)
	}
}

// NewProductRepository creates the product repository. Product writes check
// that the product type is active and ingest new image payloads into images.
func NewProductRepository(session Session, images *imagestore.Store, policy OrphanPolicy, opts ...Option) *ProductRepository {
	ing := &productIngest{images: images, policy: policy, opts: newOptions(opts)}
	return New[model.Product, *model.Product](session, Kind[model.Product, model.ProductFields]{
		Name:    KindProduct,
		Merge:   func(dst *model.Product, in model.ProductFields) { in.Apply(dst) },
		Prepare: ing.prepare,
	}, opts...)
}

// ByProductType restricts a product list to one product type
func ByProductType(id uint) Filter {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("product_type_id = ?", id)
	}
}

type productIngest struct {
	images *imagestore.Store
	policy OrphanPolicy
	opts   options
}

func (p *productIngest) prepare(ctx context.Context, tx *gorm.DB, in *model.ProductFields, current *model.Product, comp *Compensation) error {
	if current == nil || (in.ProductTypeID != nil && *in.ProductTypeID != current.ProductTypeID) {
		var typeID uint
		if in.ProductTypeID != nil {
			typeID = *in.ProductTypeID
		}
		if err := requireActiveProductType(tx, typeID); err != nil {
			return err
		}
	}

	if in.Photo == nil || *in.Photo == "" {
		return nil
	}

	// a reference the store already holds is kept as is
	owned, err := p.images.Owns(ctx, *in.Photo)
	if err != nil {
		return err
	}
	if owned {
		return nil
	}

	ref, err := p.images.Store(ctx, *in.Photo)
	if err != nil {
		if errors.Is(err, imagestore.ErrInvalidBinaryContent) {
			p.opts.metrics.RecordImageRejected()
		}
		return err
	}
	p.opts.metrics.RecordImageStored()

	if p.policy == OrphanRemove {
		comp.Add(func(ctx context.Context) {
			if err := p.images.Discard(context.WithoutCancel(ctx), ref); err != nil {
				logger.FromCtx(ctx).Warn("Failed to discard orphaned image",
					zap.String("reference", ref.String()),
					zap.Error(err))
				return
			}
			p.opts.metrics.RecordImageDiscarded()
		})
	}

	stored := ref.String()
	in.Photo = &stored
	return nil
}

func requireActiveProductType(tx *gorm.DB, id uint) error {
	scope := lifecycle.ScopeActive
	if id == 0 {
		return &NotFoundError{Kind: KindProductType, ID: id, Scope: scope}
	}
	var pt model.ProductType
	err := scope.Apply(tx).Select("id").First(&pt, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Kind: KindProductType, ID: id, Scope: scope}
	}
	return err
}

package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/distributor-orders/internal/model"
	"github.com/iliyamo/distributor-orders/internal/repository"
	"github.com/iliyamo/distributor-orders/internal/validate"
)

// ImageStore removes product images from the external image host.
type ImageStore interface {
	DeleteByURL(ctx context.Context, link string) error
}

// CachePurger drops cached catalog responses after a mutation.
type CachePurger interface {
	Purge(ctx context.Context) error
}

// ProductService manages the bilingual catalog.
type ProductService struct {
	products  repository.ProductRepository
	images    ImageStore
	cache     CachePurger
	validator *validate.Validator
	log       *zap.SugaredLogger
	now       func() time.Time
}

// NewProductService builds the service. images and cache may be nil.
func NewProductService(products repository.ProductRepository, images ImageStore, cache CachePurger, v *validate.Validator, log *zap.SugaredLogger) *ProductService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &ProductService{products: products, images: images, cache: cache, validator: v, log: log, now: time.Now}
}

// ProductInput carries the twelve catalog fields. All are required on
// create; on update an empty field keeps the stored value.
type ProductInput struct {
	Code            string `json:"productCode" validate:"required,max=64"`
	TitleEnglish    string `json:"title_english" validate:"required,max=255"`
	DescEnglish     string `json:"desc_english" validate:"required"`
	CategoryEnglish string `json:"category_english" validate:"required,max=100"`
	PriceEnglish    string `json:"price_english" validate:"required,max=64"`
	UnitEnglish     string `json:"unit_english" validate:"required,max=32"`
	TitleUrdu       string `json:"title_urdu" validate:"required,max=255"`
	DescUrdu        string `json:"desc_urdu" validate:"required"`
	CategoryUrdu    string `json:"category_urdu" validate:"required,max=100"`
	PriceUrdu       string `json:"price_urdu" validate:"required,max=64"`
	UnitUrdu        string `json:"unit_urdu" validate:"required,max=32"`
	ImageLink       string `json:"image_link" validate:"required,max=512"`
}

// inputOf is the inverse of apply, used to validate a merged update.
func inputOf(p model.Product) ProductInput {
	return ProductInput{
		Code:            p.Code,
		TitleEnglish:    p.TitleEnglish,
		DescEnglish:     p.DescEnglish,
		CategoryEnglish: p.CategoryEnglish,
		PriceEnglish:    p.PriceEnglish,
		UnitEnglish:     p.UnitEnglish,
		TitleUrdu:       p.TitleUrdu,
		DescUrdu:        p.DescUrdu,
		CategoryUrdu:    p.CategoryUrdu,
		PriceUrdu:       p.PriceUrdu,
		UnitUrdu:        p.UnitUrdu,
		ImageLink:       p.ImageLink,
	}
}

func (in *ProductInput) trim() {
	for _, f := range in.fields() {
		*f = strings.TrimSpace(*f)
	}
}

func (in *ProductInput) fields() []*string {
	return []*string{
		&in.Code, &in.TitleEnglish, &in.DescEnglish, &in.CategoryEnglish, &in.PriceEnglish, &in.UnitEnglish,
		&in.TitleUrdu, &in.DescUrdu, &in.CategoryUrdu, &in.PriceUrdu, &in.UnitUrdu, &in.ImageLink,
	}
}

// apply copies the non-empty fields of in onto p and rederives the price.
func (in ProductInput) apply(p *model.Product) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&p.TitleEnglish, in.TitleEnglish)
	set(&p.DescEnglish, in.DescEnglish)
	set(&p.CategoryEnglish, in.CategoryEnglish)
	set(&p.PriceEnglish, in.PriceEnglish)
	set(&p.UnitEnglish, in.UnitEnglish)
	set(&p.TitleUrdu, in.TitleUrdu)
	set(&p.DescUrdu, in.DescUrdu)
	set(&p.CategoryUrdu, in.CategoryUrdu)
	set(&p.PriceUrdu, in.PriceUrdu)
	set(&p.UnitUrdu, in.UnitUrdu)
	set(&p.ImageLink, in.ImageLink)
	p.Price = model.ParsePrice(p.PriceEnglish)
}

// Create validates in, stores the product and purges cached listings.
// A taken product code is a conflict.
func (s *ProductService) Create(ctx context.Context, in ProductInput) (model.Product, error) {
	in.trim()
	if err := s.validator.Validate(in); err != nil {
		return model.Product{}, &ValidationError{Msg: err.Error()}
	}
	now := s.now().UTC()
	p := model.Product{Code: in.Code, CreatedAt: now, UpdatedAt: now}
	in.apply(&p)
	if err := s.products.Create(ctx, &p); err != nil {
		return model.Product{}, storeErr("product code", err)
	}
	s.purge(ctx)
	return p, nil
}

// Update edits a product. The code cannot change. When the image link
// changes the old hosted image is deleted best-effort.
func (s *ProductService) Update(ctx context.Context, id string, in ProductInput) (model.Product, error) {
	in.trim()
	cur, err := s.products.FindByID(ctx, id)
	if err != nil {
		return model.Product{}, storeErr("product", err)
	}
	if in.Code != "" && in.Code != cur.Code {
		return model.Product{}, invalid("productCode cannot be changed")
	}
	next := cur
	in.apply(&next)
	if err := s.validator.Validate(inputOf(next)); err != nil {
		return model.Product{}, &ValidationError{Msg: err.Error()}
	}
	next.UpdatedAt = s.now().UTC()
	updated, err := s.products.UpdateByID(ctx, id, next)
	if err != nil {
		return model.Product{}, storeErr("product", err)
	}
	if cur.ImageLink != "" && cur.ImageLink != updated.ImageLink {
		s.deleteImage(ctx, cur.ImageLink)
	}
	s.purge(ctx)
	return updated, nil
}

// Delete removes the hosted image best-effort, then the record.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return storeErr("product", err)
	}
	s.deleteImage(ctx, p.ImageLink)
	if err := s.products.DeleteByID(ctx, id); err != nil {
		return storeErr("product", err)
	}
	s.purge(ctx)
	return nil
}

// Get returns one product.
func (s *ProductService) Get(ctx context.Context, id string) (model.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return model.Product{}, storeErr("product", err)
	}
	return p, nil
}

// GetByCode looks a product up by its unique code.
func (s *ProductService) GetByCode(ctx context.Context, code string) (model.Product, error) {
	p, err := s.products.FindOne(ctx, repository.ProductFilter{Code: strings.TrimSpace(code)})
	if err != nil {
		return model.Product{}, storeErr("product", err)
	}
	return p, nil
}

// List returns the catalog newest first, optionally narrowed to one
// English category.
func (s *ProductService) List(ctx context.Context, category string) ([]model.Product, error) {
	return s.products.Find(ctx, repository.ProductFilter{CategoryEnglish: strings.TrimSpace(category)}, repository.FindOptions{})
}

func (s *ProductService) deleteImage(ctx context.Context, link string) {
	if s.images == nil || link == "" {
		return
	}
	if err := s.images.DeleteByURL(ctx, link); err != nil {
		s.log.Warnw("product image delete failed", "link", link, "err", err)
	}
}

func (s *ProductService) purge(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Purge(ctx); err != nil {
		s.log.Warnw("product cache purge failed", "err", err)
	}
}

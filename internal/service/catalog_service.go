package service

import (
	"context"

	"myinco-admin-be/internal/dto"
	"myinco-admin-be/internal/pkg/logger"
	"myinco-admin-be/internal/repository/specification"
	"myinco-admin-be/internal/repository/unitofwork"
	"myinco-admin-be/pkg/admin/catalog"
	"myinco-admin-be/pkg/admin/mapper"
	"myinco-admin-be/pkg/audit"

	"github.com/google/uuid"
)

type ICatalogService interface {
	// Categories
	ListMainCategories(ctx context.Context) ([]*dto.CategoryResponse, error)
	ListSubCategories(ctx context.Context, parentId uuid.UUID) ([]*dto.CategoryResponse, error)
	CreateCategory(ctx context.Context, meta dto.RequestMeta, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	UpdateCategory(ctx context.Context, meta dto.RequestMeta, id uuid.UUID, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error)
	DeleteCategory(ctx context.Context, meta dto.RequestMeta, id uuid.UUID) error

	// Products
	ListProducts(ctx context.Context, req dto.ProductListRequest) (*dto.PageResponse[*dto.ProductResponse], error)
	CreateProduct(ctx context.Context, meta dto.RequestMeta, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
}

type catalogService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
	manager    *catalog.Manager
	auditor    audit.Publisher
}

func NewCatalogService(uowFactory unitofwork.RepositoryFactory, logger logger.ILogger, manager *catalog.Manager, auditor audit.Publisher) ICatalogService {
	return &catalogService{
		uowFactory: uowFactory,
		logger:     logger,
		manager:    manager,
		auditor:    auditor,
	}
}

func (s *catalogService) record(ctx context.Context, rec audit.Record) {
	if err := s.auditor.Publish(ctx, rec); err != nil {
		s.logger.Warn("AUDIT", "Failed to publish audit record", map[string]interface{}{
			"model":    rec.Model,
			"model_id": rec.ModelIdentifier,
			"error":    err.Error(),
		})
	}
}

func (s *catalogService) ListMainCategories(ctx context.Context) ([]*dto.CategoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	categories, err := s.manager.MainCategories(ctx, uow)
	if err != nil {
		return nil, err
	}
	return mapper.CategoriesToResponse(categories), nil
}

func (s *catalogService) ListSubCategories(ctx context.Context, parentId uuid.UUID) ([]*dto.CategoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	categories, err := s.manager.SubCategories(ctx, uow, parentId)
	if err != nil {
		return nil, err
	}
	return mapper.CategoriesToResponse(categories), nil
}

func (s *catalogService) CreateCategory(ctx context.Context, meta dto.RequestMeta, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	category, err := s.manager.CreateSubCategory(ctx, uow, req.ParentId, req.Name)
	if err != nil {
		return nil, err
	}

	s.record(ctx, audit.Record{
		Model:           catalog.CategoryAuditModel,
		ModelIdentifier: category.Id.String(),
		PageName:        catalog.AuditPageName,
		URL:             meta.URL,
		Method:          audit.MethodCreate,
		UserId:          meta.UserId,
		Diff:            catalog.CategorySchema.Snapshot(*category),
		StatusCode:      201,
	})
	return mapper.CategoryToResponse(category), nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, meta dto.RequestMeta, id uuid.UUID, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	before, after, err := s.manager.Rename(ctx, uow, id, req.Name)
	if err != nil {
		return nil, err
	}

	if diff := catalog.CategorySchema.Diff(*before, *after); len(diff) > 0 {
		s.record(ctx, audit.Record{
			Model:           catalog.CategoryAuditModel,
			ModelIdentifier: id.String(),
			PageName:        catalog.AuditPageName,
			URL:             meta.URL,
			Method:          audit.MethodUpdate,
			UserId:          meta.UserId,
			Diff:            diff,
			StatusCode:      200,
		})
	}
	return mapper.CategoryToResponse(after), nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, meta dto.RequestMeta, id uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	deleted, err := s.manager.Delete(ctx, uow, id)
	if err != nil {
		return err
	}

	s.record(ctx, audit.Record{
		Model:           catalog.CategoryAuditModel,
		ModelIdentifier: id.String(),
		PageName:        catalog.AuditPageName,
		URL:             meta.URL,
		Method:          audit.MethodDelete,
		UserId:          meta.UserId,
		Diff:            catalog.CategorySchema.Snapshot(*deleted),
		StatusCode:      200,
	})
	return nil
}

func (s *catalogService) ListProducts(ctx context.Context, req dto.ProductListRequest) (*dto.PageResponse[*dto.ProductResponse], error) {
	page, limit := normalizePage(req.Page, req.Limit)

	specs := []specification.Specification{}
	if req.Keyword != "" {
		specs = append(specs, specification.ProductKeyword{Keyword: req.Keyword})
	}
	if categoryId, err := uuid.Parse(req.CategoryId); err == nil {
		specs = append(specs, specification.ByCategoryID{CategoryID: categoryId})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	total, err := uow.ProductRepository().Count(ctx, specs...)
	if err != nil {
		return nil, err
	}
	products, err := uow.ProductRepository().FindAll(ctx, append(specs, specification.Pagination{Limit: limit, Offset: (page - 1) * limit})...)
	if err != nil {
		return nil, err
	}

	return &dto.PageResponse[*dto.ProductResponse]{
		Items: mapper.ProductsToResponse(products),
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

func (s *catalogService) CreateProduct(ctx context.Context, meta dto.RequestMeta, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	product, err := s.manager.CreateProduct(ctx, uow, catalog.ProductInput{
		Name:               req.Name,
		RepresentativeCode: req.RepresentativeCode,
		CategoryId:         req.CategoryId,
		Tags:               req.Tags,
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, audit.Record{
		Model:           catalog.ProductAuditModel,
		ModelIdentifier: product.Id.String(),
		PageName:        catalog.AuditPageName,
		URL:             meta.URL,
		Method:          audit.MethodCreate,
		UserId:          meta.UserId,
		Diff:            catalog.ProductSchema.Snapshot(*product),
		StatusCode:      201,
	})
	return mapper.ProductToResponse(product), nil
}

func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	product, err := s.manager.FindProduct(ctx, uow, id)
	if err != nil {
		return nil, err
	}
	return mapper.ProductToResponse(product), nil
}

// normalizePage defaults to the first page of 20 and caps the page size.
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

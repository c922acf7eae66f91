package controller

import (
	"myinco-admin-be/internal/dto"
	"myinco-admin-be/internal/pkg/serverutils"
	"myinco-admin-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICatalogController interface {
	RegisterRoutes(r fiber.Router)
	ListCategories(ctx *fiber.Ctx) error
	ListSubCategories(ctx *fiber.Ctx) error
	CreateCategory(ctx *fiber.Ctx) error
	UpdateCategory(ctx *fiber.Ctx) error
	DeleteCategory(ctx *fiber.Ctx) error
	ListProducts(ctx *fiber.Ctx) error
	CreateProduct(ctx *fiber.Ctx) error
	GetProduct(ctx *fiber.Ctx) error
}

type catalogController struct {
	service service.ICatalogService
}

func NewCatalogController(service service.ICatalogService) ICatalogController {
	return &catalogController{service: service}
}

func (c *catalogController) RegisterRoutes(r fiber.Router) {
	// Categories
	r.Get("/categories", c.ListCategories)
	r.Post("/categories", c.CreateCategory)
	r.Put("/categories/:id", c.UpdateCategory)
	r.Delete("/categories/:id", c.DeleteCategory)
	r.Get("/categories/:id/subcategories", c.ListSubCategories)

	// Products
	r.Get("/products", c.ListProducts)
	r.Post("/products", c.CreateProduct)
	r.Get("/products/:id", c.GetProduct)
}

// ListCategories lists the main categories.
func (c *catalogController) ListCategories(ctx *fiber.Ctx) error {
	res, err := c.service.ListMainCategories(ctx.Context())
	if err != nil {
		return handleError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Categories", res))
}

func (c *catalogController) ListSubCategories(ctx *fiber.Ctx) error {
	id, ok, err := paramUUID(ctx, "id")
	if !ok {
		return err
	}
	res, err := c.service.ListSubCategories(ctx.Context(), id)
	if err != nil {
		return handleError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Sub categories", res))
}

func (c *catalogController) CreateCategory(ctx *fiber.Ctx) error {
	var req dto.CreateCategoryRequest
	if ok, err := bindBody(ctx, &req); !ok {
		return err
	}
	res, err := c.service.CreateCategory(ctx.Context(), serverutils.RequestMeta(ctx), req)
	if err != nil {
		return handleError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Category created", res))
}

func (c *catalogController) UpdateCategory(ctx *fiber.Ctx) error {
	id, ok, err := paramUUID(ctx, "id")
	if !ok {
		return err
	}
	var req dto.UpdateCategoryRequest
	if ok, err := bindBody(ctx, &req); !ok {
		return err
	}
	res, err := c.service.UpdateCategory(ctx.Context(), serverutils.RequestMeta(ctx), id, req)
	if err != nil {
		return handleError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Category updated", res))
}

func (c *catalogController) DeleteCategory(ctx *fiber.Ctx) error {
	id, ok, err := paramUUID(ctx, "id")
	if !ok {
		return err
	}
	if err := c.service.DeleteCategory(ctx.Context(), serverutils.RequestMeta(ctx), id); err != nil {
		return handleError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Category deleted", nil))
}

func (c *catalogController) ListProducts(ctx *fiber.Ctx) error {
	var req dto.ProductListRequest
	if err := ctx.QueryParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid query parameters"))
	}
	res, err := c.service.ListProducts(ctx.Context(), req)
	if err != nil {
		return handleError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Products", res))
}

func (c *catalogController) CreateProduct(ctx *fiber.Ctx) error {
	var req dto.CreateProductRequest
	if ok, err := bindBody(ctx, &req); !ok {
		return err
	}
	res, err := c.service.CreateProduct(ctx.Context(), serverutils.RequestMeta(ctx), req)
	if err != nil {
		return handleError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Product created", res))
}

func (c *catalogController) GetProduct(ctx *fiber.Ctx) error {
	id, ok, err := paramUUID(ctx, "id")
	if !ok {
		return err
	}
	res, err := c.service.GetProduct(ctx.Context(), id)
	if err != nil {
		return handleError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Product detail", res))
}

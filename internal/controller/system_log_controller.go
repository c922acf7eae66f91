package controller

import (
	"myinco-admin-be/internal/dto"
	"myinco-admin-be/internal/pkg/serverutils"
	"myinco-admin-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISystemLogController interface {
	RegisterRoutes(r fiber.Router)
	GetLogs(ctx *fiber.Ctx) error
	GetLogDetail(ctx *fiber.Ctx) error
}

type systemLogController struct {
	service service.ISystemLogService
}

func NewSystemLogController(service service.ISystemLogService) ISystemLogController {
	return &systemLogController{service: service}
}

func (c *systemLogController) RegisterRoutes(r fiber.Router) {
	r.Get("/system-logs", c.GetLogs)
	r.Get("/system-logs/:id", c.GetLogDetail)
}

func (c *systemLogController) GetLogs(ctx *fiber.Ctx) error {
	var req dto.SystemLogListRequest
	if err := ctx.QueryParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid query parameters"))
	}
	res, err := c.service.List(ctx.Context(), req)
	if err != nil {
		return handleError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("System logs", res))
}

func (c *systemLogController) GetLogDetail(ctx *fiber.Ctx) error {
	id, ok, err := paramUUID(ctx, "id")
	if !ok {
		return err
	}
	res, err := c.service.Get(ctx.Context(), id)
	if err != nil {
		return handleError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("System log detail", res))
}

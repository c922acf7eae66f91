package controller

import (
	"bytes"
	"fmt"
	"strconv"

	"myinco-admin-be/internal/dto"
	"myinco-admin-be/internal/pkg/serverutils"
	"myinco-admin-be/internal/service"
	"myinco-admin-be/pkg/servicecode"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type IPolicyController interface {
	RegisterRoutes(r fiber.Router)

	// Verification
	TestBatch(ctx *fiber.Ctx) error
	VerifyBatch(ctx *fiber.Ctx) error
	VerifyEach(ctx *fiber.Ctx) error
	VerifyService(ctx *fiber.Ctx) error

	// Creation
	BatchCreate(ctx *fiber.Ctx) error
	EachCreate(ctx *fiber.Ctx) error

	// Policies
	ListPolicies(ctx *fiber.Ctx) error
	GetPolicy(ctx *fiber.Ctx) error
	UpdatePolicy(ctx *fiber.Ctx) error
	ListOptions(ctx *fiber.Ctx) error
	ExportOptions(ctx *fiber.Ctx) error
	Candidates(ctx *fiber.Ctx) error
	SaveServiceOptions(ctx *fiber.Ctx) error
}

type policyController struct {
	service service.IPolicyService
}

func NewPolicyController(service service.IPolicyService) IPolicyController {
	return &policyController{service: service}
}

func (c *policyController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/policy")
	h.Post("/batch/test", c.TestBatch)
	h.Post("/batch/verify", c.VerifyBatch)
	h.Post("/each/verify", c.VerifyEach)
	h.Post("/service/verify", c.VerifyService)
	h.Post("/batch/create", c.BatchCreate)
	h.Post("/each/create", c.EachCreate)

	p := r.Group("/policies")
	p.Get("/", c.ListPolicies)
	p.Get("/:id", c.GetPolicy)
	p.Put("/:id", c.UpdatePolicy)
	p.Get("/:id/options", c.ListOptions)
	p.Get("/:id/options/export", c.ExportOptions)
	p.Get("/:id/candidates", c.Candidates)
	p.Post("/:id/services", c.SaveServiceOptions)
}

// paramUUID parses a path parameter; ok is false when a 400 was written.
func paramUUID(ctx *fiber.Ctx, name string) (uuid.UUID, bool, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, false, ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid "+name))
	}
	return id, true, nil
}

// queryUUID parses an optional query parameter.
func queryUUID(ctx *fiber.Ctx, name string) (*uuid.UUID, error) {
	raw := ctx.Query(name)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func verifyMessage(report *servicecode.Report) string {
	if report.HasErrors() {
		return fmt.Sprintf("%d of %d rows are invalid", report.Counts.Invalid, report.Counts.Total)
	}
	return "All rows are valid"
}

func (c *policyController) TestBatch(ctx *fiber.Ctx) error {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "file is required"))
	}
	file, err := fh.Open()
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Failed to read uploaded file"))
	}
	defer file.Close()

	res, err := c.service.TestBatch(ctx.Context(), file, ctx.FormValue("version"))
	if err != nil {
		return handleError(ctx, err)
	}

	data := dto.BatchTestResponse{
		UploadId: res.UploadId,
		Rows:     servicecode.BatchLayout.Table(res.Workbook.Rows),
		Meta:     dto.BatchMeta{Rule: res.Workbook.Rule, Code: res.Workbook.Code, Info: res.Workbook.Info},
		Verify:   verifyResponse(res.Report, servicecode.BatchLayout),
	}
	return ctx.JSON(serverutils.ReportResponse(200, verifyMessage(res.Report), data, res.Report.Errors, res.Report.Counts))
}

func (c *policyController) VerifyBatch(ctx *fiber.Ctx) error {
	var req dto.BatchVerifyRequest
	if ok, err := bindBody(ctx, &req); !ok {
		return err
	}
	report, err := c.service.VerifyBatch(ctx.Context(), req)
	if err != nil {
		return handleError(ctx, err)
	}
	return ctx.JSON(reportResponse(200, verifyMessage(report), report, servicecode.BatchLayout))
}

func (c *policyController) VerifyEach(ctx *fiber.Ctx) error {
	var req dto.EachVerifyRequest
	if ok, err := bindBody(ctx, &req); !ok {
		return err
	}
	report, err := c.service.VerifyEach(ctx.Context(), req)
	if err != nil {
		return handleError(ctx, err)
	}
	return ctx.JSON(reportResponse(200, verifyMessage(report), report, servicecode.BatchLayout))
}

func (c *policyController) VerifyService(ctx *fiber.Ctx) error {
	var req dto.ServiceVerifyRequest
	if ok, err := bindBody(ctx, &req); !ok {
		return err
	}
	report, err := c.service.VerifyService(ctx.Context(), req)
	if err != nil {
		return handleReportError(ctx, err, servicecode.ServiceLayout)
	}
	return ctx.JSON(reportResponse(200, verifyMessage(report), report, servicecode.ServiceLayout))
}

func (c *policyController) BatchCreate(ctx *fiber.Ctx) error {
	var req dto.BatchCreateRequest
	if ok, err := bindBody(ctx, &req); !ok {
		return err
	}
	res, err := c.service.BatchCreate(ctx.Context(), serverutils.RequestMeta(ctx), req)
	if err != nil {
		return handleError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Policy created", res))
}

func (c *policyController) EachCreate(ctx *fiber.Ctx) error {
	var req dto.EachCreateRequest
	if ok, err := bindBody(ctx, &req); !ok {
		return err
	}
	res, err := c.service.EachCreate(ctx.Context(), serverutils.RequestMeta(ctx), req)
	if err != nil {
		return handleError(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Policy created", res))
}

func (c *policyController) ListPolicies(ctx *fiber.Ctx) error {
	categoryId, err := queryUUID(ctx, "category_id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid category_id"))
	}
	res, err := c.service.ListPolicies(ctx.Context(), categoryId)
	if err != nil {
		return handleError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Policies", res))
}

func (c *policyController) GetPolicy(ctx *fiber.Ctx) error {
	id, ok, err := paramUUID(ctx, "id")
	if !ok {
		return err
	}
	res, err := c.service.GetPolicy(ctx.Context(), id)
	if err != nil {
		return handleError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Policy detail", res))
}

func (c *policyController) UpdatePolicy(ctx *fiber.Ctx) error {
	id, ok, err := paramUUID(ctx, "id")
	if !ok {
		return err
	}
	var req dto.UpdatePolicyRequest
	if ok, err := bindBody(ctx, &req); !ok {
		return err
	}
	res, err := c.service.UpdatePolicy(ctx.Context(), serverutils.RequestMeta(ctx), id, req)
	if err != nil {
		return handleError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Policy updated", res))
}

func (c *policyController) ListOptions(ctx *fiber.Ctx) error {
	id, ok, err := paramUUID(ctx, "id")
	if !ok {
		return err
	}
	productId, err := queryUUID(ctx, "product_id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid product_id"))
	}
	res, err := c.service.ListOptions(ctx.Context(), id, productId)
	if err != nil {
		return handleError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Price options", res))
}

func (c *policyController) ExportOptions(ctx *fiber.Ctx) error {
	id, ok, err := paramUUID(ctx, "id")
	if !ok {
		return err
	}
	productId, err := queryUUID(ctx, "product_id")
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid product_id"))
	}

	var buf bytes.Buffer
	if err := c.service.ExportOptions(ctx.Context(), id, productId, &buf); err != nil {
		return handleError(ctx, err)
	}
	ctx.Attachment(fmt.Sprintf("policy-%s-options.xlsx", id))
	ctx.Set(fiber.HeaderContentType, xlsxContentType)
	return ctx.Send(buf.Bytes())
}

func (c *policyController) Candidates(ctx *fiber.Ctx) error {
	id, ok, err := paramUUID(ctx, "id")
	if !ok {
		return err
	}
	productId, err := uuid.Parse(ctx.Query("product_id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "product_id is required"))
	}
	limit, _ := strconv.Atoi(ctx.Query("limit", "0"))

	res, err := c.service.Candidates(ctx.Context(), id, productId, limit)
	if err != nil {
		return handleError(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Candidates", res))
}

func (c *policyController) SaveServiceOptions(ctx *fiber.Ctx) error {
	id, ok, err := paramUUID(ctx, "id")
	if !ok {
		return err
	}
	var req dto.SaveServiceOptionsRequest
	if ok, err := bindBody(ctx, &req); !ok {
		return err
	}
	res, err := c.service.SaveServiceOptions(ctx.Context(), serverutils.RequestMeta(ctx), id, req)
	if err != nil {
		return handleReportError(ctx, err, servicecode.ServiceLayout)
	}
	return ctx.JSON(serverutils.SuccessResponse("Service options saved", res))
}

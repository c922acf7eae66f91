package controller

import (
	"errors"

	"myinco-admin-be/internal/dto"
	"myinco-admin-be/internal/pkg/serverutils"
	"myinco-admin-be/internal/service"
	"myinco-admin-be/pkg/admin/catalog"
	"myinco-admin-be/pkg/admin/policy"
	"myinco-admin-be/pkg/lock"
	"myinco-admin-be/pkg/servicecode"

	"github.com/gofiber/fiber/v2"
)

var (
	badRequest = []error{
		service.ErrInvalidUpload,
		service.ErrRowsRequired,
		policy.ErrNotSubCategory,
		policy.ErrNoCodeOptions,
		servicecode.ErrUnknownTransform,
		servicecode.ErrCandidateSetTooLarge,
		catalog.ErrCategoryNameRequired,
		catalog.ErrParentNotMain,
		catalog.ErrProductCategory,
	}
	notFound = []error{
		service.ErrUploadNotFound,
		service.ErrSystemLogNotFound,
		policy.ErrPolicyNotFound,
		policy.ErrCategoryNotFound,
		policy.ErrProductNotFound,
		catalog.ErrCategoryNotFound,
		catalog.ErrProductNotFound,
	}
	conflict = []error{
		lock.ErrLocked,
		catalog.ErrDuplicateCategoryName,
		catalog.ErrCategoryInUse,
		catalog.ErrDuplicateProduct,
	}
)

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// handleError answers known domain errors with their status. Anything else is
// returned to the error handler middleware, which logs it and hides the detail.
func handleError(ctx *fiber.Ctx, err error) error {
	return handleReportError(ctx, err, servicecode.BatchLayout)
}

// handleReportError is handleError for endpoints whose rows use layout.
func handleReportError(ctx *fiber.Ctx, err error, layout servicecode.Layout) error {
	var (
		syntax  *servicecode.RuleSyntaxError
		missing *servicecode.MissingVariableError
		dup     *policy.DuplicatePolicyVersionError
		invalid *policy.InvalidBatchError
	)
	switch {
	case errors.As(err, &invalid):
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(reportResponse(fiber.StatusUnprocessableEntity, err.Error(), invalid.Report, layout))
	case errors.As(err, &syntax), errors.As(err, &missing), isAny(err, badRequest):
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	case errors.As(err, &dup), isAny(err, conflict):
		return ctx.Status(fiber.StatusConflict).JSON(serverutils.ErrorResponse(409, err.Error()))
	case isAny(err, notFound):
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
	}
	return err
}

// verifyResponse is the data part of a validation report.
func verifyResponse(report *servicecode.Report, layout servicecode.Layout) dto.VerifyResponse {
	return dto.VerifyResponse{
		Rows:    layout.Table(report.Rows),
		Meta:    report.Meta,
		Details: report.Details,
		Results: report.Results,
	}
}

func reportResponse(code int, message string, report *servicecode.Report, layout servicecode.Layout) *serverutils.BaseResponse[dto.VerifyResponse] {
	return serverutils.ReportResponse(code, message, verifyResponse(report, layout), report.Errors, report.Counts)
}

// bindBody parses and validates a JSON body. The returned error is already
// written to the response.
func bindBody(ctx *fiber.Ctx, req interface{}) (bool, error) {
	if err := ctx.BodyParser(req); err != nil {
		return false, ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return false, ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, serverutils.ValidationMessage(err)))
	}
	return true, nil
}

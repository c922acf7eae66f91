package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"myinco-admin-be/internal/dto"
	"myinco-admin-be/internal/entity"
	"myinco-admin-be/internal/pkg/logger"
	"myinco-admin-be/internal/repository/memory"
	"myinco-admin-be/internal/repository/specification"
	"myinco-admin-be/internal/repository/unitofwork"
	"myinco-admin-be/internal/tracer"
	"myinco-admin-be/pkg/admin/events"
	"myinco-admin-be/pkg/admin/mapper"
	"myinco-admin-be/pkg/admin/policy"
	"myinco-admin-be/pkg/audit"
	"myinco-admin-be/pkg/lock"
	"myinco-admin-be/pkg/servicecode"
	"myinco-admin-be/pkg/spreadsheet"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrInvalidUpload  = errors.New("invalid policy workbook")
	ErrUploadNotFound = errors.New("upload not found or expired, run the batch test again")
	ErrRowsRequired   = errors.New("either upload_id or rows with meta is required")
)

type IPolicyService interface {
	// Verification
	TestBatch(ctx context.Context, file io.Reader, version string) (*BatchTestResult, error)
	VerifyBatch(ctx context.Context, req dto.BatchVerifyRequest) (*servicecode.Report, error)
	VerifyEach(ctx context.Context, req dto.EachVerifyRequest) (*servicecode.Report, error)
	VerifyService(ctx context.Context, req dto.ServiceVerifyRequest) (*servicecode.Report, error)

	// Creation
	BatchCreate(ctx context.Context, meta dto.RequestMeta, req dto.BatchCreateRequest) (*dto.CreatePolicyResponse, error)
	EachCreate(ctx context.Context, meta dto.RequestMeta, req dto.EachCreateRequest) (*dto.CreatePolicyResponse, error)

	// Policies
	ListPolicies(ctx context.Context, categoryId *uuid.UUID) ([]*dto.PolicyResponse, error)
	GetPolicy(ctx context.Context, id uuid.UUID) (*dto.PolicyResponse, error)
	UpdatePolicy(ctx context.Context, meta dto.RequestMeta, id uuid.UUID, req dto.UpdatePolicyRequest) (*dto.PolicyResponse, error)

	// Price options
	ListOptions(ctx context.Context, id uuid.UUID, productId *uuid.UUID) ([]*dto.PriceOptionResponse, error)
	ExportOptions(ctx context.Context, id uuid.UUID, productId *uuid.UUID, out io.Writer) error
	Candidates(ctx context.Context, id, productId uuid.UUID, limit int) (*dto.CandidateListResponse, error)
	SaveServiceOptions(ctx context.Context, meta dto.RequestMeta, id uuid.UUID, req dto.SaveServiceOptionsRequest) (*dto.SaveServiceOptionsResponse, error)
}

// BatchTestResult is a parsed upload, cached under UploadId, with its
// verification report.
type BatchTestResult struct {
	UploadId string
	Workbook *spreadsheet.Workbook
	Report   *servicecode.Report
}

type policyService struct {
	uowFactory    unitofwork.RepositoryFactory
	logger        logger.ILogger
	manager       *policy.Manager
	uploads       *memory.UploadRepository
	locker        lock.Locker
	auditor       audit.Publisher
	events        events.Publisher
	maxCandidates int
}

func NewPolicyService(
	uowFactory unitofwork.RepositoryFactory,
	logger logger.ILogger,
	manager *policy.Manager,
	uploads *memory.UploadRepository,
	locker lock.Locker,
	auditor audit.Publisher,
	eventPublisher events.Publisher,
	maxCandidates int,
) IPolicyService {
	return &policyService{
		uowFactory:    uowFactory,
		logger:        logger,
		manager:       manager,
		uploads:       uploads,
		locker:        locker,
		auditor:       auditor,
		events:        eventPublisher,
		maxCandidates: maxCandidates,
	}
}

func categoryLockKey(id uuid.UUID) string {
	return "policy:category:" + id.String()
}

func (s *policyService) TestBatch(ctx context.Context, file io.Reader, version string) (*BatchTestResult, error) {
	ctx, span := tracer.Start(ctx, "policy.TestBatch", attribute.String("policy.version", version))
	res, err := s.testBatch(ctx, file, version)
	tracer.End(span, err)
	return res, err
}

func (s *policyService) testBatch(ctx context.Context, file io.Reader, version string) (*BatchTestResult, error) {
	wb, err := spreadsheet.Read(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidUpload, err)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	report, err := s.manager.VerifyBatch(ctx, uow, wb, version)
	if err != nil {
		return nil, err
	}

	return &BatchTestResult{UploadId: s.uploads.Save(wb), Workbook: wb, Report: report}, nil
}

func (s *policyService) VerifyBatch(ctx context.Context, req dto.BatchVerifyRequest) (*servicecode.Report, error) {
	wb := &spreadsheet.Workbook{
		Rule: req.Meta.Rule,
		Code: req.Meta.Code,
		Info: req.Meta.Info,
		Rows: servicecode.RowsFromTable(req.Rows, servicecode.BatchLayout),
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return s.manager.VerifyBatch(ctx, uow, wb, req.Version)
}

func (s *policyService) VerifyEach(ctx context.Context, req dto.EachVerifyRequest) (*servicecode.Report, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return s.manager.VerifyEach(ctx, uow, servicecode.RowsFromTable(req.Rows, servicecode.BatchLayout))
}

func (s *policyService) VerifyService(ctx context.Context, req dto.ServiceVerifyRequest) (*servicecode.Report, error) {
	ctx, span := tracer.Start(ctx, "policy.VerifyService", attribute.String("policy.id", req.PolicyId.String()), attribute.Int("rows", len(req.Rows)))
	res, err := s.verifyService(ctx, req)
	tracer.End(span, err)
	return res, err
}

func (s *policyService) verifyService(ctx context.Context, req dto.ServiceVerifyRequest) (*servicecode.Report, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	rows := servicecode.RowsFromTable(req.Rows, servicecode.ServiceLayout)
	return s.manager.VerifyService(ctx, uow, req.PolicyId, req.ProductId, rows)
}

func flags(isActive *bool, isPromotion, isActiveHomepage bool) policy.Flags {
	active := true
	if isActive != nil {
		active = *isActive
	}
	return policy.Flags{IsActive: active, IsPromotion: isPromotion, IsActiveHomepage: isActiveHomepage}
}

func (s *policyService) BatchCreate(ctx context.Context, meta dto.RequestMeta, req dto.BatchCreateRequest) (*dto.CreatePolicyResponse, error) {
	ctx, span := tracer.Start(ctx, "policy.BatchCreate", attribute.String("policy.version", req.Version), attribute.String("category.id", req.SubCategoryId.String()))
	res, err := s.batchCreate(ctx, meta, req)
	tracer.End(span, err)
	return res, err
}

func (s *policyService) batchCreate(ctx context.Context, meta dto.RequestMeta, req dto.BatchCreateRequest) (*dto.CreatePolicyResponse, error) {
	var wb *spreadsheet.Workbook
	switch {
	case req.UploadId != "":
		cached, ok := s.uploads.Get(req.UploadId)
		if !ok {
			return nil, ErrUploadNotFound
		}
		wb = cached
	case req.Meta != nil && len(req.Rows) > 0:
		wb = &spreadsheet.Workbook{
			Rule: req.Meta.Rule,
			Code: req.Meta.Code,
			Info: req.Meta.Info,
			Rows: servicecode.RowsFromTable(req.Rows, servicecode.BatchLayout),
		}
	default:
		return nil, ErrRowsRequired
	}

	release, err := s.locker.Acquire(ctx, categoryLockKey(req.SubCategoryId))
	if err != nil {
		return nil, err
	}
	defer release()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	res, err := s.manager.BatchCreate(ctx, uow, policy.BatchInput{
		CategoryId: req.SubCategoryId,
		Version:    req.Version,
		Workbook:   wb,
		Flags:      flags(req.IsActive, req.IsPromotion, req.IsActiveHomepage),
	})
	if err != nil {
		return nil, err
	}
	if req.UploadId != "" {
		s.uploads.Delete(req.UploadId)
	}

	s.afterCreate(ctx, meta, res)
	return &dto.CreatePolicyResponse{PolicyId: res.Policy.Id, OptionCount: len(res.Options)}, nil
}

func (s *policyService) EachCreate(ctx context.Context, meta dto.RequestMeta, req dto.EachCreateRequest) (*dto.CreatePolicyResponse, error) {
	ctx, span := tracer.Start(ctx, "policy.EachCreate", attribute.String("policy.version", req.Version), attribute.String("category.id", req.SubCategoryId.String()))
	res, err := s.eachCreate(ctx, meta, req)
	tracer.End(span, err)
	return res, err
}

func (s *policyService) eachCreate(ctx context.Context, meta dto.RequestMeta, req dto.EachCreateRequest) (*dto.CreatePolicyResponse, error) {
	options := make([]policy.CodeOption, 0, len(req.CodeOptions))
	for _, opt := range req.CodeOptions {
		options = append(options, policy.CodeOption{Name: opt.OptionName, Values: opt.OptionValue})
	}

	release, err := s.locker.Acquire(ctx, categoryLockKey(req.SubCategoryId))
	if err != nil {
		return nil, err
	}
	defer release()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	res, err := s.manager.EachCreate(ctx, uow, policy.EachInput{
		CategoryId:     req.SubCategoryId,
		Version:        req.Version,
		DescRule:       req.DescRule,
		CodeRule:       req.CodeRule,
		CodeTransforms: servicecode.TransformSpec(req.CodeTransforms),
		CodeOptions:    options,
		Flags:          flags(req.IsActive, req.IsPromotion, req.IsActiveHomepage),
	})
	if err != nil {
		return nil, err
	}

	s.afterCreate(ctx, meta, res)
	return &dto.CreatePolicyResponse{PolicyId: res.Policy.Id, OptionCount: len(res.Options)}, nil
}

// afterCreate records the audit entry and emits the domain events of a
// committed policy. Failures here never undo the create.
func (s *policyService) afterCreate(ctx context.Context, meta dto.RequestMeta, res *policy.CreateResult) {
	p := res.Policy
	s.record(ctx, audit.Record{
		Model:           policy.AuditModel,
		ModelIdentifier: p.Id.String(),
		PageName:        policy.AuditPageName,
		URL:             meta.URL,
		Method:          audit.MethodCreate,
		UserId:          meta.UserId,
		Diff:            policy.AuditSchema.Snapshot(*p),
		ExtraContent:    fmt.Sprintf("price_options=%d", len(res.Options)),
		StatusCode:      201,
	})

	s.events.PublishPolicyCreated(ctx, p.Id, p.CategoryId, p.CategoryName, p.Version, len(res.Options), meta.UserId)
	if p.IsActiveHomepage {
		s.events.PublishHomepagePolicyChanged(ctx, p.Id, p.CategoryId, p.CategoryName, p.Version, meta.UserId)
	}

	s.logger.Info("POLICY", "Policy created", map[string]interface{}{
		"policy_id":     p.Id.String(),
		"category":      p.CategoryName,
		"version":       p.Version,
		"price_options": len(res.Options),
		"actor":         meta.UserId,
	})
}

func (s *policyService) record(ctx context.Context, rec audit.Record) {
	if err := s.auditor.Publish(ctx, rec); err != nil {
		s.logger.Warn("AUDIT", "Failed to publish audit record", map[string]interface{}{
			"model":    rec.Model,
			"model_id": rec.ModelIdentifier,
			"error":    err.Error(),
		})
	}
}

func (s *policyService) ListPolicies(ctx context.Context, categoryId *uuid.UUID) ([]*dto.PolicyResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	specs := []specification.Specification{}
	if categoryId != nil {
		specs = append(specs, specification.ByCategoryID{CategoryID: *categoryId})
	}
	policies, err := uow.ServicePolicyRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	return mapper.PoliciesToResponse(policies), nil
}

func (s *policyService) GetPolicy(ctx context.Context, id uuid.UUID) (*dto.PolicyResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	p, err := s.manager.Find(ctx, uow, id)
	if err != nil {
		return nil, err
	}
	return mapper.PolicyToResponse(p), nil
}

func (s *policyService) UpdatePolicy(ctx context.Context, meta dto.RequestMeta, id uuid.UUID, req dto.UpdatePolicyRequest) (*dto.PolicyResponse, error) {
	if req.IsActiveHomepage != nil && *req.IsActiveHomepage {
		current, err := s.manager.Find(ctx, s.uowFactory.NewUnitOfWork(ctx), id)
		if err != nil {
			return nil, err
		}
		release, err := s.locker.Acquire(ctx, categoryLockKey(current.CategoryId))
		if err != nil {
			return nil, err
		}
		defer release()
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	res, err := s.manager.UpdateFlags(ctx, uow, id, policy.FlagUpdate{
		IsActive:         req.IsActive,
		IsPromotion:      req.IsPromotion,
		IsActiveHomepage: req.IsActiveHomepage,
	})
	if err != nil {
		return nil, err
	}

	if diff := policy.FlagDiffSchema.Diff(*res.Before, *res.After); len(diff) > 0 {
		s.record(ctx, audit.Record{
			Model:           policy.AuditModel,
			ModelIdentifier: id.String(),
			PageName:        policy.AuditPageName,
			URL:             meta.URL,
			Method:          audit.MethodUpdate,
			UserId:          meta.UserId,
			Diff:            diff,
			StatusCode:      200,
		})
	}
	if res.HomepageChanged {
		p := res.After
		s.events.PublishHomepagePolicyChanged(ctx, p.Id, p.CategoryId, p.CategoryName, p.Version, meta.UserId)
	}
	return mapper.PolicyToResponse(res.After), nil
}

func (s *policyService) findOptions(ctx context.Context, id uuid.UUID, productId *uuid.UUID) ([]*entity.PriceOption, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.manager.Find(ctx, uow, id); err != nil {
		return nil, err
	}
	specs := []specification.Specification{specification.ByPolicyID{PolicyID: id}}
	if productId != nil {
		specs = append(specs, specification.ByProductID{ProductID: *productId})
	}
	return uow.ServicePolicyRepository().FindPriceOptions(ctx, specs...)
}

func (s *policyService) ListOptions(ctx context.Context, id uuid.UUID, productId *uuid.UUID) ([]*dto.PriceOptionResponse, error) {
	options, err := s.findOptions(ctx, id, productId)
	if err != nil {
		return nil, err
	}
	return mapper.PriceOptionsToResponse(options), nil
}

func (s *policyService) ExportOptions(ctx context.Context, id uuid.UUID, productId *uuid.UUID, out io.Writer) error {
	options, err := s.findOptions(ctx, id, productId)
	if err != nil {
		return err
	}
	return spreadsheet.WriteOptions(out, mapper.PriceOptionsToRows(options))
}

func (s *policyService) Candidates(ctx context.Context, id, productId uuid.UUID, limit int) (*dto.CandidateListResponse, error) {
	if limit <= 0 || limit > s.maxCandidates {
		limit = s.maxCandidates
	}
	uow := s.uowFactory.NewUnitOfWork(ctx)
	candidates, total, err := s.manager.Candidates(ctx, uow, id, productId, limit)
	if err != nil {
		return nil, err
	}
	return mapper.CandidatesToResponse(candidates, total), nil
}

func (s *policyService) SaveServiceOptions(ctx context.Context, meta dto.RequestMeta, id uuid.UUID, req dto.SaveServiceOptionsRequest) (*dto.SaveServiceOptionsResponse, error) {
	ctx, span := tracer.Start(ctx, "policy.SaveServiceOptions", attribute.String("policy.id", id.String()), attribute.Int("rows", len(req.Rows)))
	res, err := s.saveServiceOptions(ctx, meta, id, req)
	tracer.End(span, err)
	return res, err
}

func (s *policyService) saveServiceOptions(ctx context.Context, meta dto.RequestMeta, id uuid.UUID, req dto.SaveServiceOptionsRequest) (*dto.SaveServiceOptionsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	current, err := s.manager.Find(ctx, uow, id)
	if err != nil {
		return nil, err
	}
	release, err := s.locker.Acquire(ctx, categoryLockKey(current.CategoryId))
	if err != nil {
		return nil, err
	}
	defer release()

	rows := servicecode.RowsFromTable(req.Rows, servicecode.ServiceLayout)
	saved, err := s.manager.SaveServiceOptions(ctx, uow, id, req.ProductId, rows)
	if err != nil {
		return nil, err
	}

	s.record(ctx, audit.Record{
		Model:           policy.AuditModel,
		ModelIdentifier: id.String(),
		PageName:        policy.AuditPageName,
		URL:             meta.URL,
		Method:          audit.MethodUpdate,
		UserId:          meta.UserId,
		Diff:            []audit.Change{{Field: "price_options", After: strconv.Itoa(len(saved))}},
		ExtraContent:    "product_id=" + req.ProductId.String(),
		StatusCode:      200,
	})
	return &dto.SaveServiceOptionsResponse{Saved: len(saved)}, nil
}

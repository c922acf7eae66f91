package service

import (
	"context"
	"errors"

	"myinco-admin-be/internal/dto"
	"myinco-admin-be/internal/mapper"
	"myinco-admin-be/internal/pkg/logger"
	"myinco-admin-be/internal/repository/specification"
	"myinco-admin-be/internal/repository/unitofwork"
	adminMapper "myinco-admin-be/pkg/admin/mapper"
	"myinco-admin-be/pkg/audit"

	"github.com/google/uuid"
)

var ErrSystemLogNotFound = errors.New("system log not found")

type ISystemLogService interface {
	List(ctx context.Context, req dto.SystemLogListRequest) (*dto.PageResponse[*dto.SystemLogResponse], error)
	Get(ctx context.Context, id uuid.UUID) (*dto.SystemLogResponse, error)
	// Save persists an audit record; it makes the service an audit.Sink.
	Save(ctx context.Context, rec audit.Record) error
}

type systemLogService struct {
	uowFactory unitofwork.RepositoryFactory
	auditLog   logger.ILogger
	mapper     *mapper.SystemLogMapper
}

// NewSystemLogService builds the system log service. auditLog mirrors every
// saved record to the audit log file.
func NewSystemLogService(uowFactory unitofwork.RepositoryFactory, auditLog logger.ILogger) ISystemLogService {
	return &systemLogService{
		uowFactory: uowFactory,
		auditLog:   auditLog,
		mapper:     mapper.NewSystemLogMapper(),
	}
}

func (s *systemLogService) Save(ctx context.Context, rec audit.Record) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.SystemLogRepository().Create(ctx, s.mapper.FromRecord(rec)); err != nil {
		return err
	}
	s.auditLog.Info(rec.Model, rec.Method+" "+rec.ModelIdentifier, map[string]interface{}{
		"page_name":   rec.PageName,
		"url":         rec.URL,
		"user_id":     rec.UserId,
		"diff":        rec.Diff,
		"status_code": rec.StatusCode,
	})
	return nil
}

func (s *systemLogService) List(ctx context.Context, req dto.SystemLogListRequest) (*dto.PageResponse[*dto.SystemLogResponse], error) {
	page, limit := normalizePage(req.Page, req.Limit)

	specs := []specification.Specification{}
	if req.Keyword != "" {
		specs = append(specs, specification.SystemLogKeyword{Keyword: req.Keyword})
	}
	if req.Model != "" {
		specs = append(specs, specification.ByModel{Model: req.Model})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	total, err := uow.SystemLogRepository().Count(ctx, specs...)
	if err != nil {
		return nil, err
	}
	logs, err := uow.SystemLogRepository().FindAll(ctx, append(specs, specification.Pagination{Limit: limit, Offset: (page - 1) * limit})...)
	if err != nil {
		return nil, err
	}

	return &dto.PageResponse[*dto.SystemLogResponse]{
		Items: adminMapper.SystemLogsToResponse(logs),
		Total: total,
		Page:  page,
		Limit: limit,
	}, nil
}

func (s *systemLogService) Get(ctx context.Context, id uuid.UUID) (*dto.SystemLogResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	log, err := uow.SystemLogRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if log == nil {
		return nil, ErrSystemLogNotFound
	}
	return adminMapper.SystemLogToResponse(log), nil
}

package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"myinco-admin-be/internal/dto"
	"myinco-admin-be/internal/entity"
	"myinco-admin-be/internal/pkg/logger"
	"myinco-admin-be/internal/pkg/serverutils"
	"myinco-admin-be/internal/repository/fake"
	"myinco-admin-be/internal/repository/memory"
	"myinco-admin-be/internal/service"
	"myinco-admin-be/pkg/admin/catalog"
	"myinco-admin-be/pkg/admin/events"
	"myinco-admin-be/pkg/admin/policy"
	"myinco-admin-be/pkg/audit"
	"myinco-admin-be/pkg/lock"
	"myinco-admin-be/pkg/servicecode"
	"myinco-admin-be/pkg/spreadsheet"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type nopAuditor struct{}

func (nopAuditor) Publish(context.Context, audit.Record) error { return nil }

type testApp struct {
	app     *fiber.App
	store   *fake.Store
	main    entity.ProductCategory
	sub     entity.ProductCategory
	product entity.Product
	token   string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	log := logger.NewNopLogger()
	store := fake.NewStore()
	main := store.AddCategory(entity.ProductCategory{Name: "License", Kind: entity.CategoryKindMain})
	sub := store.AddCategory(entity.ProductCategory{Name: "HGMD", Kind: entity.CategoryKindSub, ParentId: &main.Id})
	product := store.AddProduct(entity.Product{Name: "HGMD Online", RepresentativeCode: "ISG-BBHO", CategoryId: sub.Id})

	policyService := service.NewPolicyService(store, log, policy.NewManager("", 0), memory.NewUploadRepository(time.Minute),
		lock.NoopLocker{}, nopAuditor{}, events.NewNatsPublisher(nil, log), 100)
	catalogService := service.NewCatalogService(store, log, catalog.NewManager(), nopAuditor{})
	systemLogService := service.NewSystemLogService(store, log)

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware(log))
	api := app.Group("/api/admin", serverutils.AdminMiddleware(testSecret))
	NewPolicyController(policyService).RegisterRoutes(api)
	NewCatalogController(catalogService).RegisterRoutes(api)
	NewSystemLogController(systemLogService).RegisterRoutes(api)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"role": "admin", "user_id": "admin-1"}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	return &testApp{app: app, store: store, main: main, sub: sub, product: product, token: token}
}

func (a *testApp) do(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.token)
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) serverutils.BaseResponse[T] {
	t.Helper()
	defer resp.Body.Close()
	var out serverutils.BaseResponse[T]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func batchRows() [][]interface{} {
	return servicecode.BatchLayout.Table([]servicecode.Row{
		{No: "1", ProductName: "HGMD Online", ServiceCode: "ISG-BBHO-AC-21.1", Description: "HGMD Online, Clinical use for Academic", Price: "1,000"},
		{No: "2", ProductName: "HGMD Online", ServiceCode: "ISG-BBHO-AR-21.1", Description: "HGMD Online, Research use for Academic", Price: "2000"},
	})
}

func batchMeta() dto.BatchMeta {
	return dto.BatchMeta{
		Rule: spreadsheet.Rule{
			DescRule:   "{service_name}, {license_type} for {license_policy}",
			CodeRule:   "{representative_code}-{license_policy}{license_type}-{version}",
			Transforms: servicecode.TransformSpec{"license_policy": "upper", "license_type": "upper", "version": "trim_prefix:v"},
		},
		Code: servicecode.GroupCodes{
			{Name: "license_type", Codes: []string{"Clinical use", "Research use"}},
			{Name: "license_policy", Codes: []string{"Academic"}},
		},
		Info: map[string]map[string]string{
			"1": {"license_type": "Clinical use", "license_policy": "Academic"},
			"2": {"license_type": "Research use", "license_policy": "Academic"},
		},
	}
}

func (a *testApp) batchCreate(version string) dto.BatchCreateRequest {
	meta := batchMeta()
	return dto.BatchCreateRequest{SubCategoryId: a.sub.Id, Version: version, Rows: batchRows(), Meta: &meta}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	a := newTestApp(t)
	resp, err := a.app.Test(httptest.NewRequest(http.MethodGet, "/api/admin/categories", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPolicyController_BatchCreate(t *testing.T) {
	a := newTestApp(t)

	resp := a.do(t, http.MethodPost, "/api/admin/policy/batch/create", a.batchCreate("v21.1"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.CreatePolicyResponse](t, resp)
	assert.True(t, created.Success)
	assert.Equal(t, 2, created.Data.OptionCount)

	tests := []struct {
		name       string
		mutate     func(*dto.BatchCreateRequest)
		wantStatus int
	}{
		{"duplicate version", func(*dto.BatchCreateRequest) {}, http.StatusConflict},
		{"main category", func(r *dto.BatchCreateRequest) { r.SubCategoryId = a.main.Id; r.Version = "v2" }, http.StatusBadRequest},
		{"rule syntax", func(r *dto.BatchCreateRequest) { r.Meta.Rule.CodeRule = "{version"; r.Version = "v2" }, http.StatusBadRequest},
		{"missing version", func(r *dto.BatchCreateRequest) { r.Version = "" }, http.StatusBadRequest},
		{"no rows", func(r *dto.BatchCreateRequest) { r.Rows = nil; r.Version = "v2" }, http.StatusBadRequest},
		{"expired upload", func(r *dto.BatchCreateRequest) { r.UploadId = "gone"; r.Version = "v2" }, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := a.batchCreate("v21.1")
			tt.mutate(&req)
			resp := a.do(t, http.MethodPost, "/api/admin/policy/batch/create", req)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body := decode[any](t, resp)
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantStatus, body.Code)
		})
	}
}

func TestPolicyController_InvalidBatchReturnsReport(t *testing.T) {
	a := newTestApp(t)
	req := a.batchCreate("v21.1")
	req.Rows[1][3] = "HGMD Online, Clinical use for Academic"

	resp := a.do(t, http.MethodPost, "/api/admin/policy/batch/create", req)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	body := decode[dto.VerifyResponse](t, resp)
	assert.False(t, body.Success)
	assert.Equal(t, []interface{}{"D2"}, body.Errors)
	assert.Equal(t, map[string]interface{}{"total": float64(2), "valid": float64(1), "invalid": float64(1)}, body.Counts)
	assert.False(t, body.Data.Meta["D2"].IsValid)
	assert.Empty(t, a.store.Policies())
}

func TestPolicyController_VerifyBatch(t *testing.T) {
	a := newTestApp(t)
	rows := batchRows()
	rows[1][2] = "ISG-BBHO-XX-21.1"

	resp := a.do(t, http.MethodPost, "/api/admin/policy/batch/verify", dto.BatchVerifyRequest{Rows: rows, Meta: batchMeta(), Version: "v21.1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[dto.VerifyResponse](t, resp)
	assert.True(t, body.Success)
	assert.Equal(t, "1 of 2 rows are invalid", body.Message)
	assert.Equal(t, []interface{}{"C2"}, body.Errors)
	require.Len(t, body.Data.Results, 2)
	assert.False(t, body.Data.Results[1].Valid)
}

func TestPolicyController_TestBatchUpload(t *testing.T) {
	a := newTestApp(t)
	meta := batchMeta()
	wb := &spreadsheet.Workbook{
		Rule: meta.Rule,
		Code: meta.Code,
		Info: meta.Info,
		Rows: servicecode.RowsFromTable(batchRows(), servicecode.BatchLayout),
		RepresentativeCodes: map[string]string{
			"1": "ISG-BBHO",
			"2": "ISG-BBHO",
		},
	}
	var file bytes.Buffer
	_, err := wb.WriteTo(&file)
	require.NoError(t, err)

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "policy.xlsx")
	require.NoError(t, err)
	_, err = part.Write(file.Bytes())
	require.NoError(t, err)
	require.NoError(t, form.WriteField("version", "v21.1"))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/admin/policy/batch/test", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+a.token)
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	tested := decode[dto.BatchTestResponse](t, resp)
	assert.NotEmpty(t, tested.Data.UploadId)
	assert.Len(t, tested.Data.Rows, 2)
	assert.Equal(t, []string{"license_type", "license_policy"}, tested.Data.Meta.Code.Names())
	assert.Empty(t, tested.Errors)

	create := a.do(t, http.MethodPost, "/api/admin/policy/batch/create", dto.BatchCreateRequest{
		SubCategoryId: a.sub.Id,
		Version:       "v21.1",
		UploadId:      tested.Data.UploadId,
	})
	assert.Equal(t, http.StatusCreated, create.StatusCode)
}

func TestPolicyController_PolicyRoutes(t *testing.T) {
	a := newTestApp(t)
	created := decode[dto.CreatePolicyResponse](t, a.do(t, http.MethodPost, "/api/admin/policy/batch/create", a.batchCreate("v21.1")))
	base := "/api/admin/policies/" + created.Data.PolicyId.String()

	detail := decode[dto.PolicyResponse](t, a.do(t, http.MethodGet, base, nil))
	assert.Equal(t, "v21.1", detail.Data.Version)
	assert.True(t, detail.Data.IsActive)

	on := true
	updated := decode[dto.PolicyResponse](t, a.do(t, http.MethodPut, base, dto.UpdatePolicyRequest{IsActiveHomepage: &on}))
	assert.True(t, updated.Data.IsActiveHomepage)

	options := decode[[]dto.PriceOptionResponse](t, a.do(t, http.MethodGet, base+"/options?product_id="+a.product.Id.String(), nil))
	assert.Len(t, options.Data, 2)

	candidates := decode[dto.CandidateListResponse](t, a.do(t, http.MethodGet, base+"/candidates?limit=1&product_id="+a.product.Id.String(), nil))
	assert.Equal(t, 2, candidates.Data.Total)
	assert.Len(t, candidates.Data.Candidates, 1)

	resp := a.do(t, http.MethodGet, base+"/candidates", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	export := a.do(t, http.MethodGet, base+"/options/export", nil)
	require.Equal(t, http.StatusOK, export.StatusCode)
	assert.Equal(t, xlsxContentType, export.Header.Get("Content-Type"))
	assert.Contains(t, export.Header.Get("Content-Disposition"), "attachment")
	rows, err := spreadsheet.ReadOptions(export.Body)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	saved := a.do(t, http.MethodPost, base+"/services", dto.SaveServiceOptionsRequest{
		ProductId: a.product.Id,
		Rows:      [][]interface{}{{"1", "ISG-BBHO-ZZ-21.1", "HGMD Online", "N", "10"}},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, saved.StatusCode)
	report := decode[dto.VerifyResponse](t, saved)
	assert.Equal(t, []interface{}{"B1"}, report.Errors)

	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodGet, "/api/admin/policies/"+a.sub.Id.String(), nil).StatusCode)
	assert.Equal(t, http.StatusBadRequest, a.do(t, http.MethodGet, "/api/admin/policies/not-a-uuid", nil).StatusCode)
}

func TestCatalogController(t *testing.T) {
	a := newTestApp(t)

	resp := a.do(t, http.MethodPost, "/api/admin/categories", dto.CreateCategoryRequest{Name: "COSMIC", ParentId: a.main.Id})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.CategoryResponse](t, resp)
	assert.Equal(t, "License", created.Data.ParentName)

	resp = a.do(t, http.MethodPost, "/api/admin/categories", dto.CreateCategoryRequest{Name: "HGMD", ParentId: a.main.Id})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = a.do(t, http.MethodPost, "/api/admin/categories", map[string]string{"name": "X"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "parent_id is required", decode[any](t, resp).Message)

	subs := decode[[]dto.CategoryResponse](t, a.do(t, http.MethodGet, "/api/admin/categories/"+a.main.Id.String()+"/subcategories", nil))
	assert.Len(t, subs.Data, 2)

	assert.Equal(t, http.StatusConflict, a.do(t, http.MethodDelete, "/api/admin/categories/"+a.sub.Id.String(), nil).StatusCode)
	assert.Equal(t, http.StatusOK, a.do(t, http.MethodDelete, "/api/admin/categories/"+created.Data.Id.String(), nil).StatusCode)

	products := decode[dto.PageResponse[dto.ProductResponse]](t, a.do(t, http.MethodGet, "/api/admin/products?keyword=hgmd", nil))
	assert.Equal(t, int64(1), products.Data.Total)

	resp = a.do(t, http.MethodPost, "/api/admin/products", dto.CreateProductRequest{Name: "COSMIC", RepresentativeCode: "ISG-COS", CategoryId: a.main.Id})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSystemLogController(t *testing.T) {
	a := newTestApp(t)
	logs := decode[dto.PageResponse[dto.SystemLogResponse]](t, a.do(t, http.MethodGet, "/api/admin/system-logs?model=ServicePolicy", nil))
	assert.True(t, logs.Success)
	assert.Zero(t, logs.Data.Total)

	assert.Equal(t, http.StatusNotFound, a.do(t, http.MethodGet, "/api/admin/system-logs/"+a.sub.Id.String(), nil).StatusCode)
}

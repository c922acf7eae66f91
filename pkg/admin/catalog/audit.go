package catalog

import (
	"myinco-admin-be/internal/entity"
	"myinco-admin-be/pkg/audit"
)

const (
	CategoryAuditModel = "ProductCategory"
	ProductAuditModel  = "Product"
	AuditPageName      = "catalog"
)

var CategorySchema = audit.NewSchema(CategoryAuditModel,
	audit.Text("name", func(c entity.ProductCategory) string { return c.Name }),
	audit.Text("kind", func(c entity.ProductCategory) string { return string(c.Kind) }),
	audit.Text("parent", func(c entity.ProductCategory) string { return c.ParentName }),
)

var ProductSchema = audit.NewSchema(ProductAuditModel,
	audit.Text("name", func(p entity.Product) string { return p.Name }),
	audit.Text("representative_code", func(p entity.Product) string { return p.RepresentativeCode }),
	audit.Text("category", func(p entity.Product) string { return p.CategoryName }),
	audit.Flag("is_active", func(p entity.Product) bool { return p.IsActive }),
)

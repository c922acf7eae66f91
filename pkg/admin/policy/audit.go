package policy

import (
	"time"

	"myinco-admin-be/internal/entity"
	"myinco-admin-be/pkg/audit"
)

const (
	AuditModel    = "ServicePolicy"
	AuditPageName = "service_policy"
)

// AuditSchema lists the audited fields of a policy. Rules and timestamps are
// not editable after creation and are left out of update diffs.
var AuditSchema = audit.NewSchema(AuditModel,
	audit.Text("category", func(p entity.ServicePolicy) string { return p.CategoryName }),
	audit.Text("version", func(p entity.ServicePolicy) string { return p.Version }),
	audit.Text("desc_rule", func(p entity.ServicePolicy) string { return p.DescRule }),
	audit.Text("code_rule", func(p entity.ServicePolicy) string { return p.CodeRule }),
	audit.Text("code_transforms", func(p entity.ServicePolicy) string { return p.CodeTransforms.String() }),
	audit.Flag("is_active", func(p entity.ServicePolicy) bool { return p.IsActive }),
	audit.Flag("is_promotion", func(p entity.ServicePolicy) bool { return p.IsPromotion }),
	audit.Flag("is_active_homepage", func(p entity.ServicePolicy) bool { return p.IsActiveHomepage }),
	audit.Number("group_codes", func(p entity.ServicePolicy) int { return len(p.GroupCodes) }),
	audit.Timestamp("created_at", func(p entity.ServicePolicy) time.Time { return p.CreatedAt }),
	audit.Timestamp("updated_at", func(p entity.ServicePolicy) time.Time { return p.UpdatedAt }),
).Excluding("updated_at")

// FlagDiffSchema only reports flag changes.
var FlagDiffSchema = AuditSchema.Excluding("category", "version", "desc_rule", "code_rule", "code_transforms", "group_codes", "created_at")

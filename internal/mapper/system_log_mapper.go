package mapper

import (
	"encoding/json"

	"myinco-admin-be/internal/entity"
	"myinco-admin-be/internal/model"
	"myinco-admin-be/pkg/audit"
)

type SystemLogMapper struct{}

func NewSystemLogMapper() *SystemLogMapper {
	return &SystemLogMapper{}
}

func (m *SystemLogMapper) ToEntity(mdl *model.SystemLog) *entity.SystemLog {
	if mdl == nil {
		return nil
	}
	diff := []audit.Change{}
	if len(mdl.Diff) > 0 {
		// A malformed diff column is shown as empty rather than failing the listing.
		_ = json.Unmarshal(mdl.Diff, &diff)
	}
	return &entity.SystemLog{
		Id:              mdl.Id,
		Model:           mdl.Model,
		ModelIdentifier: mdl.ModelIdentifier,
		PageName:        mdl.PageName,
		URL:             mdl.URL,
		Method:          mdl.Method,
		UserId:          mdl.UserId,
		Diff:            diff,
		ExtraContent:    mdl.ExtraContent,
		StatusCode:      mdl.StatusCode,
		CreatedAt:       mdl.CreatedAt,
	}
}

func (m *SystemLogMapper) ToModel(e *entity.SystemLog) (*model.SystemLog, error) {
	diff := e.Diff
	if diff == nil {
		diff = []audit.Change{}
	}
	raw, err := json.Marshal(diff)
	if err != nil {
		return nil, err
	}
	return &model.SystemLog{
		Id:              e.Id,
		Model:           e.Model,
		ModelIdentifier: e.ModelIdentifier,
		PageName:        e.PageName,
		URL:             e.URL,
		Method:          e.Method,
		UserId:          e.UserId,
		Diff:            raw,
		ExtraContent:    e.ExtraContent,
		StatusCode:      e.StatusCode,
		CreatedAt:       e.CreatedAt,
	}, nil
}

func (m *SystemLogMapper) ToEntities(models []*model.SystemLog) []*entity.SystemLog {
	entities := make([]*entity.SystemLog, 0, len(models))
	for _, mdl := range models {
		entities = append(entities, m.ToEntity(mdl))
	}
	return entities
}

// FromRecord turns a bus record into an entity.
func (m *SystemLogMapper) FromRecord(rec audit.Record) *entity.SystemLog {
	return &entity.SystemLog{
		Model:           rec.Model,
		ModelIdentifier: rec.ModelIdentifier,
		PageName:        rec.PageName,
		URL:             rec.URL,
		Method:          rec.Method,
		UserId:          rec.UserId,
		Diff:            rec.Diff,
		ExtraContent:    rec.ExtraContent,
		StatusCode:      rec.StatusCode,
		CreatedAt:       rec.OccurredAt,
	}
}

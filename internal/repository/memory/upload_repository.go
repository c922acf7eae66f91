package memory

import (
	"time"

	"myinco-admin-be/pkg/spreadsheet"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// UploadRepository keeps parsed policy workbooks between the batch test and
// batch create calls.
type UploadRepository struct {
	cache *cache.Cache
}

func NewUploadRepository(ttl time.Duration) *UploadRepository {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &UploadRepository{
		cache: cache.New(ttl, 10*time.Minute),
	}
}

// Save stores wb and returns the id it can be fetched with.
func (r *UploadRepository) Save(wb *spreadsheet.Workbook) string {
	id := uuid.NewString()
	r.cache.Set(id, wb, cache.DefaultExpiration)
	return id
}

func (r *UploadRepository) Get(id string) (*spreadsheet.Workbook, bool) {
	if x, found := r.cache.Get(id); found {
		return x.(*spreadsheet.Workbook), true
	}
	return nil, false
}

func (r *UploadRepository) Delete(id string) {
	r.cache.Delete(id)
}

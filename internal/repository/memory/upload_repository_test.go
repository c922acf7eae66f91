package memory

import (
	"testing"
	"time"

	"myinco-admin-be/pkg/spreadsheet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadRepository(t *testing.T) {
	repo := NewUploadRepository(time.Minute)
	wb := &spreadsheet.Workbook{Rule: spreadsheet.Rule{DescRule: "{service_name}"}}

	id := repo.Save(wb)
	require.NotEmpty(t, id)

	got, ok := repo.Get(id)
	require.True(t, ok)
	assert.Same(t, wb, got)

	repo.Delete(id)
	_, ok = repo.Get(id)
	assert.False(t, ok)
}

func TestUploadRepository_Expires(t *testing.T) {
	repo := NewUploadRepository(20 * time.Millisecond)
	id := repo.Save(&spreadsheet.Workbook{})

	assert.Eventually(t, func() bool {
		_, ok := repo.Get(id)
		return !ok
	}, time.Second, 10*time.Millisecond)
}

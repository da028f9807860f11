package export

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"khidma/internal/models"
)

func TestBookingsToExcel(t *testing.T) {
	logger := zerolog.Nop()
	bookings := []models.Booking{
		{
			ID:       "b1",
			Date:     "2026-09-01",
			Status:   models.StatusPending,
			Service:  &models.TitledReference{Reference: models.Reference{ID: "s1", DisplayName: "Plumbing"}},
			Customer: &models.NamedReference{Reference: models.Reference{ID: "c1", DisplayName: "Jane"}},
		},
		{
			ID:     "b2",
			Date:   "2026-09-02",
			Status: models.StatusAccepted,
		},
	}

	path, err := BookingsToExcel(bookings, t.TempDir(), &logger)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Bookings")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"Booking ID", "Service", "Customer", "Date", "Status"}, rows[0])
	assert.Equal(t, []string{"b1", "Plumbing", "Jane", "2026-09-01", "pending"}, rows[1])
	// Bare references fall back to placeholder labels.
	assert.Equal(t, []string{"b2", "Unknown Service", "Unknown Customer", "2026-09-02", "accepted"}, rows[2])
}

func TestBookingsToExcelEmptyList(t *testing.T) {
	logger := zerolog.Nop()

	path, err := BookingsToExcel(nil, t.TempDir(), &logger)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Bookings")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"innkeeper/internal/api"
)

func TestHotelReports(t *testing.T) {
	reports := []api.HotelReport{
		{HotelID: 1, HotelName: "Seaview", City: "Lisbon", TotalBookings: 42, TotalRevenue: 12345.50, OccupancyRate: 81.5, AverageRating: 4.4},
		{HotelID: 2, HotelName: "Hillside", City: "Porto", TotalBookings: 7, TotalRevenue: 900, OccupancyRate: 12.0, AverageRating: 3.9},
	}

	var buf bytes.Buffer
	require.NoError(t, HotelReports(reports, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Hotel Reports")
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + 2 hotels

	assert.Equal(t, "Hotel", rows[0][1])
	assert.Equal(t, "Seaview", rows[1][1])
	assert.Equal(t, "Lisbon", rows[1][2])
	assert.Equal(t, "Hillside", rows[2][1])
}

func TestHotelReportsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HotelReports(nil, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Hotel Reports")
	require.NoError(t, err)
	require.Len(t, rows, 1)
}

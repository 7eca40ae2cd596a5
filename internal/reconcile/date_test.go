package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExcelSerialToEpochMs(t *testing.T) {
	// Serial 44927 is 2023-01-01 on the 1899-12-30 epoch.
	ms := ExcelSerialToEpochMs(44927)
	require.NotNil(t, ms)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli(), *ms)

	// Unix seconds magnitude passes through scaled to ms.
	ms = ExcelSerialToEpochMs(1700000000)
	require.NotNil(t, ms)
	assert.Equal(t, int64(1700000000000), *ms)

	// Unix milliseconds magnitude passes through unchanged.
	ms = ExcelSerialToEpochMs(1700000000000)
	require.NotNil(t, ms)
	assert.Equal(t, int64(1700000000000), *ms)

	// Outside every window.
	assert.Nil(t, ExcelSerialToEpochMs(150))
	assert.Nil(t, ExcelSerialToEpochMs(500000))
}

func TestParseDate_DayFirst(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{
			name:     "full date",
			input:    "15/03/2024",
			expected: time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local),
		},
		{
			name:     "short year with time",
			input:    "5/3/24 14:30",
			expected: time.Date(2024, 3, 5, 14, 30, 0, 0, time.Local),
		},
		{
			name:     "dotted with seconds",
			input:    "01.02.2023 08:05:30",
			expected: time.Date(2023, 2, 1, 8, 5, 30, 0, time.Local),
		},
		{
			name:     "dashed",
			input:    "31-12-2022",
			expected: time.Date(2022, 12, 31, 0, 0, 0, 0, time.Local),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := ParseDate(tt.input)
			require.NotNil(t, ms)
			assert.Equal(t, tt.expected.UnixMilli(), *ms)
		})
	}
}

func TestParseDate_Generic(t *testing.T) {
	ms := ParseDate("2024-03-15")
	require.NotNil(t, ms)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC).UnixMilli(), *ms)

	ms = ParseDate("2024-03-15T10:20:30Z")
	require.NotNil(t, ms)
	assert.Equal(t, time.Date(2024, 3, 15, 10, 20, 30, 0, time.UTC).UnixMilli(), *ms)
}

func TestParseDate_Numeric(t *testing.T) {
	// Numeric cells are tried as spreadsheet serials first.
	ms := ParseDate(float64(44927))
	require.NotNil(t, ms)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli(), *ms)

	// Numeric strings too.
	ms = ParseDate("44927")
	require.NotNil(t, ms)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli(), *ms)
}

func TestParseDate_Unparseable(t *testing.T) {
	assert.Nil(t, ParseDate(nil))
	assert.Nil(t, ParseDate(""))
	assert.Nil(t, ParseDate("   "))
	assert.Nil(t, ParseDate("amanhã de manhã"))
}

func TestFormatDateTime(t *testing.T) {
	assert.Equal(t, "15/03/2024 00:00", FormatDateTime("15/03/2024"))
	// Unparseable input falls back to the sanitized raw text.
	assert.Equal(t, "amanhã", FormatDateTime("  amanhã  "))
}

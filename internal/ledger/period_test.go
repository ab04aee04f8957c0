package ledger

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		key   string
		kind  PeriodKind
		start string
		end   string
	}{
		{"2024-05", PeriodMonth, "2024-05-01", "2024-05-31"},
		{"2024-02", PeriodMonth, "2024-02-01", "2024-02-29"},
		{"2023-02", PeriodMonth, "2023-02-01", "2023-02-28"},
		{"2024-Q2", PeriodQuarter, "2024-04-01", "2024-06-30"},
		{"2024-q4", PeriodQuarter, "2024-10-01", "2024-12-31"},
		{"2024", PeriodYear, "2024-01-01", "2024-12-31"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			p, err := ParsePeriod(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, p.Kind)
			assert.Equal(t, tt.start, p.Start.String())
			assert.Equal(t, tt.end, p.End.String())
		})
	}
}

func TestParsePeriod_Invalid(t *testing.T) {
	for _, key := range []string{"", "2024-13", "2024-00", "2024-Q5", "May 2024", "24-05"} {
		t.Run(key, func(t *testing.T) {
			_, err := ParsePeriod(key)
			assert.True(t, errors.Is(err, ErrInvalidPeriod))
		})
	}
}

func TestPeriodContainsIsInclusive(t *testing.T) {
	p := MonthPeriod(2024, time.May)
	assert.True(t, p.Contains(MustParseDate("2024-05-01")))
	assert.True(t, p.Contains(MustParseDate("2024-05-31")))
	assert.False(t, p.Contains(MustParseDate("2024-04-30")))
	assert.False(t, p.Contains(MustParseDate("2024-06-01")))
}

func TestPeriodMonths(t *testing.T) {
	q, err := QuarterPeriod(2024, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, q.Months())
	assert.Equal(t, 12, YearPeriod(2024).Months())
	assert.Equal(t, 1, MonthPeriod(2024, time.January).Months())
}

func TestRangePeriod(t *testing.T) {
	p, err := RangePeriod(MustParseDate("2024-05-10"), MustParseDate("2024-06-10"))
	require.NoError(t, err)
	assert.Equal(t, "2024-05-10..2024-06-10", p.Key)
	assert.True(t, p.Contains(MustParseDate("2024-06-10")))

	_, err = RangePeriod(MustParseDate("2024-06-10"), MustParseDate("2024-05-10"))
	assert.True(t, errors.Is(err, ErrInvalidPeriod))
	_, err = RangePeriod(Date{}, MustParseDate("2024-05-10"))
	assert.Error(t, err)
}

func TestDateJSON(t *testing.T) {
	var v struct {
		D Date `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"d":"2024-05-10"}`), &v))
	assert.Equal(t, "2024-05-10", v.D.String())
	assert.Equal(t, "2024-05", v.D.MonthKey())

	require.NoError(t, json.Unmarshal([]byte(`{"d":"2024-05-10T23:30:00+01:00"}`), &v))
	assert.Equal(t, "2024-05-10", v.D.String())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2024-05-10"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"d":"10/05/2024"}`), &v))
	assert.Error(t, json.Unmarshal([]byte(`{"d":20240510}`), &v))

	require.NoError(t, json.Unmarshal([]byte(`{"d":""}`), &v))
	assert.True(t, v.D.IsZero())
}

func TestFiscalPeriod(t *testing.T) {
	fp := OpenPeriod(2024)
	assert.False(t, fp.IsClosed())
	fp.Status = PeriodClosed
	assert.True(t, fp.IsClosed())
}

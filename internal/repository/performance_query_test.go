package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gig-booking/internal/database"
)

func TestCountActiveQueryLocksOnMySQL(t *testing.T) {
	mysql, err := database.DialectFor(database.DriverMySQL)
	require.NoError(t, err)
	q := NewPerformanceRepo(nil, mysql).countActiveQuery()
	assert.True(t, strings.HasSuffix(q, " FOR UPDATE"), q)

	sqlite, err := database.DialectFor(database.DriverSQLite)
	require.NoError(t, err)
	q = NewPerformanceRepo(nil, sqlite).countActiveQuery()
	assert.NotContains(t, q, "FOR UPDATE")
}

type fakeRow []any

func (r fakeRow) Scan(dest ...any) error {
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r[i].(string)
		case *int64:
			*p = r[i].(int64)
		default:
			// sql.NullString columns are left NULL.
		}
	}
	return nil
}

func TestScanPerformanceRejectsUnknownStatus(t *testing.T) {
	row := fakeRow{"p1", "e1", "a1", nil, nil, int64(0), "v1", "archived", nil, int64(0), int64(0)}
	_, err := scanPerformance(row)
	assert.ErrorContains(t, err, `unknown status "archived"`)

	row[7] = "confirmed"
	p, err := scanPerformance(row)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", string(p.Status))
}

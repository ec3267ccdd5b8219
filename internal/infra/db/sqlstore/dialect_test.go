package sqlstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRebind(t *testing.T) {
	q := "SELECT * FROM models WHERE id=? AND status=?"
	assert.Equal(t, q, MySQL.rebind(q))
	assert.Equal(t, q, SQLite.rebind(q))
	assert.Equal(t, "SELECT * FROM models WHERE id=$1 AND status=$2", Postgres.rebind(q))
}

func TestTimeArg(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 6000, time.FixedZone("WIB", 7*3600))
	assert.Equal(t, "2024-01-01T20:04:05.000006Z", SQLite.timeArg(ts))
	assert.Equal(t, ts.UTC(), Postgres.timeArg(ts))
}

func TestTimeScan(t *testing.T) {
	want := time.Date(2024, 1, 2, 3, 4, 5, 6000, time.UTC)
	inputs := []any{
		"2024-01-02T03:04:05.000006Z",
		[]byte("2024-01-02T03:04:05.000006Z"),
		"2024-01-02 10:04:05.000006+07:00",
		want.In(time.FixedZone("X", 3600)),
	}
	for _, in := range inputs {
		var got time.Time
		require.NoError(t, timeScan{&got}.Scan(in), "%v", in)
		assert.True(t, want.Equal(got), "%v -> %v", in, got)
		assert.Equal(t, time.UTC, got.Location())
	}

	var got time.Time
	assert.Error(t, timeScan{&got}.Scan(nil))
	assert.Error(t, timeScan{&got}.Scan("yesterday"))
	assert.Error(t, timeScan{&got}.Scan(42))
}

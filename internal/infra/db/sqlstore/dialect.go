// Package sqlstore implements the entity repositories on database/sql.
// The same queries serve MySQL, PostgreSQL and SQLite; a Dialect carries
// the differences.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Dialect describes how one database engine differs from the portable SQL.
type Dialect struct {
	Name string
	// Numbered rewrites ? placeholders into $1, $2, ...
	Numbered bool
	// Returning fetches generated ids with RETURNING instead of LastInsertId.
	Returning bool
	// Lock is appended to the row read inside an update transaction.
	Lock string
	// TextTime stores timestamps as fixed-width UTC text.
	TextTime bool
}

var (
	MySQL    = Dialect{Name: "mysql", Lock: " FOR UPDATE"}
	Postgres = Dialect{Name: "postgres", Numbered: true, Returning: true, Lock: " FOR UPDATE"}
	SQLite   = Dialect{Name: "sqlite", TextTime: true}
)

const textTimeLayout = "2006-01-02T15:04:05.000000Z"

func (d Dialect) rebind(q string) string {
	if !d.Numbered {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d Dialect) timeArg(t time.Time) any {
	if d.TextTime {
		return t.UTC().Format(textTimeLayout)
	}
	return t.UTC()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// insert runs q and returns the generated id.
func (d Dialect) insert(ctx context.Context, db execer, q string, args ...any) (int64, error) {
	if d.Returning {
		var id int64
		if err := db.QueryRowContext(ctx, d.rebind(q+" RETURNING id"), args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
	res, err := db.ExecContext(ctx, d.rebind(q), args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// timeScan reads a timestamp from whatever the driver hands back.
type timeScan struct{ t *time.Time }

var timeLayouts = []string{
	textTimeLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

func (s timeScan) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*s.t = v.UTC()
		return nil
	case []byte:
		return s.parse(string(v))
	case string:
		return s.parse(v)
	case nil:
		return fmt.Errorf("sqlstore: unexpected NULL timestamp")
	}
	return fmt.Errorf("sqlstore: unsupported timestamp type %T", src)
}

func (s timeScan) parse(v string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			*s.t = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("sqlstore: cannot parse timestamp %q", v)
}

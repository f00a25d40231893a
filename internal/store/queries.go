package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// QueryInsert is the flattened, string-resolved form of a core.Record ready
// to mirror into SQL. The GC resolves every interned handle to its string
// before calling InsertRecord, keeping this package free of a dependency on
// internal/core's handle arithmetic.
type QueryInsert struct {
	ID            int64
	Timestamp     float64
	Type          string
	Status        string
	Domain        string
	Client        string
	ClientName    string
	Upstream      string
	ReplyType     string
	ReplyTimeMs   float64
	HasReply      bool
	DNSSEC        string
	TTL           int32
	RegexID       int32
	AdditionalInfo []byte
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// InsertRecord mirrors one query into the in-memory database, matching the
// explicit id assigned by the ring so that mem and disk ids stay consistent
// across a flush.
func (s *Store) InsertRecord(ctx context.Context, q QueryInsert) error {
	return insertInto(ctx, s.mem, "queries", q)
}

// InsertRecordDisk mirrors one query into the attached disk database's
// queries table, for the coarser §4.5 tier that the garbage collector
// drives as it evicts records from the ring. Must be called from inside a
// WithDisk callback so "disk" is attached on conn.
func (s *Store) InsertRecordDisk(ctx context.Context, conn *sql.Conn, q QueryInsert) error {
	return insertInto(ctx, conn, "disk.queries", q)
}

func insertInto(ctx context.Context, exec execer, table string, q QueryInsert) error {
	var replyType, dnssec interface{}
	var replyTimeMs interface{}
	var ttl interface{}
	var regexID interface{}
	if q.HasReply {
		replyType = q.ReplyType
		replyTimeMs = q.ReplyTimeMs
		dnssec = q.DNSSEC
		ttl = q.TTL
	}
	if q.RegexID >= 0 {
		regexID = q.RegexID
	}

	_, err := exec.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, timestamp, type, status, domain, client, client_name,
			upstream, reply_type, reply_time_ms, dnssec, ttl, regex_id, additional_info)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			upstream = excluded.upstream,
			reply_type = excluded.reply_type,
			reply_time_ms = excluded.reply_time_ms,
			dnssec = excluded.dnssec,
			ttl = excluded.ttl,
			regex_id = excluded.regex_id,
			additional_info = excluded.additional_info
	`, table), q.ID, q.Timestamp, q.Type, q.Status, q.Domain, q.Client, nullIfEmpty(q.ClientName),
		nullIfEmpty(q.Upstream), replyType, replyTimeMs, dnssec, ttl, regexID, q.AdditionalInfo)
	return err
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// QueryFilter narrows a ListQueries call. Zero values mean "no filter" for
// every field except Length, which defaults to 100 when nil, per §4.9.
type QueryFilter struct {
	Domain   string
	Client   string
	Type     string
	Status   string
	Upstream string
	Reply    string
	DNSSEC   string

	// From/Until bound the query's timestamp (epoch seconds, possibly
	// fractional), both inclusive. Nil means unbounded on that side.
	From  *float64
	Until *float64

	// Cursor is the largest query id the caller wants to see; nil means
	// "start from the newest query", matching queries.c's largest_db_index
	// default.
	Cursor *int64
	Start  int

	// Length is the max rows to return. nil defaults to 100; -1 (or any
	// negative value) streams every matching row; 0 returns none, per
	// §4.9 step 3 and §8's boundary cases.
	Length *int

	// FromDisk, when true, unions in the attached "disk" schema's queries
	// table. The caller must invoke ListQueries from inside a WithDisk
	// callback when this is set.
	FromDisk bool
}

// QueryRow is one row of a query-log page.
type QueryRow struct {
	ID          int64
	Timestamp   float64
	Type        string
	Status      string
	Domain      string
	Client      string
	ClientName  string
	Upstream    string
	ReplyType   string
	ReplyTimeMs float64
	DNSSEC      string
	TTL         int32
	RegexID     int32
}

// QueryPage is the full response shape for GET /api/queries, mirroring
// api_queries()'s JSON: the page of records, the cursor to pass on the next
// request, and the unfiltered/filtered totals.
type QueryPage struct {
	Queries         []QueryRow
	Cursor          int64
	RecordsTotal    int64
	RecordsFiltered int64
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// ErrCursorTooHigh is returned when the caller's cursor is past
// largest_db_index, per §4.9 step 1 ("cursor one past returns 400").
var ErrCursorTooHigh = errors.New("cursor exceeds largest known query id")

// ListQueries implements the pagination algorithm from api_queries(): the
// cursor defaults to the largest known id; rows with id above the cursor
// are skipped (they are "ahead" of the page the client is paging through);
// of the remaining rows newest-first, `start` are skipped and up to
// `length` are returned (length < 0 streams every matching row, length ==
// 0 returns none). The response cursor echoes the request cursor when one
// was supplied, or the id of the first row returned otherwise, so repeated
// polls with no cursor always pick up newer queries automatically.
func (s *Store) ListQueries(ctx context.Context, conn querier, f QueryFilter) (QueryPage, error) {
	table := "queries"
	if f.FromDisk {
		table = "(SELECT * FROM queries UNION ALL SELECT * FROM disk.queries)"
	}

	where, args := buildWhere(f)

	totalQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
	var total int64
	if err := conn.QueryRowContext(ctx, totalQuery).Scan(&total); err != nil {
		return QueryPage{}, fmt.Errorf("count total: %w", err)
	}

	largest := total // fallback when the table is empty
	if err := conn.QueryRowContext(ctx, fmt.Sprintf("SELECT COALESCE(MAX(id), 0) FROM %s", table)).Scan(&largest); err != nil {
		return QueryPage{}, fmt.Errorf("find largest id: %w", err)
	}

	cursorSet := f.Cursor != nil
	cursor := largest
	if cursorSet {
		cursor = *f.Cursor
		if cursor > largest {
			return QueryPage{}, ErrCursorTooHigh
		}
	}

	length := 100
	if f.Length != nil {
		length = *f.Length
	}
	if length < 0 {
		length = -1 // SQLite treats any negative LIMIT as "no limit"
	}

	filteredWhere := where
	filteredArgs := append([]interface{}{cursor}, args...)
	filteredQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE id <= ?%s", table, filteredWhere)
	var filtered int64
	if err := conn.QueryRowContext(ctx, filteredQuery, filteredArgs...).Scan(&filtered); err != nil {
		return QueryPage{}, fmt.Errorf("count filtered: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT id, timestamp, type, status, domain, client,
		       COALESCE(client_name, ''), COALESCE(upstream, ''),
		       COALESCE(reply_type, ''), COALESCE(reply_time_ms, 0),
		       COALESCE(dnssec, ''), COALESCE(ttl, 0), COALESCE(regex_id, -1)
		FROM %s
		WHERE id <= ?%s
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`, table, filteredWhere)
	rows, err := conn.QueryContext(ctx, selectQuery, append(append([]interface{}{cursor}, args...), length, f.Start)...)
	if err != nil {
		return QueryPage{}, fmt.Errorf("select page: %w", err)
	}
	defer rows.Close()

	page := QueryPage{RecordsTotal: total, RecordsFiltered: filtered, Cursor: cursor}
	for rows.Next() {
		var r QueryRow
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.Type, &r.Status, &r.Domain, &r.Client,
			&r.ClientName, &r.Upstream, &r.ReplyType, &r.ReplyTimeMs, &r.DNSSEC, &r.TTL, &r.RegexID); err != nil {
			return QueryPage{}, fmt.Errorf("scan row: %w", err)
		}
		page.Queries = append(page.Queries, r)
	}
	if err := rows.Err(); err != nil {
		return QueryPage{}, err
	}

	if !cursorSet && len(page.Queries) > 0 {
		page.Cursor = page.Queries[0].ID
	}

	return page, nil
}

func buildWhere(f QueryFilter) (string, []interface{}) {
	var b strings.Builder
	var args []interface{}

	add := func(col, val string) {
		if val == "" {
			return
		}
		b.WriteString(fmt.Sprintf(" AND %s = ?", col))
		args = append(args, val)
	}
	add("domain", f.Domain)
	add("client", f.Client)
	add("reply_type", f.Reply)
	add("dnssec", f.DNSSEC)
	if f.From != nil {
		b.WriteString(" AND timestamp >= ?")
		args = append(args, *f.From)
	}
	if f.Until != nil {
		b.WriteString(" AND timestamp <= ?")
		args = append(args, *f.Until)
	}
	add("type", f.Type)
	add("status", f.Status)
	add("upstream", f.Upstream)

	return b.String(), args
}

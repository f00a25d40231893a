package store

import "context"

// Suggestions is the payload for the query-log filter-suggestions endpoint:
// lists of distinct domains/clients/upstreams seen so far, for populating
// autocomplete dropdowns. Grounded on api_queries_suggestions's parallel
// lookups (domain_by_id, client_by_id by ip and by name, forward_by_id); the
// static type/status/reply/dnssec enumerations are not part of this struct
// and are added by the API handler.
type Suggestions struct {
	Domains   []string
	Clients   []string
	Upstreams []string
}

// QuerySuggestions returns up to count distinct domains, count/2 distinct
// client IPs plus count/2 distinct client names (deduplicated into one
// list), and count distinct upstreams, mirroring the SQL the original
// handler issues against its domain_by_id/client_by_id/forward_by_id
// tables.
func (s *Store) QuerySuggestions(ctx context.Context, count int) (Suggestions, error) {
	if count <= 0 {
		count = 10
	}

	domains, err := s.distinctStrings(ctx, "SELECT DISTINCT domain FROM domain_by_id LIMIT ?", count)
	if err != nil {
		return Suggestions{}, err
	}

	half := count / 2
	if half < 1 {
		half = 1
	}
	clientIPs, err := s.distinctStrings(ctx, "SELECT DISTINCT ip FROM client_by_id LIMIT ?", half)
	if err != nil {
		return Suggestions{}, err
	}
	clientNames, err := s.distinctStrings(ctx, "SELECT DISTINCT name FROM client_by_id WHERE name IS NOT NULL LIMIT ?", half)
	if err != nil {
		return Suggestions{}, err
	}

	upstreams, err := s.distinctStrings(ctx, "SELECT DISTINCT upstream FROM forward_by_id LIMIT ?", count)
	if err != nil {
		return Suggestions{}, err
	}

	clients := clientIPs
	seen := make(map[string]bool, len(clientIPs)+len(clientNames))
	for _, ip := range clientIPs {
		seen[ip] = true
	}
	for _, name := range clientNames {
		if !seen[name] {
			seen[name] = true
			clients = append(clients, name)
		}
	}

	return Suggestions{
		Domains:   domains,
		Clients:   clients,
		Upstreams: upstreams,
	}, nil
}

func (s *Store) distinctStrings(ctx context.Context, query string, limit int) ([]string, error) {
	rows, err := s.mem.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// UpsertDictionaries maintains the domain_by_id/client_by_id/forward_by_id
// lookup tables used by QuerySuggestions, inserting the given domain,
// client (with its optional name) and upstream. Empty arguments are
// skipped. The query-ingestion path does not call it; the tables hold only
// what callers of this method have added.
func (s *Store) UpsertDictionaries(ctx context.Context, domain, clientIP, clientName, upstream string) error {
	if domain != "" {
		if _, err := s.mem.ExecContext(ctx, "INSERT OR IGNORE INTO domain_by_id (domain) VALUES (?)", domain); err != nil {
			return err
		}
	}
	if clientIP != "" {
		if _, err := s.mem.ExecContext(ctx,
			"INSERT INTO client_by_id (ip, name) VALUES (?, ?) ON CONFLICT(ip) DO UPDATE SET name = excluded.name",
			clientIP, nullIfEmpty(clientName)); err != nil {
			return err
		}
	}
	if upstream != "" {
		if _, err := s.mem.ExecContext(ctx, "INSERT OR IGNORE INTO forward_by_id (upstream) VALUES (?)", upstream); err != nil {
			return err
		}
	}
	return nil
}

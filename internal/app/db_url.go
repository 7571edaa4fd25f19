package app

import (
	"net/url"
	"path"
	"strings"

	"github.com/riskibarqy/fpl-creator-match/internal/config"
)

var sqlitePragmas = []string{"busy_timeout(5000)", "journal_mode(WAL)", "foreign_keys(1)"}

// normalizeDBURL fills driver defaults the store relies on without touching
// values the operator set explicitly.
func normalizeDBURL(driver, raw, applicationName string) string {
	switch driver {
	case config.DriverSQLite:
		return normalizeSQLiteURL(raw)
	case config.DriverPostgres:
		return normalizePostgresURL(raw, applicationName)
	default:
		return raw
	}
}

func normalizePostgresURL(raw, applicationName string) string {
	applicationName = strings.TrimSpace(applicationName)
	if applicationName == "" {
		return raw
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed == nil || parsed.Scheme == "" {
		return raw
	}

	query := parsed.Query()
	if query.Get("application_name") == "" && query.Get("fallback_application_name") == "" {
		query.Set("fallback_application_name", applicationName)
		parsed.RawQuery = query.Encode()
	}

	return parsed.String()
}

func normalizeSQLiteURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || strings.Contains(trimmed, ":memory:") || strings.Contains(trimmed, "mode=memory") {
		return raw
	}

	base, rawQuery, _ := strings.Cut(trimmed, "?")
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return raw
	}

	present := make(map[string]struct{}, len(query["_pragma"]))
	for _, pragma := range query["_pragma"] {
		name, _, _ := strings.Cut(pragma, "(")
		present[strings.ToLower(strings.TrimSpace(name))] = struct{}{}
	}
	changed := false
	for _, pragma := range sqlitePragmas {
		name, _, _ := strings.Cut(pragma, "(")
		if _, ok := present[name]; ok {
			continue
		}
		query.Add("_pragma", pragma)
		changed = true
	}
	if !changed {
		return raw
	}

	return base + "?" + query.Encode()
}

func dbNameFromURL(driver, raw string) string {
	trimmed := strings.TrimSpace(raw)
	if driver == config.DriverSQLite {
		file, _, _ := strings.Cut(strings.TrimPrefix(trimmed, "file:"), "?")
		if file == "" || file == ":memory:" {
			return "memory"
		}
		return strings.TrimSuffix(path.Base(file), path.Ext(file))
	}

	parsed, err := url.Parse(trimmed)
	if err == nil && parsed != nil && parsed.Scheme != "" {
		name := strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
		if name != "" {
			return name
		}
	}

	for _, token := range strings.Fields(trimmed) {
		if !strings.HasPrefix(token, "dbname=") {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(token, "dbname="))
		name = strings.Trim(name, `"'`)
		if name != "" {
			return name
		}
	}

	return ""
}

package sqlite

import (
	"database/sql/driver"
	"strings"

	msqlite "modernc.org/sqlite"
)

// containsFold is the SQL name of a Unicode aware, case-insensitive substring
// test. SQLite's LIKE only folds ASCII letters.
const containsFold = "contains_fold"

func init() {
	msqlite.MustRegisterDeterministicScalarFunction(containsFold, 2, func(_ *msqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		haystack, ok1 := textArg(args[0])
		needle, ok2 := textArg(args[1])
		if !ok1 || !ok2 {
			return nil, nil
		}
		if strings.Contains(strings.ToLower(haystack), strings.ToLower(needle)) {
			return int64(1), nil
		}
		return int64(0), nil
	})
}

func textArg(v driver.Value) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case []byte:
		return string(s), true
	default:
		return "", false
	}
}

package sqlite

import (
	"database/sql/driver"
	"strings"

	sqlite "modernc.org/sqlite"
)

// foldFunc lower-cases text with Unicode rules. The built-in LOWER and LIKE fold ASCII only.
const foldFunc = "mb_fold"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(foldFunc, 1, fold)
}

func fold(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case nil:
		return nil, nil
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

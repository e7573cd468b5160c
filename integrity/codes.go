package integrity

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// PostgreSQL SQLSTATE codes (class 23, integrity constraint violation)
const (
	pgRestrictViolation   = "23001"
	pgNotNullViolation    = "23502"
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
	pgExclusionViolation  = "23P01"
	pgIntegrityClass      = "23"
)

// MySQL error numbers for constraint violations
const (
	mysqlDupKey              = 1022
	mysqlBadNull             = 1048
	mysqlDuplicateEntry      = 1062
	mysqlDupUnique           = 1169
	mysqlNoReferencedRow     = 1216
	mysqlRowIsReferenced     = 1217
	mysqlRowIsReferenced2    = 1451 // Cannot delete or update a parent row
	mysqlNoReferencedRow2    = 1452 // Cannot add or update a child row
	mysqlForeignDuplicateKey = 1557
	mysqlDupEntryWithKeyName = 1586
	mysqlCheckConstraint     = 3819
)

// Detect reports the bucket of a storage constraint violation. The second
// result is false for every error that is not a constraint violation.
func Detect(err error) (Bucket, bool) {
	if err == nil {
		return Default, false
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return postgresBucket(string(pqErr.Code))
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return mysqlBucket(myErr.Number)
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return sqliteBucket(liteErr)
	}

	return Default, false
}

func postgresBucket(code string) (Bucket, bool) {
	switch code {
	case pgRestrictViolation:
		return Restrict, true
	case pgNotNullViolation:
		return NotNull, true
	case pgForeignKeyViolation:
		return ForeignKey, true
	case pgUniqueViolation:
		return Unique, true
	case pgCheckViolation:
		return Check, true
	case pgExclusionViolation:
		return Exclusion, true
	}
	if strings.HasPrefix(code, pgIntegrityClass) {
		return Default, true
	}
	return Default, false
}

func mysqlBucket(number uint16) (Bucket, bool) {
	switch number {
	case mysqlDuplicateEntry:
		return Unique, true
	case mysqlRowIsReferenced, mysqlRowIsReferenced2, mysqlNoReferencedRow, mysqlNoReferencedRow2:
		return ForeignKey, true
	case mysqlBadNull:
		return NotNull, true
	case mysqlCheckConstraint:
		return Check, true
	case mysqlDupKey, mysqlDupUnique, mysqlForeignDuplicateKey, mysqlDupEntryWithKeyName:
		return Default, true
	}
	return Default, false
}

func sqliteBucket(err sqlite3.Error) (Bucket, bool) {
	if err.Code != sqlite3.ErrConstraint {
		return Default, false
	}
	switch err.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return Unique, true
	case sqlite3.ErrConstraintForeignKey:
		return ForeignKey, true
	case sqlite3.ErrConstraintNotNull:
		return NotNull, true
	case sqlite3.ErrConstraintCheck:
		return Check, true
	}
	return Default, true
}

// message renders the driver message, with the PostgreSQL detail line
// when there is one
func message(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Detail != "" {
			return pqErr.Message + ": " + pqErr.Detail
		}
		return pqErr.Message
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Message
	}

	return err.Error()
}

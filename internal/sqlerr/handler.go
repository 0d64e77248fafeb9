package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/kelvin262292/storefront/internal/errs"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

var constraintColumnRe = regexp.MustCompile(`_([^_]+)_(?:key|ukey)$`)

// IsUniqueViolation reports whether err is a unique constraint failure from
// either the pgx driver or a dialector with error translation on.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgerr *pgconn.PgError
	return errors.As(err, &pgerr) && MapCode(pgerr.Code) == UniqueViolation
}

// ErrCode returns the Code of the first *Error in err's chain, or Other.
func ErrCode(err error) Code {
	var pgerr *Error
	if errors.As(err, &pgerr) {
		return pgerr.Code
	}
	return Other
}

// ConvertPgError normalises a server error reported by pgx.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// violation describes how a constraint failure is reported to clients.
type violation struct {
	suffix  string
	status  int
	message func(e *Error) string
}

var violations = map[Code]violation{
	ForeignKeyViolation: {
		suffix: "NOT_FOUND",
		status: http.StatusBadRequest,
		message: func(e *Error) string {
			return fmt.Sprintf("The referenced %s does not exist", entityOf(e))
		},
	},
	UniqueViolation: {
		suffix: "ALREADY_EXISTS",
		status: http.StatusConflict,
		message: func(e *Error) string {
			field := "identifier"
			if column := uniqueColumn(e.ConstraintName); column != "" {
				field = humanize(column)
			}
			return fmt.Sprintf("A %s with this %s already exists", entityOf(e), field)
		},
	},
	NotNullViolation: {
		suffix: "REQUIRED",
		status: http.StatusBadRequest,
		message: func(e *Error) string {
			field := humanize(e.ColumnName)
			if field == "" {
				field = "field"
			}
			return fmt.Sprintf("The %s is required", field)
		},
	},
	CheckViolation: {
		suffix: "INVALID",
		status: http.StatusBadRequest,
		message: func(e *Error) string {
			if field := humanize(e.ColumnName); field != "" {
				return fmt.Sprintf("The %s value does not meet required conditions", field)
			}
			return "One or more values do not meet required conditions"
		},
	},
}

// fromPgError renders a constraint failure. Codes look like
// PRODUCT_ALREADY_EXISTS, named after the table that rejected the write.
func fromPgError(src *pgconn.PgError) *errs.HTTPError {
	e := ConvertPgError(src)
	v, ok := violations[e.Code]
	if !ok {
		return errs.NewInternalServerError()
	}

	domain := "RECORD"
	if e.TableName != "" {
		domain = strings.ToUpper(singular(e.TableName))
	}
	code := domain + "_" + v.suffix
	message := v.message(e)

	switch v.status {
	case http.StatusConflict:
		return errs.NewConflictError(message, &code, nil)
	default:
		var fields []errs.FieldError
		if e.Code == NotNullViolation {
			fields = []errs.FieldError{{Field: strings.ToLower(e.ColumnName), Error: "is required"}}
		}
		return errs.NewBadRequestError(message, e.Code != ForeignKeyViolation, &code, fields, nil)
	}
}

// entityOf prefers the entity an *_id column points at, then the table.
func entityOf(e *Error) string {
	column := strings.ToLower(e.ColumnName)
	if strings.HasSuffix(column, "_id") {
		return humanize(strings.TrimSuffix(column, "_id"))
	}
	if e.TableName != "" {
		return humanize(singular(e.TableName))
	}
	return "record"
}

// singular handles the table names this schema actually uses.
func singular(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, "ies"):
		return name[:len(name)-3] + "y"
	case strings.HasSuffix(lower, "s") && len(name) > 1:
		return name[:len(name)-1]
	default:
		return name
	}
}

func humanize(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

// uniqueColumn reads the column from "unique_<table>_<column>" or the
// PostgreSQL default "<table>_<column>_key".
func uniqueColumn(constraint string) string {
	if rest, ok := strings.CutPrefix(constraint, "unique_"); ok {
		if i := strings.LastIndex(rest, "_"); i >= 0 {
			return rest[i+1:]
		}
	}
	if m := constraintColumnRe.FindStringSubmatch(constraint); len(m) > 1 {
		return m[1]
	}
	return ""
}

// NotFound is the 404 repositories return for a missing entity.
func NotFound(entity string) *errs.HTTPError {
	code := strings.ToUpper(entity) + "_NOT_FOUND"
	return errs.NewNotFoundError(humanize(entity)+" not found", true, &code)
}

// HandleError converts a database error into an *errs.HTTPError. HTTP
// errors pass through unchanged.
func HandleError(err error) error {
	if err == nil {
		return nil
	}

	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return fromPgError(pgerr)
	}

	// Translated errors from dialectors that do not expose driver details.
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errs.NewConflictError("A record with this identifier already exists", errs.Code("RECORD_ALREADY_EXISTS"), nil)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return errs.NewBadRequestError("The referenced record does not exist", false, errs.Code("RECORD_NOT_FOUND"), nil, nil)
	case errors.Is(err, gorm.ErrCheckConstraintViolated):
		return errs.NewBadRequestError("One or more values do not meet required conditions", true, errs.Code("RECORD_INVALID"), nil, nil)
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, pgx.ErrNoRows), errors.Is(err, sql.ErrNoRows):
		return errs.NewNotFoundError("Resource not found", false, nil)
	}

	return errs.NewInternalServerError()
}

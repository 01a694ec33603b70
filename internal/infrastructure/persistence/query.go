package persistence

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ResolveSortColumn maps a requested sort field to a column through the
// whitelist. Returns defaultColumn for empty or unknown fields.
func ResolveSortColumn(sortField string, allowed map[string]string, defaultColumn string) string {
	if column, ok := allowed[strings.TrimSpace(sortField)]; ok {
		return column
	}
	return defaultColumn
}

// UserSortFields maps accepted sort fields to user columns
var UserSortFields = map[string]string{
	"created_at":    "created_at",
	"updated_at":    "updated_at",
	"email":         "email",
	"name":          "name",
	"status":        "status",
	"last_login_at": "last_login_at",
}

// ValuatorSortFields maps accepted sort fields to valuator columns
var ValuatorSortFields = map[string]string{
	"code":       "code",
	"name":       "name",
	"created_at": "created_at",
}

// OrderSortFields maps accepted sort fields, English or Lithuanian, to order columns
var OrderSortFields = map[string]string{
	"created_at": "sukurta",
	"sukurta":    "sukurta",
	"updated_at": "atnaujinta",
	"atnaujinta": "atnaujinta",
	"numeris":    "numeris",
	"statusas":   "statusas",
	"kaina":      "kaina",
	"priskirta":  "priskirta",
	"paslauga":   "paslauga",
	"atlikta_at": "atlikta_at",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a lowercase LIKE pattern matching term anywhere
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(term))) + "%"
}

// searchAny adds a case-insensitive substring match over the columns
func searchAny(query *gorm.DB, term string, columns ...string) *gorm.DB {
	if strings.TrimSpace(term) == "" || len(columns) == 0 {
		return query
	}
	pattern := containsPattern(term)
	clauses := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		clauses[i] = "LOWER(" + col + `) LIKE ? ESCAPE '\'`
		args[i] = pattern
	}
	return query.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

// isDuplicateKey reports whether err is a unique constraint violation
func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// notFoundOr maps gorm.ErrRecordNotFound to notFound
func notFoundOr(err, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}

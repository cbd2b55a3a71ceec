// internal/common/utils/params.go
// Path and query parameter helpers for mux handlers

package utils

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

// PathInt64 parses a positive int64 mux path variable
func PathInt64(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// QueryInt returns the integer query value or the default when absent or malformed
func QueryInt(r *http.Request, name string, defaultValue int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

// QueryBool returns the boolean query value or the default when absent or malformed
func QueryBool(r *http.Request, name string, defaultValue bool) bool {
	if v := r.URL.Query().Get(name); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

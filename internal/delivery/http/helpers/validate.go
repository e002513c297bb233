package helpers

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Validator is implemented by request bodies that can validate (and
// normalize) themselves. A non-empty return lists the problems found.
type Validator interface {
	Validate() []string
}

// DecodeAndValidate decodes the JSON body into dst and runs its validation
// when dst implements Validator. On failure it writes a bad_request response
// and returns false; the handler should return immediately.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return false
	}
	if v, ok := dst.(Validator); ok {
		if problems := v.Validate(); len(problems) > 0 {
			WriteJSONError(w, http.StatusBadRequest, ErrCodeBadRequest, strings.Join(problems, "; "))
			return false
		}
	}
	return true
}

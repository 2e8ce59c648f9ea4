package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"budgetplanner/internal/core"
)

// maxBodyBytes caps request bodies. Every payload of this API is a handful
// of short fields.
const maxBodyBytes = 1 << 20

var errBadBody = core.Invalid("invalid JSON request body")

// decodeJSON reads a single JSON object from the request body into dst.
// An empty body decodes as {}.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return core.Invalid("request body too large")
		}
		return fmt.Errorf("read request body: %w", err)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		if core.KindOf(err) == core.KindValidation {
			return err
		}
		return errBadBody
	}
	return nil
}

// pathID parses a positive integer path parameter such as {id}.
func pathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, core.Invalid(fmt.Sprintf("invalid %s %q", name, raw))
	}
	return id, nil
}

// flexDecimal accepts an amount written as a JSON number or string. Strings
// may use a comma as decimal separator. null and "" leave it unset.
type flexDecimal struct {
	value *decimal.Decimal
}

func (f *flexDecimal) UnmarshalJSON(b []byte) error {
	f.value = nil
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return core.Invalid(fmt.Sprintf("invalid number %q", s))
	}
	f.value = &d
	return nil
}

// Ptr returns the parsed value, or nil when the field was absent.
func (f flexDecimal) Ptr() *decimal.Decimal {
	return f.value
}

// parseOptionalDate parses a YYYY-MM-DD or RFC 3339 value; "" yields the
// zero Date.
func parseOptionalDate(field, raw string) (core.Date, error) {
	if strings.TrimSpace(raw) == "" {
		return core.Date{}, nil
	}
	d, err := core.ParseDate(raw)
	if err != nil {
		return core.Date{}, core.Invalid(fmt.Sprintf("invalid %s: use YYYY-MM-DD", field))
	}
	return d, nil
}

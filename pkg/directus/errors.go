package directus

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
)

// ErrAccessDenied is matched by a StatusError carrying a 403.
var ErrAccessDenied = errors.New("access denied")

// StatusError is returned when the CMS answers with a non-2xx status.
type StatusError struct {
	Op      string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %d %s: %s", e.Op, e.Code, http.StatusText(e.Code), e.Message)
	}
	return fmt.Sprintf("%s: %d %s", e.Op, e.Code, http.StatusText(e.Code))
}

func (e *StatusError) Is(target error) bool {
	return target == ErrAccessDenied && e.Code == http.StatusForbidden
}

type errorBody struct {
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// checkStatus turns a non-2xx response into a StatusError. The body is
// consumed on error.
func checkStatus(op string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	se := &StatusError{Op: op, Code: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body errorBody
	if json.Unmarshal(data, &body) == nil && len(body.Errors) > 0 {
		msgs := make([]string, 0, len(body.Errors))
		for _, e := range body.Errors {
			msgs = append(msgs, e.Message)
		}
		se.Message = strings.Join(msgs, "; ")
	}
	return se
}

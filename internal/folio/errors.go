package folio

import "fmt"

// RequestError reports a non-2xx backend response. Body carries the
// response body text; no retry or recovery happens internally.
type RequestError struct {
	Status int
	Body   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("folio: request failed with status %d: %s", e.Status, e.Body)
}

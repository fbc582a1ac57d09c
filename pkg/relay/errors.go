package relay

import "fmt"

// NetworkError means the endpoint was unreachable or answered with a
// non-success status. Status is 0 when the request never completed.
type NetworkError struct {
	Status int
	Body   string
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("relay request failed: %v", e.Err)
	}
	return fmt.Sprintf("relay endpoint error (status %d): %s", e.Status, e.Body)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError means the endpoint answered but the body was not valid JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("relay response unreadable: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

//go:generate mockgen -destination=mocks/doer.go . Doer
package fetch

import "net/http"

// Doer sends a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

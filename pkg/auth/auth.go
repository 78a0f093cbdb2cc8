// Package auth turns credentials into request header entries. The entries go
// through the same validation as any other header before a request is sent.
package auth

import (
	"encoding/base64"
	"strings"

	"github.com/glorpus-work/reqfile/pkg/header"
)

// Authenticator produces the header entries that carry a set of credentials.
type Authenticator interface {
	Pairs() []header.Pair
	Type() Type
}

// BasicAuth represents HTTP Basic Authentication credentials.
type BasicAuth struct {
	Username string
	Password string
}

// HeaderAuth represents authentication via custom HTTP headers.
type HeaderAuth struct {
	Headers map[string]string
}

// BearerAuth represents Bearer token authentication.
type BearerAuth struct {
	Token string
}

// Type represents the type of authentication.
type Type string

// Authentication types.
const (
	// BasicAuthType represents HTTP Basic Authentication.
	BasicAuthType Type = "basic"
	// HeaderAuthType represents custom header-based authentication.
	HeaderAuthType Type = "header"
	// BearerAuthType represents Bearer token authentication.
	BearerAuthType Type = "bearer"
)

const authorization = "Authorization"

// Pairs returns the Authorization entry for the credentials.
func (b BasicAuth) Pairs() []header.Pair {
	token := base64.StdEncoding.EncodeToString([]byte(b.Username + ":" + b.Password))
	return []header.Pair{{Name: authorization, Value: "Basic " + token}}
}

// Type returns the authentication type (BasicAuthType).
func (b BasicAuth) Type() Type { return BasicAuthType }

// Pairs returns the configured headers ordered by name.
func (h HeaderAuth) Pairs() []header.Pair {
	return header.SortedPairs(h.Headers)
}

// Type returns the authentication type (HeaderAuthType).
func (h HeaderAuth) Type() Type { return HeaderAuthType }

// Pairs returns the Authorization entry carrying the token.
func (b BearerAuth) Pairs() []header.Pair {
	return []header.Pair{{Name: authorization, Value: "Bearer " + b.Token}}
}

// Type returns the authentication type (BearerAuthType).
func (b BearerAuth) Type() Type { return BearerAuthType }

// ParseUser splits a curl-style "user:password" argument. Without a colon the
// whole argument is the username and the password is empty.
func ParseUser(s string) BasicAuth {
	user, pass, _ := strings.Cut(s, ":")
	return BasicAuth{Username: user, Password: pass}
}

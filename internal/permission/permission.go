// Package permission holds the request and object level access rules.
package permission

import (
	"net/http"

	"github.com/klass-lk/blogapi"
)

// Rule decides whether identity may perform method. owner is the author of
// the target object and is empty for request level checks.
type Rule func(method string, identity blogapi.AuthContext, owner string) bool

func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

func AllowAny(string, blogapi.AuthContext, string) bool {
	return true
}

func IsAuthenticated(_ string, identity blogapi.AuthContext, _ string) bool {
	return identity.IsAuthenticated()
}

func IsAuthenticatedOrReadOnly(method string, identity blogapi.AuthContext, _ string) bool {
	return IsSafeMethod(method) || identity.IsAuthenticated()
}

func IsAdmin(_ string, identity blogapi.AuthContext, _ string) bool {
	return identity.IsAdmin()
}

func AuthorOrReadOnly(method string, identity blogapi.AuthContext, owner string) bool {
	return IsSafeMethod(method) || isOwner(identity, owner)
}

func AuthorOrAdmin(_ string, identity blogapi.AuthContext, owner string) bool {
	return isOwner(identity, owner) || identity.IsAdmin()
}

func isOwner(identity blogapi.AuthContext, owner string) bool {
	return identity.IsAuthenticated() && owner != "" && identity.UserID == owner
}

// Check evaluates a request level rule. A denied anonymous caller gets
// Unauthorized, a denied authenticated caller Forbidden.
func Check(rule Rule, method string, identity blogapi.AuthContext) error {
	return CheckObject(rule, method, identity, "")
}

func CheckObject(rule Rule, method string, identity blogapi.AuthContext, owner string) error {
	if rule(method, identity, owner) {
		return nil
	}
	if !identity.IsAuthenticated() {
		return blogapi.Unauthorized()
	}
	return blogapi.Forbidden("")
}

package gate

import (
	"net/url"
	"strings"
)

// Outcome is the result kind of one gate evaluation.
type Outcome int

const (
	// Deny is the zero value so an unset Decision never grants access.
	Deny Outcome = iota
	Allow
	// Superseded marks a navigation that was cancelled or replaced by a newer
	// attempt before its decision applied. It never redirects.
	Superseded
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Superseded:
		return "superseded"
	default:
		return "deny"
	}
}

// Decision is the gate's answer for one navigation attempt. A Deny always
// carries the requested path so it can be restored after sign-in.
type Decision struct {
	Outcome        Outcome
	RedirectTarget string // login path, set on Deny
	ReturnParam    string // query parameter carrying PreservedPath
	PreservedPath  string // requested path, verbatim
}

func (d Decision) Allowed() bool {
	return d.Outcome == Allow
}

// RedirectURL renders the login redirect, e.g. /login?returnUrl=/tournaments/123/details.
// It is empty unless the decision is Deny.
func (d Decision) RedirectURL() string {
	if d.Outcome != Deny {
		return ""
	}
	return d.RedirectTarget + "?" + d.ReturnParam + "=" + escapeReturnURL(d.PreservedPath)
}

// escapeReturnURL query-escapes path but keeps '/' literal, which RFC 3986
// permits inside a query. url.ParseQuery recovers the exact input.
func escapeReturnURL(path string) string {
	return strings.ReplaceAll(url.QueryEscape(path), "%2F", "/")
}

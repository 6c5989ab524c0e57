// Package referer is middleware that admits requests only when their Referer
// header names an allow-listed host.
//
// This is a hotlinking control, not authentication. Browsers can be told to
// omit or trim the header and non-browser clients can set it to anything.
package referer

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/keithlinneman/avatars-web/internal/xerrors"
)

// Rejection messages sent as the plain text body of a 400.
const (
	MsgMissing = "No Referer when one is required!"
	MsgInvalid = "Invalid Referer!"
)

// Reason is the metric label for a rejection.
type Reason string

const (
	ReasonMissing    Reason = "missing"
	ReasonUnparsable Reason = "unparsable"
	ReasonNotAllowed Reason = "not_allowed"
)

// AllowList is a set of lower-cased hostnames. A nil AllowList means no
// restriction is configured.
type AllowList map[string]struct{}

// ParseAllowList parses a comma separated list of hostnames. Entries are
// trimmed and lower-cased. An empty or blank string yields a nil list.
func ParseAllowList(s string) (AllowList, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	out := make(AllowList)
	for i, raw := range strings.Split(s, ",") {
		host := strings.ToLower(strings.TrimSpace(raw))
		if host == "" {
			return nil, xerrors.Newf("referer: entry %d is empty", i+1)
		}
		if strings.ContainsAny(host, "/: \t") {
			return nil, xerrors.Newf("referer: entry %q must be a bare hostname", host)
		}
		out[host] = struct{}{}
	}
	return out, nil
}

// Allows reports whether host is on the list. A nil list allows everything.
func (a AllowList) Allows(host string) bool {
	if a == nil {
		return true
	}
	_, ok := a[strings.ToLower(host)]
	return ok
}

// Hosts returns the list entries, unordered.
func (a AllowList) Hosts() []string {
	out := make([]string, 0, len(a))
	for h := range a {
		out = append(out, h)
	}
	return out
}

// Decision is the outcome of checking one request.
type Decision struct {
	Admit  bool
	Reason Reason
	// Host is the Referer hostname when one could be parsed
	Host string
}

// Guard checks requests against an AllowList.
type Guard struct {
	allow AllowList

	// OnRejected is called for every rejected request, used for metrics and logging
	OnRejected func(r *http.Request, d Decision)
}

type Option func(*Guard)

// WithOnRejected sets a callback invoked on every rejection.
func WithOnRejected(fn func(r *http.Request, d Decision)) Option {
	return func(g *Guard) {
		g.OnRejected = fn
	}
}

// New returns a guard for allow. A nil allow admits every request.
func New(allow AllowList, opts ...Option) *Guard {
	g := &Guard{allow: allow}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Enabled reports whether a restriction is configured.
func (g *Guard) Enabled() bool { return g.allow != nil }

// Check decides whether r is admitted.
func (g *Guard) Check(r *http.Request) Decision {
	if g.allow == nil {
		return Decision{Admit: true}
	}
	ref := r.Header.Get("Referer")
	if ref == "" {
		return Decision{Reason: ReasonMissing}
	}
	u, err := url.Parse(ref)
	if err != nil || u.Hostname() == "" {
		return Decision{Reason: ReasonUnparsable}
	}
	host := strings.ToLower(u.Hostname())
	if !g.allow.Allows(host) {
		return Decision{Reason: ReasonNotAllowed, Host: host}
	}
	return Decision{Admit: true, Host: host}
}

// Middleware rejects requests that fail Check with a plain text 400.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := g.Check(r)
		if d.Admit {
			next.ServeHTTP(w, r)
			return
		}
		if g.OnRejected != nil {
			g.OnRejected(r, d)
		}
		msg := MsgInvalid
		if d.Reason == ReasonMissing {
			msg = MsgMissing
		}
		http.Error(w, msg, http.StatusBadRequest)
	})
}

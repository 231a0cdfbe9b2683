package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/authgate-dev/authgate"
)

// Access is the authorization requirement attached to a rule.
type Access int

const (
	// AccessPublic admits every request, authenticated or not.
	AccessPublic Access = iota
	// AccessAuthenticated requires a resolved identity of any role.
	AccessAuthenticated
	// AccessAdmin requires a resolved identity holding the ADMIN role.
	AccessAdmin
)

// Rule binds a path pattern to an access requirement. A pattern ending in
// "/" matches the whole subtree, any other pattern matches that exact path,
// and the bare "/" matches only the root page. Rules are evaluated in
// declaration order and the first match wins, so narrower patterns must be
// listed before broader ones.
type Rule struct {
	Prefix string
	Access Access
}

func (r Rule) match(path string) bool {
	if r.Prefix == "/" {
		return path == "/"
	}
	if strings.HasSuffix(r.Prefix, "/") {
		return strings.HasPrefix(path, r.Prefix)
	}
	return path == r.Prefix
}

// Pipeline is one authentication chain: a resolver stage that attaches an
// identity to matching requests, plus the ordered rule table that decides
// whether the request may proceed.
type Pipeline struct {
	// Prefix selects requests for this pipeline. The pipeline with the
	// longest matching prefix wins.
	Prefix string
	// Aliases are exact paths routed to this pipeline in addition to its
	// prefix, e.g. "/" and "/login" for a UI chain mounted at "/ui/".
	Aliases []string
	// Resolver is the identity stage, typically NewBearerResolver or
	// NewSessionResolver. A nil resolver passes requests through unchanged.
	Resolver func(http.Handler) http.Handler
	// Rules is the ordered access table. Requests matching no rule fall
	// back to DefaultAccess.
	Rules []Rule
	// DefaultAccess applies when no rule matches. The zero value is
	// AccessPublic; chains protecting everything by default should set
	// AccessAuthenticated explicitly.
	DefaultAccess Access
}

func (p *Pipeline) matches(path string) bool {
	if p.Prefix != "" && strings.HasPrefix(path, p.Prefix) {
		return true
	}
	for _, a := range p.Aliases {
		if path == a {
			return true
		}
	}
	return false
}

func (p *Pipeline) access(path string) Access {
	for _, r := range p.Rules {
		if r.match(path) {
			return r.Access
		}
	}
	return p.DefaultAccess
}

// Dispatcher routes each request to at most one pipeline and enforces that
// pipeline's rule table before handing off to the wrapped handler. Requests
// matching no pipeline pass through untouched.
type Dispatcher struct {
	pipelines []*Pipeline
	handlers  []http.Handler
}

// NewDispatcher wires the pipelines in front of next. Pipeline order only
// breaks ties between equal-length prefixes; selection is by longest prefix.
func NewDispatcher(next http.Handler, pipelines ...*Pipeline) *Dispatcher {
	d := &Dispatcher{pipelines: pipelines}
	for _, p := range pipelines {
		h := d.enforce(p, next)
		if p.Resolver != nil {
			h = p.Resolver(h)
		}
		d.handlers = append(d.handlers, h)
	}
	return d
}

func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	best := -1
	bestLen := -1
	for i, p := range d.pipelines {
		if !p.matches(r.URL.Path) {
			continue
		}
		if len(p.Prefix) > bestLen {
			best, bestLen = i, len(p.Prefix)
		}
	}
	if best < 0 {
		http.NotFound(w, r)
		return
	}
	d.handlers[best].ServeHTTP(w, r)
}

// enforce evaluates the pipeline's rule table after the resolver stage has
// had its chance to attach an identity.
func (d *Dispatcher) enforce(p *Pipeline, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch p.access(r.URL.Path) {
		case AccessPublic:
		case AccessAuthenticated:
			if _, ok := IdentityFromContext(r.Context()); !ok {
				writeDenied(w, http.StatusUnauthorized)
				return
			}
		case AccessAdmin:
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				writeDenied(w, http.StatusUnauthorized)
				return
			}
			if !id.HasRole(authgate.RoleAdmin) {
				writeDenied(w, http.StatusForbidden)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func writeDenied(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": http.StatusText(status)})
}

// Package identity resolves the external authenticated subject for a
// request. The subject is an opaque identifier minted by an upstream identity
// provider; nothing here interprets it.
package identity

import "net/http"

// SubjectHeader carries the authenticated subject set by the auth proxy
const SubjectHeader = "X-Auth-Subject"

// Provider extracts the external subject from a request. An empty subject
// means no session.
type Provider interface {
	Subject(r *http.Request) string
}

// HeaderProvider trusts the subject header set by the upstream auth proxy.
// It must only be deployed behind a proxy that strips the header from
// client-supplied requests.
type HeaderProvider struct{}

func NewHeaderProvider() *HeaderProvider {
	return &HeaderProvider{}
}

func (p *HeaderProvider) Subject(r *http.Request) string {
	return r.Header.Get(SubjectHeader)
}

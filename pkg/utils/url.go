package utils

import (
	"regexp"
	"strings"
)

var (
	schemeRe = regexp.MustCompile(`^https?://`)
	pathRe   = regexp.MustCompile(`[/?#].*$`)
)

// WebsiteHost returns the lower-cased host of a URL-like string with the protocol,
// a leading "www." and any path removed. "https://www.Frota.com.br/contato" => "frota.com.br".
func WebsiteHost(u string) string {
	n := strings.ToLower(strings.TrimSpace(u))
	if n == "" {
		return ""
	}
	n = schemeRe.ReplaceAllString(n, "")
	n = strings.TrimPrefix(n, "www.")
	n = pathRe.ReplaceAllString(n, "")
	if i := strings.LastIndex(n, ":"); i > 0 {
		n = n[:i]
	}
	return n
}

// EmailDomain returns the lower-cased part after the last '@', or "" if there is none.
func EmailDomain(email string) string {
	e := strings.TrimSpace(email)
	i := strings.LastIndex(e, "@")
	if i < 0 || i == len(e)-1 {
		return ""
	}
	return strings.ToLower(e[i+1:])
}

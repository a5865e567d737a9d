// Package emailcheck validates addresses before OTP mail is sent to
// them: a format check plus an MX lookup on the domain.
package emailcheck

import (
	"context"
	"net"
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidFormat reports whether the address looks like an email.
func ValidFormat(email string) bool {
	return emailPattern.MatchString(email)
}

// Checker verifies that an address belongs to a deliverable domain.
type Checker interface {
	DomainExists(ctx context.Context, email string) bool
}

// DNSChecker resolves MX records for the address's domain.
type DNSChecker struct {
	resolver *net.Resolver
}

// NewDNSChecker creates a checker using the default resolver.
func NewDNSChecker() *DNSChecker {
	return &DNSChecker{resolver: net.DefaultResolver}
}

// DomainExists implements Checker.
func (c *DNSChecker) DomainExists(ctx context.Context, email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}
	records, err := c.resolver.LookupMX(ctx, email[at+1:])
	return err == nil && len(records) > 0
}

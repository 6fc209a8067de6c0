// Package device derives a short human-readable device summary from a
// User-Agent header. The summary goes into login audit events only; nothing
// branches on it.
package device

import (
	"fmt"

	"github.com/mssola/useragent"
)

// Summary renders "Chrome 120 on Linux x86_64" style output, or "" for an
// empty User-Agent.
func Summary(ua string) string {
	if ua == "" {
		return ""
	}
	parsed := useragent.New(ua)
	name, version := parsed.Browser()
	if name == "" {
		return "unknown device"
	}
	os := parsed.OS()
	if os == "" {
		return fmt.Sprintf("%s %s", name, version)
	}
	return fmt.Sprintf("%s %s on %s", name, version, os)
}

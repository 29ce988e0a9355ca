// internal/browser/url.go
package browser

import "strings"

// ResolveURL joins a relative navigation target onto base. Targets starting
// with "http" are returned untouched.
func ResolveURL(base, target string) string {
	target = strings.TrimSpace(target)
	if strings.HasPrefix(target, "http") {
		return target
	}
	base = strings.TrimRight(base, "/")
	if target == "" {
		return base
	}
	if !strings.HasPrefix(target, "/") {
		target = "/" + target
	}
	return base + target
}

package auth

import "net/http"

// Cookie names are fixed constants shared with the web frontend.
const (
	// SessionCookieName carries the signed session token.
	SessionCookieName = "atlas_session"

	// PreviewCookieName carries the requested preview role. It is readable
	// by client-side code (not HttpOnly) because it only affects display:
	// the Gate independently re-validates it server-side on every request.
	PreviewCookieName = "atlas_preview_role"
)

// DefaultSessionMaxAge is the session cookie lifetime in seconds (7 days).
const DefaultSessionMaxAge = 604800

// NewSessionCookie builds the session cookie for a signed token.
// Domain may be empty (host-only cookie).
func NewSessionCookie(token, domain string, maxAge int) *http.Cookie {
	if maxAge <= 0 {
		maxAge = DefaultSessionMaxAge
	}
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   domain,
		MaxAge:   maxAge,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearSessionCookie builds a cookie that removes the session cookie.
func ClearSessionCookie(domain string) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   domain,
		MaxAge:   -1, // Max-Age=0 on the wire
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// NewPreviewCookie builds the preview-role cookie. The value is the
// lowercase canonical role string. It carries no authority by itself.
func NewPreviewCookie(role Role, domain string) *http.Cookie {
	return &http.Cookie{
		Name:     PreviewCookieName,
		Value:    string(role),
		Path:     "/",
		Domain:   domain,
		MaxAge:   DefaultSessionMaxAge,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearPreviewCookie builds a cookie that removes the preview-role cookie.
func ClearPreviewCookie(domain string) *http.Cookie {
	return &http.Cookie{
		Name:     PreviewCookieName,
		Value:    "",
		Path:     "/",
		Domain:   domain,
		MaxAge:   -1,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	}
}

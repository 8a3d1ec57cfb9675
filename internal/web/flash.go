package web

import (
	"encoding/base64"
	"net/http"
)

// flashCookieName holds the one-shot notification shown on the next page.
const flashCookieName = "flash"

// SetFlash stores a message to be displayed exactly once, on the next page
// the user sees.
//
// WHY A COOKIE AND NOT SERVER STATE?
// The message has to survive a redirect (POST /login → GET /). A cookie
// rides along with the redirect for free and needs no per-user storage on
// the server. The value is base64-encoded because cookie values cannot
// contain spaces or punctuation like the messages do.
func SetFlash(w http.ResponseWriter, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.URLEncoding.EncodeToString([]byte(message)),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash returns the pending flash message, if any, and clears it so it
// is never shown twice. A missing or undecodable cookie yields ("", false).
func PopFlash(w http.ResponseWriter, r *http.Request) (string, bool) {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return "", false
	}

	// Expire the cookie regardless of whether the value decodes.
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	decoded, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil || len(decoded) == 0 {
		return "", false
	}
	return string(decoded), true
}

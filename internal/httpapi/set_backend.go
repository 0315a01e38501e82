package httpapi

import "net/http"

// backendCookieMaxAge is large enough to be effectively permanent for a
// browser session, matching the original dashboard's cookie lifetime.
const backendCookieMaxAge = 999999999

func (s *Server) handleSetBackend(w http.ResponseWriter, r *http.Request) {
	backend := r.URL.Query().Get("backend")
	http.SetCookie(w, &http.Cookie{
		Name:     "backend",
		Value:    backend,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   backendCookieMaxAge,
	})

	referer := r.Header.Get("Referer")
	if referer == "" {
		referer = "/system"
	}
	http.Redirect(w, r, referer, http.StatusFound)
}

// selectedBackend returns the address named by the backend cookie, or ""
// if none is set.
func selectedBackend(r *http.Request) string {
	c, err := r.Cookie("backend")
	if err != nil {
		return ""
	}
	return c.Value
}

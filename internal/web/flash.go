package web

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/erpdash/internal/notify"
)

const (
	flashCookie    = "erpdash_flash"
	maxFlashToasts = 5
)

// setFlash stores toasts for the page a redirect lands on. It is how
// non-HTMX form posts report their outcome.
func setFlash(w http.ResponseWriter, toasts []notify.Toast) {
	if len(toasts) == 0 {
		return
	}
	if len(toasts) > maxFlashToasts {
		toasts = toasts[:maxFlashToasts]
	}
	data, err := json.Marshal(toasts)
	if err != nil {
		slog.Error("encode flash", "error", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(data),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlash returns and clears any pending toasts. A malformed cookie is
// dropped.
func popFlash(w http.ResponseWriter, r *http.Request) []notify.Toast {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	data, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var toasts []notify.Toast
	if err := json.Unmarshal(data, &toasts); err != nil {
		return nil
	}
	return toasts
}

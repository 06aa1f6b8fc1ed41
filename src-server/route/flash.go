package route

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
)

const FlashCookieName = "flash"

// cookies past ~4KB get dropped by browsers
const maxFlashNotices = 10

type Kind string

const (
	KindSuccess   Kind = "success"
	KindInfo      Kind = "info"
	KindError     Kind = "error"
	KindPassed    Kind = "passed"
	KindNotPassed Kind = "not-passed"
)

// Notice is a one-time message shown on the next rendered response.
type Notice struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func writeFlash(w http.ResponseWriter, secure bool, notices []Notice) {
	notices = normalizeNotices(notices)
	if len(notices) == 0 {
		clearFlash(w, secure)
		return
	}
	if len(notices) > maxFlashNotices {
		notices = notices[len(notices)-maxFlashNotices:]
	}
	payload, err := json.Marshal(notices)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearFlash(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// readFlash reports whether the cookie was present at all, so the caller
// knows to clear it even when its content was garbage.
func readFlash(r *http.Request) ([]Notice, bool) {
	cookie, err := r.Cookie(FlashCookieName)
	if err != nil {
		return nil, false
	}
	value := strings.TrimSpace(cookie.Value)
	if value == "" {
		return nil, true
	}
	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, true
	}
	var notices []Notice
	if err := json.Unmarshal(decoded, &notices); err != nil {
		return nil, true
	}
	return normalizeNotices(notices), true
}

func normalizeNotices(notices []Notice) []Notice {
	out := make([]Notice, 0, len(notices))
	for _, n := range notices {
		n.Message = strings.TrimSpace(n.Message)
		if n.Message == "" {
			continue
		}
		n.Kind = Kind(strings.ToLower(strings.TrimSpace(string(n.Kind))))
		switch n.Kind {
		case KindSuccess, KindInfo, KindError, KindPassed, KindNotPassed:
			out = append(out, n)
		}
	}
	return out
}

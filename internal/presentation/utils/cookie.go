package utils

import (
	"encoding/base64"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const CookiePlayerID = "player_id"

const cookieLifetime = 24 * 30 * time.Hour

// EnsurePlayerID returns the browser's stable anonymous identity, minting
// one on first contact. The cookie is re-issued on every call so an active
// player never expires.
func EnsurePlayerID(w http.ResponseWriter, r *http.Request) string {
	uid := readPlayerID(r)
	if uid == "" {
		uid = uuid.NewString()
	}

	setPlayerIDCookie(uid, w)
	return uid
}

func readPlayerID(r *http.Request) string {
	cookie, err := r.Cookie(CookiePlayerID)
	if err != nil {
		return ""
	}

	decoded, err := base64.StdEncoding.DecodeString(cookie.Value)
	if err != nil {
		return ""
	}

	if _, err := uuid.Parse(string(decoded)); err != nil {
		return ""
	}

	return string(decoded)
}

func setPlayerIDCookie(uid string, w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookiePlayerID,
		Value:    base64.StdEncoding.EncodeToString([]byte(uid)),
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Now().Add(cookieLifetime),
	})
}

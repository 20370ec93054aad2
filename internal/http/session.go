package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const sessionCookie = "noti_session"

// sessionManager issues and verifies HMAC-signed session cookies for
// the single admin user. Cookie value: base64(email).expiryUnix.sig
// where sig = HMAC-SHA256(secret, email|expiry).
type sessionManager struct {
	secret []byte
	ttl    time.Duration
}

func newSessionManager(secret string, ttl time.Duration) *sessionManager {
	return &sessionManager{secret: []byte(secret), ttl: ttl}
}

func (m *sessionManager) sign(email string, expiry int64) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(email))
	mac.Write([]byte{'|'})
	mac.Write([]byte(strconv.FormatInt(expiry, 10)))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// issue sets a fresh session cookie for email.
func (m *sessionManager) issue(w http.ResponseWriter, email string) {
	expiry := time.Now().Add(m.ttl).Unix()
	value := base64.RawURLEncoding.EncodeToString([]byte(email)) +
		"." + strconv.FormatInt(expiry, 10) +
		"." + m.sign(email, expiry)
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    value,
		Path:     "/",
		Expires:  time.Unix(expiry, 0),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// verify returns the logged-in email when the request carries a valid,
// unexpired session cookie.
func (m *sessionManager) verify(r *http.Request) (string, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return "", false
	}
	parts := strings.Split(c.Value, ".")
	if len(parts) != 3 {
		return "", false
	}
	emailBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", false
	}
	expiry, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || time.Now().Unix() > expiry {
		return "", false
	}
	email := string(emailBytes)
	if !hmac.Equal([]byte(parts[2]), []byte(m.sign(email, expiry))) {
		return "", false
	}
	return email, true
}

// clear expires the session cookie.
func (m *sessionManager) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

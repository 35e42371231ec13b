package api

import (
	"crypto/rand"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

const stateCookie = "oauth_state"

// Authenticator gates the dashboard API on a signed-in session. The
// session carries no per-key ownership; every authenticated user sees
// every key.
func (a *KeydeckAPIStruct) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte("Unauthorized"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (a *KeydeckAPIStruct) Login(w http.ResponseWriter, r *http.Request) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		http.Error(w, "unable to start login", http.StatusInternalServerError)
		return
	}
	state := hex.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int((10 * time.Minute).Seconds()),
	})

	http.Redirect(w, r, a.oauth.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

func (a *KeydeckAPIStruct) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "jwt",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	http.Redirect(w, r, "/login", http.StatusTemporaryRedirect)
}

func (a *KeydeckAPIStruct) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		http.Error(w, "state mismatch", http.StatusBadRequest)
		return
	}

	token, err := a.oauth.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		log.Error().Err(err).Msg("OAuth code exchange failed")
		http.Error(w, "login failed", http.StatusUnauthorized)
		return
	}

	client := a.oauth.Client(r.Context(), token)
	resp, err := client.Get(a.config.OAuth.UserInfoURL)
	if err != nil {
		log.Error().Err(err).Msg("Unable to fetch user info")
		http.Error(w, "login failed", http.StatusUnauthorized)
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Error().Err(err).Msg("Unable to read user info")
		http.Error(w, "login failed", http.StatusUnauthorized)
		return
	}

	email := gjson.GetBytes(body, "email").String()
	if email == "" {
		http.Error(w, "login failed", http.StatusUnauthorized)
		return
	}

	user, err := a.db.CreateUser(email, "google", string(body))
	if err != nil {
		log.Error().Err(err).Str("email", email).Msg("Unable to upsert user")
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	_, jwt, err := a.tokenAuth.Encode(map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	})
	if err != nil {
		log.Error().Err(err).Msg("Unable to issue session token")
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "jwt",
		Value:    jwt,
		Path:     "/",
		HttpOnly: true,
	})

	http.Redirect(w, r, "/api/keys", http.StatusTemporaryRedirect)
}

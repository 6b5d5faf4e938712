package handler

import (
	"crypto/subtle"
	"log"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// Middleware wraps an http.Handler
type Middleware func(http.Handler) http.Handler

// Chain applies middleware so the first one listed is the outermost
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// CORS allows browser clients served from another origin
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// BasicAuth checks HTTP basic credentials against a bcrypt password hash
func BasicAuth(realm, username, passwordHash string) Middleware {
	hash := []byte(passwordHash)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, pass, ok := r.BasicAuth()
			if ok && subtle.ConstantTimeCompare([]byte(user), []byte(username)) == 1 {
				if err := bcrypt.CompareHashAndPassword(hash, []byte(pass)); err == nil {
					next.ServeHTTP(w, r)
					return
				}
			}
			if ok {
				log.Printf("Rejected credentials for %q from %s", user, r.RemoteAddr)
			}
			w.Header().Set("WWW-Authenticate", `Basic realm="`+realm+`"`)
			writeError(w, "Unauthorized", "", http.StatusUnauthorized)
		})
	}
}

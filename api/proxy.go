package api

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"catalogqa/internal/errors"
)

const proxyTimeout = 20 * time.Second

// commercePath is the ACL resource the frontend needs to resolve its
// commerce session.
const commercePath = "/api/sidebar/quipuadmin/resource/commerce"

// handleCommerceProxy relays the caller's bearer token to the ACL service
// and passes the upstream status and body through. A transport failure
// maps to 502; upstream 401/403 pass through so the frontend can react.
func (a *App) handleCommerceProxy(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		a.writeError(w, http.StatusUnauthorized, errors.InvalidInput("missing bearer token"))
		return
	}
	if a.cfg.ACL.BaseURL == "" {
		a.writeError(w, http.StatusServiceUnavailable, errors.ConfigInvalid("ACL base URL not configured"))
		return
	}

	languages := r.URL.Query().Get("languages")
	if languages == "" {
		languages = "es"
	}
	log.Printf("[SessionProxy] relaying commerce request (token %s)", redactedToken(token))

	target := a.cfg.ACL.BaseURL + commercePath + "?" + url.Values{"languages": {languages}}.Encode()
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target, nil)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, errors.Wrap(err, "failed to build ACL request"))
		return
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.client.Do(req)
	if err != nil {
		log.Printf("[SessionProxy] ACL request failed: %v", err)
		a.writeError(w, http.StatusBadGateway, errors.ExternalServiceError("ACL", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[SessionProxy] ACL returned HTTP %d", resp.StatusCode)
	}

	w.Header().Set("Content-Type", resp.Header.Get("Content-Type"))
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		log.Printf("[SessionProxy] failed to relay ACL body: %v", err)
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return auth[len(prefix):]
	}
	return ""
}

// String satisfies fmt.Stringer for log-friendly redaction of tokens.
type redactedToken string

func (t redactedToken) String() string {
	if len(t) <= 10 {
		return "***"
	}
	return fmt.Sprintf("%s...", string(t[:10]))
}

//go:build integration

package integration

import (
	"context"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthGateway_Scenario(t *testing.T) {
	cfg := LoadCfg()
	WaitHealthz(t, cfg.GWHealthURL, 60*time.Second)

	email := "it-" + RandSuffix() + "@example.com"
	creds := map[string]string{"email": email, "password": "wonderland"}

	r := Do(t, http.MethodPost, cfg.GWBaseURL+"/register", creds, "")
	require.Equal(t, http.StatusCreated, r.Code)
	assert.Equal(t, true, r.Body["success"])

	r = Do(t, http.MethodPost, cfg.GWBaseURL+"/register",
		map[string]string{"email": strings.ToUpper(email), "password": "x"}, "")
	require.Equal(t, http.StatusBadRequest, r.Code)
	assert.Equal(t, "Registration failed", r.Body["error"])

	r = Do(t, http.MethodPost, cfg.GWBaseURL+"/login", map[string]string{"email": email, "password": "nope"}, "")
	require.Equal(t, http.StatusUnauthorized, r.Code)

	r = Do(t, http.MethodPost, cfg.GWBaseURL+"/login", creds, "")
	require.Equal(t, http.StatusOK, r.Code)
	access, _ := r.Body["accessToken"].(string)
	refresh, _ := r.Body["refreshToken"].(string)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	r = Do(t, http.MethodPost, cfg.GWBaseURL+"/refresh-token", map[string]string{"refreshToken": refresh}, access)
	require.Equal(t, http.StatusOK, r.Code)
	require.NotEmpty(t, r.Body["accessToken"])

	r = Do(t, http.MethodGet, cfg.GWBaseURL+"/me", nil, access)
	require.Equal(t, http.StatusOK, r.Code)
	userID, _ := r.Body["userId"].(string)
	require.NotEmpty(t, userID)

	r = Do(t, http.MethodPost, cfg.GWBaseURL+"/logout", nil, access)
	require.Equal(t, http.StatusOK, r.Code)

	r = Do(t, http.MethodPost, cfg.GWBaseURL+"/refresh-token", map[string]string{"refreshToken": refresh}, access)
	assert.Equal(t, http.StatusUnauthorized, r.Code)

	db := DBOpen(t, cfg.DBDSN)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var hash string
	require.NoError(t, db.QueryRowContext(ctx, `select password_hash from users where email = $1`, email).Scan(&hash))
	assert.True(t, strings.HasPrefix(hash, "$2"), "stored value must be a bcrypt hash")
	assert.NotContains(t, hash, "wonderland")

	if os.Getenv("IT_EVENTS") == "" {
		t.Log("[it] IT_EVENTS not set; skipping kafka event checks")
		return
	}
	WaitTCP(t, "kafka", cfg.KafkaBootstrap, 30*time.Second)
	ev, ok := WaitAuthEvent(t, cfg.KafkaBootstrap, cfg.EventsTopic, "user.registered", userID, 30*time.Second)
	require.True(t, ok, "user.registered not relayed")
	assert.Equal(t, email, ev.Email)
	_, ok = WaitAuthEvent(t, cfg.KafkaBootstrap, cfg.EventsTopic, "session.started", userID, 30*time.Second)
	assert.True(t, ok, "session.started not relayed")
}

func TestAuthGateway_PreflightAndNotFound(t *testing.T) {
	cfg := LoadCfg()
	WaitHealthz(t, cfg.GWHealthURL, 60*time.Second)

	req, err := http.NewRequest(http.MethodOptions, cfg.GWBaseURL+"/login", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))

	r := Do(t, http.MethodGet, cfg.GWBaseURL+"/nowhere", nil, "")
	assert.Equal(t, http.StatusNotFound, r.Code)
	assert.Equal(t, "Not found", r.Body["error"])
}

package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserHandler_Me(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.signUp(t, "me@test.com", "Europe/Rome")

	w := env.do(t, http.MethodGet, "/api/v1/users/me", token, "")

	require.Equal(t, http.StatusOK, w.Code)
	var user map[string]any
	decode(t, w, &user)
	assert.Equal(t, userID, user["id"])
	assert.Equal(t, "Europe/Rome", user["timezone"])
}

func TestUserHandler_UpdateMe(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.signUp(t, "update@test.com", "UTC")

	t.Run("Timezone change", func(t *testing.T) {
		w := env.do(t, http.MethodPatch, "/api/v1/users/me", token, `{"timezone":"Asia/Tokyo"}`)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), `"timezone":"Asia/Tokyo"`)
		assert.Contains(t, w.Body.String(), `"username":"update"`)
	})

	t.Run("Password change takes effect", func(t *testing.T) {
		w := env.do(t, http.MethodPatch, "/api/v1/users/me", token, `{"password":"new-password-1"}`)
		require.Equal(t, http.StatusOK, w.Code)

		w = env.do(t, http.MethodPost, "/api/v1/auth/login", "", `{"email":"update@test.com","password":"new-password-1"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Taken username: 409", func(t *testing.T) {
		env.signUp(t, "taken@test.com", "UTC")

		w := env.do(t, http.MethodPatch, "/api/v1/users/me", token, `{"username":"taken"}`)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "username already taken")
	})

	t.Run("Invalid timezone: 400", func(t *testing.T) {
		w := env.do(t, http.MethodPatch, "/api/v1/users/me", token, `{"timezone":"Nowhere/Land"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

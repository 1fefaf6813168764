package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetProfile(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "pruthvi@gmail.com", "Secure@456")

	rec := env.do(t, http.MethodGet, "/api/v1/me", nil, token)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	require.Equal(t, float64(2), body["id"])
	require.Equal(t, "Pruthvi", body["firstName"])
	require.Equal(t, "1111111111", body["mobile"])
}

func TestUpdateProfile_PartialUpdate(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "demo@gmail.com", "MyPass@789")

	rec := env.do(t, http.MethodPut, "/api/v1/me", map[string]any{
		"firstName": "Dana",
		"mobile":    "9998887776",
	}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody(t, rec)
	require.Equal(t, "Dana", body["firstName"])
	require.Equal(t, "User", body["lastName"])
	require.Equal(t, "9998887776", body["mobile"])

	// the session still resolves after the change
	rec = env.do(t, http.MethodGet, "/api/v1/me", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Dana", decodeBody(t, rec)["firstName"])
}

func TestUpdateProfile_EmailTakenByAnotherUser(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "demo@gmail.com", "MyPass@789")

	rec := env.do(t, http.MethodPut, "/api/v1/me", map[string]any{
		"email": "umang@gmail.com",
	}, token)

	require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
}

func TestUpdateProfile_KeepingOwnEmailIsAllowed(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "demo@gmail.com", "MyPass@789")

	rec := env.do(t, http.MethodPut, "/api/v1/me", map[string]any{
		"email": "DEMO@gmail.com",
	}, token)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "demo@gmail.com", decodeBody(t, rec)["email"])
}

func TestUpdateProfile_RejectsInvalidFields(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "demo@gmail.com", "MyPass@789")

	rec := env.do(t, http.MethodPut, "/api/v1/me", map[string]any{"mobile": "12345"}, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/v1/me", map[string]any{"lastName": "  "}, token)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChangePassword(t *testing.T) {
	tests := []struct {
		name    string
		current string
		next    string
		confirm string
		status  int
		errMsg  string
	}{
		{"wrong current", "Nope@1234", "Fresh@1234", "Fresh@1234", http.StatusUnprocessableEntity, "current password is incorrect"},
		{"same as current", "MyPass@789", "MyPass@789", "MyPass@789", http.StatusUnprocessableEntity, "new password cannot be the same as the current password"},
		{"mismatch", "MyPass@789", "Fresh@1234", "Fresh@4321", http.StatusUnprocessableEntity, "new passwords do not match"},
		{"weak new password", "MyPass@789", "weak", "weak", http.StatusBadRequest, "validation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			token := env.login(t, "demo@gmail.com", "MyPass@789")

			rec := env.do(t, http.MethodPut, "/api/v1/me/password", map[string]any{
				"currentPassword": tt.current,
				"newPassword":     tt.next,
				"confirmPassword": tt.confirm,
			}, token)

			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			require.Equal(t, tt.errMsg, decodeBody(t, rec)["error"])
		})
	}
}

func TestChangePassword_NewPasswordWorksForLogin(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "demo@gmail.com", "MyPass@789")

	rec := env.do(t, http.MethodPut, "/api/v1/me/password", map[string]any{
		"currentPassword": "MyPass@789",
		"newPassword":     "Fresh@1234",
		"confirmPassword": "Fresh@1234",
	}, token)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/v1/auth/login", map[string]any{
		"email":    "demo@gmail.com",
		"password": "MyPass@789",
	}, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	env.login(t, "demo@gmail.com", "Fresh@1234")
}

package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(url string) *Client {
	return &Client{
		BaseURL:    url,
		ServiceKey: "service-key",
		HTTPClient: http.DefaultClient,
	}
}

func TestUpdateUserEmail(t *testing.T) {
	t.Parallel()

	var gotMethod, gotPath, gotAuth, gotAPIKey string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotAPIKey = r.Header.Get("apikey")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	err := c.UpdateUserEmail(context.Background(), "user-1", "new@academia.com")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/admin/users/user-1", gotPath)
	assert.Equal(t, "Bearer service-key", gotAuth)
	assert.Equal(t, "service-key", gotAPIKey)
	assert.Equal(t, "new@academia.com", gotBody["email"])
	assert.Equal(t, true, gotBody["email_confirm"])
}

func TestUpdateUserEmailValidation(t *testing.T) {
	t.Parallel()

	c := testClient("http://unused")
	assert.Error(t, c.UpdateUserEmail(context.Background(), "", "new@academia.com"))
	assert.Error(t, c.UpdateUserEmail(context.Background(), "user-1", ""))
}

func TestDeleteUser(t *testing.T) {
	t.Parallel()

	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	require.NoError(t, c.DeleteUser(context.Background(), "user-2"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/admin/users/user-2", gotPath)
}

func TestErrorStatusSurfaced(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"email already registered"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	err := c.UpdateUserEmail(context.Background(), "user-3", "taken@academia.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=422")
}

func TestMissingConfiguration(t *testing.T) {
	t.Parallel()

	c := &Client{HTTPClient: http.DefaultClient}
	assert.Error(t, c.DeleteUser(context.Background(), "user-4"))
}

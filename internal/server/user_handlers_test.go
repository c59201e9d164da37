package server

import (
	"fmt"
	"net/http"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertProfile(t *testing.T) {
	app, _ := setupTestServer(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/users/profile", map[string]any{
		"externalId":  "ext-1",
		"email":       "alice@example.com",
		"username":    "Alice_01",
		"displayName": "Alice",
		"bio":         "writes things",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var public models.PublicUser
	decodeJSON(t, resp, &public)
	assert.Equal(t, "alice_01", public.Username)
	assert.Equal(t, "Alice", public.DisplayName)
}

func TestUpsertProfile_UsernameConflict(t *testing.T) {
	app, srv := setupTestServer(t)
	createTestUser(t, srv, "taken")

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/users/profile", map[string]any{
		"externalId":  "ext-other",
		"email":       "other@example.com",
		"username":    "taken",
		"displayName": "Other",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body models.ErrorResponse
	decodeJSON(t, resp, &body)
	assert.Equal(t, models.CodeConflict, body.Code)
}

func TestUpsertProfile_EmailConflict(t *testing.T) {
	app, _ := setupTestServer(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/users/profile", map[string]any{
		"externalId":  "ext-a",
		"email":       "shared@example.com",
		"username":    "first",
		"displayName": "First",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// A different identity may not register the same email.
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/users/profile", map[string]any{
		"externalId":  "ext-b",
		"email":       "shared@example.com",
		"username":    "second",
		"displayName": "Second",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body models.ErrorResponse
	decodeJSON(t, resp, &body)
	assert.Equal(t, models.CodeConflict, body.Code)
}

func TestUpsertProfile_SameIdentityUpdatesInPlace(t *testing.T) {
	app, srv := setupTestServer(t)
	user := createTestUser(t, srv, "alice")

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/users/profile", map[string]any{
		"externalId":  user.ExternalID,
		"email":       "new@example.com",
		"username":    "alice",
		"displayName": "Alice Renamed",
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var public models.PublicUser
	decodeJSON(t, resp, &public)
	assert.Equal(t, "Alice Renamed", public.DisplayName)
}

func TestGetUserProfile_HidesIdentityFields(t *testing.T) {
	app, srv := setupTestServer(t)
	createTestUser(t, srv, "alice")

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/users/alice", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var raw map[string]any
	decodeJSON(t, resp, &raw)
	assert.Equal(t, "alice", raw["username"])
	assert.NotContains(t, raw, "email")
	assert.NotContains(t, raw, "externalId")

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/users/ghost", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetCurrentUser_ExposesIdentityToOwner(t *testing.T) {
	app, srv := setupTestServer(t)
	user := createTestUser(t, srv, "alice")

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/api/users/current", map[string]any{
		"externalId": user.ExternalID,
	}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var raw map[string]any
	decodeJSON(t, resp, &raw)
	assert.Equal(t, "alice@example.com", raw["email"])
	assert.Equal(t, user.ExternalID, raw["externalId"])

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/api/users/current", map[string]any{
		"externalId": "ghost",
	}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSearchUsers(t *testing.T) {
	app, srv := setupTestServer(t)
	createTestUser(t, srv, "alice")
	createTestUser(t, srv, "alicia")
	createTestUser(t, srv, "bob")

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/users/search?query=ali", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var users []models.PublicUser
	decodeJSON(t, resp, &users)
	assert.Len(t, users, 2)

	// Queries under two characters are rejected.
	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/users/search?query=a", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetUserStats(t *testing.T) {
	app, srv := setupTestServer(t)
	alice := createTestUser(t, srv, "alice")
	bob := createTestUser(t, srv, "bob")
	post := createPostViaAPI(t, app, alice, "Counted")
	createReplyViaAPI(t, app, alice, post.ID, nil, "self reply")

	resp, err := app.Test(jsonRequest(t, http.MethodPost,
		fmt.Sprintf("/api/posts/%d/like", post.ID),
		map[string]any{"externalId": bob.ExternalID}))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/users/alice/stats", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats models.UserStats
	decodeJSON(t, resp, &stats)
	assert.Equal(t, 1, stats.PostsCount)
	assert.Equal(t, 1, stats.RepliesCount)
	assert.Equal(t, 1, stats.LikesReceived)
}

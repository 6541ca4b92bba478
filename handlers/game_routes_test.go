package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"monad-moments/game"
	"monad-moments/models"
	"monad-moments/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStateProvider struct {
	mu     sync.Mutex
	stores map[int64]*game.MemoryStore
}

func (f *fakeStateProvider) StoreFor(fid int64) game.Store {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stores == nil {
		f.stores = make(map[int64]*game.MemoryStore)
	}
	store, ok := f.stores[fid]
	if !ok {
		store = game.NewMemoryStore()
		f.stores[fid] = store
	}
	return store
}

type fakeProfileLookup struct{}

func (fakeProfileLookup) GetByFid(fid int64) (*models.User, error) {
	return &models.User{FID: fid, Username: "tester"}, nil
}

func newGameTestApp(t *testing.T) (*fiber.App, *services.SessionService) {
	t.Helper()
	sessions := services.NewSessionServiceWithSecret("test-secret")
	rounds := services.NewRoundManager(&fakeStateProvider{}, fakeProfileLookup{})

	app := fiber.New()
	SetupGameRoutes(app, rounds, sessions)
	return app, sessions
}

func signedRequest(t *testing.T, sessions *services.SessionService, fid int64, method, target string, body any) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	token, expires, err := sessions.Issue(fid)
	require.NoError(t, err)
	cookie := sessions.Cookie(token, expires)
	req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	return req
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestGameRoutes_RequireSession(t *testing.T) {
	app, _ := newGameTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/game/progress", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestStartRound(t *testing.T) {
	app, sessions := newGameTestApp(t)

	req := signedRequest(t, sessions, 42, "POST", "/game/rounds", fiber.Map{"level": 2})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		RoundID string        `json:"round_id"`
		State   game.Snapshot `json:"state"`
	}
	decodeBody(t, resp, &body)

	assert.NotEmpty(t, body.RoundID)
	assert.Equal(t, 2, body.State.Config.Level)
	assert.Len(t, body.State.Deck, 20) // 10 pairs at level 2
	assert.Equal(t, 45, body.State.TimeLeft)
	assert.False(t, body.State.Over)
}

func TestRoundOwnership(t *testing.T) {
	app, sessions := newGameTestApp(t)

	req := signedRequest(t, sessions, 42, "POST", "/game/rounds", fiber.Map{"level": 1})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var created struct {
		RoundID string `json:"round_id"`
	}
	decodeBody(t, resp, &created)

	t.Run("owner can read", func(t *testing.T) {
		req := signedRequest(t, sessions, 42, "GET", "/game/rounds/"+created.RoundID, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("foreign session gets 403", func(t *testing.T) {
		req := signedRequest(t, sessions, 99, "GET", "/game/rounds/"+created.RoundID, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("unknown round gets 404", func(t *testing.T) {
		req := signedRequest(t, sessions, 42, "GET", "/game/rounds/nope", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestFlipRoute(t *testing.T) {
	app, sessions := newGameTestApp(t)

	req := signedRequest(t, sessions, 42, "POST", "/game/rounds", fiber.Map{"level": 1})
	resp, err := app.Test(req)
	require.NoError(t, err)
	var created struct {
		RoundID string `json:"round_id"`
	}
	decodeBody(t, resp, &created)

	t.Run("missing index is a 400", func(t *testing.T) {
		req := signedRequest(t, sessions, 42, "POST", "/game/rounds/"+created.RoundID+"/flip", fiber.Map{})
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("flip shows the card face-up", func(t *testing.T) {
		req := signedRequest(t, sessions, 42, "POST", "/game/rounds/"+created.RoundID+"/flip", fiber.Map{"index": 0})
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			State game.Snapshot `json:"state"`
		}
		decodeBody(t, resp, &body)
		assert.Equal(t, []int{0}, body.State.Flipped)
	})
}

func TestAbandonRoute(t *testing.T) {
	app, sessions := newGameTestApp(t)

	req := signedRequest(t, sessions, 42, "POST", "/game/rounds", fiber.Map{"level": 1})
	resp, err := app.Test(req)
	require.NoError(t, err)
	var created struct {
		RoundID string `json:"round_id"`
	}
	decodeBody(t, resp, &created)

	req = signedRequest(t, sessions, 42, "POST", "/game/rounds/"+created.RoundID+"/abandon", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	// The abandoned round is gone.
	req = signedRequest(t, sessions, 42, "GET", "/game/rounds/"+created.RoundID, nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestProgressAndLeaderboardRoutes(t *testing.T) {
	app, sessions := newGameTestApp(t)

	t.Run("fresh progress", func(t *testing.T) {
		req := signedRequest(t, sessions, 42, "GET", "/game/progress", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			Progress game.Progress `json:"progress"`
		}
		decodeBody(t, resp, &body)
		assert.Equal(t, 0, body.Progress.HighScore)
		assert.Equal(t, 1, body.Progress.HighLevel)
		assert.Empty(t, body.Progress.CompletedLevels)
	})

	t.Run("leaderboard seeds on first read", func(t *testing.T) {
		req := signedRequest(t, sessions, 42, "GET", "/game/leaderboard", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			Leaderboard []game.LeaderboardEntry `json:"leaderboard"`
		}
		decodeBody(t, resp, &body)
		assert.Len(t, body.Leaderboard, 20)
	})
}

package user

import (
	"net/http"
	"testing"

	"event-submission-system/internal/global/jwt"
	"event-submission-system/internal/global/response"
	"event-submission-system/internal/model"
	"event-submission-system/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	selfInit()
	m.Run()
}

func TestRegisterAndLogin(t *testing.T) {
	db := test.NewDB(t)

	register := func(body map[string]any) response.ResponseBody {
		return test.DoRequest(t, Register, test.Request{Method: http.MethodPost, Path: "/user/register", Body: body})
	}

	resp := register(map[string]any{"username": "alice", "password": "passw0rdx", "name": "Alice", "email": "alice@example.com"})
	test.NoError(t, resp)
	var registered LoginResp
	test.DecodeData(t, resp, &registered)
	assert.Equal(t, "alice", registered.Username)
	claims, ok := jwt.ParseToken(registered.Token)
	require.True(t, ok)
	assert.Equal(t, registered.UserID, claims.UserID)

	var stored model.User
	require.NoError(t, db.First(&stored, registered.UserID).Error)
	assert.NotEqual(t, "passw0rdx", stored.Password)

	test.ErrorEqual(t, response.ErrAlreadyExists, register(map[string]any{"username": "alice", "password": "another1pw", "name": "A2"}))
	test.ErrorEqual(t, response.ErrInvalidRequest, register(map[string]any{"username": "bob", "password": "short1", "name": "Bob"}))
	test.ErrorEqual(t, response.ErrInvalidRequest, register(map[string]any{"username": "bob", "password": "onlyletters", "name": "Bob"}))
	test.ErrorEqual(t, response.ErrInvalidRequest, register(map[string]any{"username": "bob", "password": "passw0rdx"}))

	login := func(username, password string) response.ResponseBody {
		return test.DoRequest(t, Login, test.Request{
			Method: http.MethodPost,
			Path:   "/user/login",
			Body:   map[string]any{"username": username, "password": password},
		})
	}
	resp = login("alice", "passw0rdx")
	test.NoError(t, resp)
	var logged LoginResp
	test.DecodeData(t, resp, &logged)
	assert.Equal(t, registered.UserID, logged.UserID)

	test.ErrorEqual(t, response.ErrInvalidPassword, login("alice", "wrong-pass1"))
	test.ErrorEqual(t, response.ErrInvalidPassword, login("nobody", "passw0rdx"))
}

func TestMe(t *testing.T) {
	db := test.NewDB(t)
	u := test.CreateUser(t, db, "carol")

	resp := test.DoRequest(t, GetMe, test.Request{Method: http.MethodGet, Path: "/user/me", UserID: u.ID})
	test.NoError(t, resp)
	var me model.User
	test.DecodeData(t, resp, &me)
	assert.Equal(t, "carol", me.Username)
	assert.Equal(t, u.Email, me.Email)

	resp = test.DoRequest(t, UpdateMe, test.Request{
		Method: http.MethodPut,
		Path:   "/user/me",
		UserID: u.ID,
		Body:   map[string]any{"bio": "  builder  ", "wechat": "carol_wx"},
	})
	test.NoError(t, resp)
	test.DecodeData(t, resp, &me)
	assert.Equal(t, "builder", me.Bio)
	assert.Equal(t, "carol_wx", me.WeChat)
	assert.Equal(t, u.Name, me.Name)

	test.ErrorEqual(t, response.ErrTokenInvalid, test.DoRequest(t, GetMe, test.Request{Method: http.MethodGet, Path: "/user/me", UserID: 9999}))
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"undercover_web/internal/utils"
)

func newAuthTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("userID")})
	})
	r.GET("/admin", AuthMiddleware(), AdminMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func doRequest(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	utils.InitJWT("test-secret", 1)
	r := newAuthTestRouter()

	t.Run("缺少 token", func(t *testing.T) {
		w := doRequest(r, "/me", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("無效 token", func(t *testing.T) {
		w := doRequest(r, "/me", "not-a-token")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("有效 token", func(t *testing.T) {
		token, err := utils.GenerateToken("u1", "小明", "player")
		require.NoError(t, err)
		w := doRequest(r, "/me", token)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "u1")
	})
}

func TestAdminMiddleware(t *testing.T) {
	utils.InitJWT("test-secret", 1)
	r := newAuthTestRouter()

	t.Run("一般玩家被拒絕", func(t *testing.T) {
		token, err := utils.GenerateToken("u1", "小明", "player")
		require.NoError(t, err)
		w := doRequest(r, "/admin", token)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("管理員放行", func(t *testing.T) {
		token, err := utils.GenerateToken("a1", "管理員", "admin")
		require.NoError(t, err)
		w := doRequest(r, "/admin", token)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

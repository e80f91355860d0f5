package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"golang.org/x/time/rate"

	"github.com/shopbook/shopbook-backend/internal/utils"
)

type fakeChecker struct {
	active bool
	err    error
	asked  uuid.UUID
}

func (f *fakeChecker) IsActive(_ context.Context, accountID uuid.UUID) (bool, error) {
	f.asked = accountID
	return f.active, f.err
}

type AuthTestSuite struct {
	suite.Suite
	router  *gin.Engine
	checker *fakeChecker
	account uuid.UUID
}

func (suite *AuthTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("test-secret")
	utils.SetJWTIssuer("shopbook-test")

	suite.account = uuid.New()
	suite.checker = &fakeChecker{active: true}

	suite.router = gin.New()
	suite.router.Use(I18nMiddleware())
	suite.router.GET("/open", AuthRequired(), func(c *gin.Context) {
		id, _ := utils.GetAccountIDFromContext(c)
		c.String(http.StatusOK, id.String())
	})
	suite.router.GET("/books", AuthRequired(), SubscriptionRequired(suite.checker), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

func (suite *AuthTestSuite) request(path, authorization string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest("GET", path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *AuthTestSuite) token(ttl time.Duration) string {
	token, err := utils.GenerateJWT(suite.account, "Corner Shop", ttl)
	suite.Require().NoError(err)
	return "Bearer " + token
}

func (suite *AuthTestSuite) TestValidToken() {
	w := suite.request("/open", suite.token(time.Hour))
	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.Equal(suite.T(), suite.account.String(), w.Body.String())
}

func (suite *AuthTestSuite) TestMissingHeader() {
	w := suite.request("/open", "")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *AuthTestSuite) TestMalformedHeader() {
	w := suite.request("/open", "Token abc")
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *AuthTestSuite) TestExpiredToken() {
	w := suite.request("/open", suite.token(-time.Minute))
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *AuthTestSuite) TestWrongIssuer() {
	token := suite.token(time.Hour)
	utils.SetJWTIssuer("someone-else")
	w := suite.request("/open", token)
	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *AuthTestSuite) TestActiveSubscription() {
	w := suite.request("/books", suite.token(time.Hour))
	assert.Equal(suite.T(), http.StatusNoContent, w.Code)
	assert.Equal(suite.T(), suite.account, suite.checker.asked)
}

func (suite *AuthTestSuite) TestExpiredSubscription() {
	suite.checker.active = false
	w := suite.request("/books", suite.token(time.Hour))
	assert.Equal(suite.T(), http.StatusPaymentRequired, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "SUBSCRIPTION_EXPIRED")
}

func (suite *AuthTestSuite) TestSubscriptionCheckFails() {
	suite.checker.err = errors.New("db down")
	w := suite.request("/books", suite.token(time.Hour))
	assert.Equal(suite.T(), http.StatusInternalServerError, w.Code)
}

func TestAuthSuite(t *testing.T) {
	suite.Run(t, new(AuthTestSuite))
}

func TestI18nMiddlewareDefaultsWithoutCatalog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(I18nMiddleware())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, utils.GetLangFromContext(c))
	})

	req, _ := http.NewRequest("GET", "/", nil)
	req.Header.Set("Accept-Language", "fa-IR,fa;q=0.9")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "en", w.Body.String())
}

func TestRateLimiterPerAccount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewRateLimiter(rate.Every(time.Hour), 2)
	first, second := uuid.New(), uuid.New()

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if c.GetHeader("X-Account") == "second" {
			c.Set("account_id", second)
		} else {
			c.Set("account_id", first)
		}
		c.Next()
	})
	r.Use(limiter.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	hit := func(account string) int {
		req, _ := http.NewRequest("GET", "/", nil)
		req.Header.Set("X-Account", account)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, hit("first"))
	assert.Equal(t, http.StatusNoContent, hit("first"))
	assert.Equal(t, http.StatusTooManyRequests, hit("first"))
	assert.Equal(t, http.StatusNoContent, hit("second"))
}

func TestExtractResource(t *testing.T) {
	id := uuid.NewString()

	assert.Equal(t, "sales", extractResourceType("/v1/sales/"+id))
	assert.Equal(t, "health", extractResourceType("/health"))
	assert.Equal(t, "unknown", extractResourceType("/"))
	assert.Equal(t, id, extractResourceID("/v1/invoices/"+id+"/html"))
	assert.Equal(t, "", extractResourceID("/v1/sales"))
}

package utils

import (
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1250", FormatAmount(1250, 0))
	assert.Equal(t, "12.50", FormatAmount(1250, 2))
	assert.Equal(t, "-0.05", FormatAmount(-5, 2))
	assert.Equal(t, "1.250", FormatAmount(1250, 3))
}

func TestGenerateInvoiceNumber(t *testing.T) {
	number, err := GenerateInvoiceNumber(time.Date(2024, time.January, 31, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^INV-20240131-[A-HJ-NP-Z2-9]{6}$`), number)
}

func testContext(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestGetDateRange(t *testing.T) {
	r, err := GetDateRange(testContext("from=2024-03-01&to=2024-03-31"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), r.From)
	assert.Equal(t, time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC), r.To, "a plain to date covers the whole day")

	r, err = GetDateRange(testContext("to=2024-03-31T12:00:00Z"))
	require.NoError(t, err)
	assert.True(t, r.From.IsZero())
	assert.Equal(t, time.Date(2024, time.March, 31, 12, 0, 0, 0, time.UTC), r.To)

	r, err = GetDateRange(testContext(""))
	require.NoError(t, err)
	assert.True(t, r.From.IsZero() && r.To.IsZero())
}

func TestGetDateRangeRejectsBadInput(t *testing.T) {
	_, err := GetDateRange(testContext("from=yesterday"))
	assert.Error(t, err)

	_, err = GetDateRange(testContext("from=2024-03-02&to=2024-03-01"))
	assert.Error(t, err)
}

func TestGetPaginationParams(t *testing.T) {
	params := GetPaginationParams(testContext("page=0&limit=1000&search=tea"))
	assert.GreaterOrEqual(t, params.Page, 1)
	assert.LessOrEqual(t, params.Limit, 100)
	assert.Equal(t, "tea", params.Search)
}

func TestJWTRoundTrip(t *testing.T) {
	SetJWTSecret("round-trip")
	SetJWTIssuer("shopbook")
	account := uuid.New()

	token, err := GenerateJWT(account, "Corner Shop", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, account.String(), claims.AccountID)
	assert.Equal(t, "Corner Shop", claims.DisplayName)

	SetJWTSecret("other")
	_, err = ValidateJWT(token)
	assert.Error(t, err)
}

type sample struct {
	Name  string `validate:"required,notblank"`
	Count int64  `validate:"gt=0"`
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(&sample{Name: "tea", Count: 1}))

	errs := GetValidationErrors(ValidateStruct(&sample{Name: "   ", Count: 0}))
	require.Len(t, errs, 2)
	assert.Equal(t, "name", errs[0].Field)
	assert.Equal(t, "notblank", errs[0].Tag)
	assert.Equal(t, "count", errs[1].Field)
	assert.Equal(t, "Count must be greater than 0", errs[1].Message)
}

func TestParseIDParam(t *testing.T) {
	c := testContext("")
	id := uuid.New()
	c.Params = gin.Params{{Key: "id", Value: id.String()}}

	got, ok := ParseIDParam(c, "id")
	assert.True(t, ok)
	assert.Equal(t, id, got)

	w := httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	c.Params = gin.Params{{Key: "id", Value: "nope"}}

	_, ok = ParseIDParam(c, "id")
	assert.False(t, ok)
	assert.Equal(t, 400, w.Code)
}

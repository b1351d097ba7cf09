package stocks

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fixadd/stok/pkg/metadata"
	"github.com/fixadd/stok/pkg/models"
	"github.com/fixadd/stok/pkg/roles"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newActionContext(t *testing.T, id, body string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/stocks/"+id+"/fault", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Params = gin.Params{{Key: "id", Value: id}}
	return c, w
}

func setActor(c *gin.Context) {
	c.Set("userID", "1")
	c.Set("username", "ayse.yilmaz")
	c.Set("role", roles.User.String())
}

func TestMarkFaultyRejectsMalformedBody(t *testing.T) {
	service, _, repo, _, _, audit := newTestService()
	handler := NewHandler(service)

	c, w := newActionContext(t, "71", "{not json")
	setActor(c)

	handler.MarkFaulty(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	repo.AssertNotCalled(t, "GetStockItem", mock.Anything)
	repo.AssertNotCalled(t, "UpdateStockStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "InsertStockLog", mock.Anything, mock.Anything)
	audit.AssertNotCalled(t, "Log", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkFaultyAcceptsEmptyBody(t *testing.T) {
	service, tx, repo, _, _, audit := newTestService()
	handler := NewHandler(service)

	item := &models.StockItem{
		ID:         71,
		Title:      "Yedek klavye",
		SourceType: metadata.SourceManual.String(),
		Status:     metadata.StockStatusPooled.String(),
		Quantity:   1,
	}
	repo.On("GetStockItem", 71).Return(item, nil)
	tx.On("RunInTransaction", mock.Anything).Return(nil)
	repo.On("UpdateStockStatus", mock.Anything, 71, metadata.StockStatusFaulty.String(), mock.Anything).Return(nil)
	repo.On("InsertStockLog", mock.Anything, mock.Anything).Return(nil)
	audit.On("Log", mock.Anything, mock.Anything, "fault", mock.Anything, item).Return(nil)

	c, w := newActionContext(t, "71", "")
	setActor(c)

	handler.MarkFaulty(c)

	assert.Equal(t, http.StatusOK, w.Code)
	repo.AssertExpectations(t)
	audit.AssertExpectations(t)
}

func TestScrapStockItemRejectsMalformedBody(t *testing.T) {
	service, _, repo, _, _, _ := newTestService()
	handler := NewHandler(service)

	c, w := newActionContext(t, "5", "{\"note\": ")
	setActor(c)

	handler.ScrapStockItem(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	repo.AssertNotCalled(t, "GetStockItem", mock.Anything)
	repo.AssertNotCalled(t, "UpdateStockStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

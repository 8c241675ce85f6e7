package status_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/comicshelf/internal/app/features/status"
	"github.com/dalemusser/comicshelf/internal/testutil"
	"go.uber.org/zap"
)

func TestServe_ReportsCounts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateProduction(ctx, "Thor", 1)
	fx.CreateProduction(ctx, "Thor 2", 2)

	h := status.NewHandler(db, zap.NewNop())
	rec := testutil.NewRecorder()
	status.Routes(h).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	rec.AssertStatus(t, http.StatusOK)

	var resp struct {
		Status string `json:"status"`
		Counts struct {
			Books       int64 `json:"books"`
			Productions int64 `json:"productions"`
		} `json:"counts"`
	}
	rec.DecodeJSON(t, &resp)
	if resp.Status != "ok" || resp.Counts.Productions != 2 || resp.Counts.Books != 0 {
		t.Errorf("response = %+v", resp)
	}
}

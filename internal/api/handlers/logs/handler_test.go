package logs

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/ginext"
)

func writeLogFile(t *testing.T, lines int) string {
	t.Helper()

	var b strings.Builder
	for i := 1; i <= lines; i++ {
		fmt.Fprintf(&b, "line %d\n", i)
	}

	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func doTail(t *testing.T, h *Handler, query string) *httptest.ResponseRecorder {
	t.Helper()

	r := ginext.New()
	r.GET("/logs", h.Tail)

	req := httptest.NewRequest(http.MethodGet, "/logs"+query, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestTail_DefaultLines(t *testing.T) {
	h := NewHandler(writeLogFile(t, 250))

	rec := doTail(t, h, "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	assert.Equal(t, 250, resp.TotalLines)
	assert.Equal(t, 100, resp.ReturnedLines)
	assert.Equal(t, "line 151", resp.Logs[0])
	assert.Equal(t, "line 250", resp.Logs[len(resp.Logs)-1])
}

func TestTail_ExplicitLines(t *testing.T) {
	h := NewHandler(writeLogFile(t, 50))

	rec := doTail(t, h, "?lines=10")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	assert.Equal(t, 50, resp.TotalLines)
	assert.Equal(t, 10, resp.ReturnedLines)
	assert.Equal(t, "line 41", resp.Logs[0])
}

func TestTail_FewerLinesThanRequested(t *testing.T) {
	h := NewHandler(writeLogFile(t, 5))

	rec := doTail(t, h, "?lines=100")
	resp := decodeResponse(t, rec)

	assert.Equal(t, 5, resp.TotalLines)
	assert.Equal(t, 5, resp.ReturnedLines)
}

func TestTail_ClampsRange(t *testing.T) {
	h := NewHandler(writeLogFile(t, 20))

	resp := decodeResponse(t, doTail(t, h, "?lines=0"))
	assert.Equal(t, 1, resp.ReturnedLines)

	h = NewHandler(writeLogFile(t, 1200))
	resp = decodeResponse(t, doTail(t, h, "?lines=5000"))
	assert.Equal(t, 1000, resp.ReturnedLines)
}

func TestTail_InvalidLinesParameter(t *testing.T) {
	h := NewHandler(writeLogFile(t, 10))

	rec := doTail(t, h, "?lines=ten")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTail_MissingFile(t *testing.T) {
	h := NewHandler(filepath.Join(t.TempDir(), "nope.log"))

	rec := doTail(t, h, "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	assert.Empty(t, resp.Logs)
	assert.Zero(t, resp.TotalLines)
}

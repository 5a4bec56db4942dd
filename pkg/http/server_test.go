package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type probeRequest struct {
	Symbol string `query:"symbol" validate:"required,max=4"`
	Format string `query:"format" default:"json" validate:"oneof=json csv"`
}

type probeHandler struct{}

func (probeHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ping", func(c echo.Context) error { return SuccessResponse(c, "pong") })
	e.GET("/panic", func(c echo.Context) error { panic("boom") })
	e.GET("/probe", func(c echo.Context) error {
		req := &probeRequest{}
		if verr := ReadAndValidateRequest(c, req); verr != nil {
			return BadRequestResponse(c, verr)
		}
		return SuccessResponse(c, req)
	})
	e.GET("/fail", func(c echo.Context) error {
		if c.QueryParam("app") != "" {
			return AppErrorResponse(c, GatewayTimeoutError("upstream slow"))
		}
		return AppErrorResponse(c, errors.New("plain"))
	})
}

func serve(s *Server, method, target string, hdr map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	return rec
}

func TestServer_Envelope(t *testing.T) {
	s := NewServer([]Handler{probeHandler{}})

	rec := serve(s, http.MethodGet, "/ping", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":200,"message":"OK","data":"pong"}`, rec.Body.String())
}

func TestServer_RecoversPanic(t *testing.T) {
	s := NewServer([]Handler{probeHandler{}})

	rec := serve(s, http.MethodGet, "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal Server Error")
}

func TestServer_Validation(t *testing.T) {
	s := NewServer([]Handler{probeHandler{}})

	rec := serve(s, http.MethodGet, "/probe", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"symbol"`)
	assert.Contains(t, rec.Body.String(), "symbol is required")

	rec = serve(s, http.MethodGet, "/probe?symbol=TOOLONG", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "symbol must be at most 4 characters")

	rec = serve(s, http.MethodGet, "/probe?symbol=IBM", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":200,"message":"OK","data":{"Symbol":"IBM","Format":"json"}}`, rec.Body.String())
}

func TestServer_AppErrors(t *testing.T) {
	s := NewServer([]Handler{probeHandler{}})

	rec := serve(s, http.MethodGet, "/fail?app=1", nil)
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_UPSTREAM_TIMEOUT")

	rec = serve(s, http.MethodGet, "/fail", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestServer_CORSPreflight(t *testing.T) {
	s := NewServer([]Handler{probeHandler{}})

	rec := serve(s, http.MethodOptions, "/ping", map[string]string{echo.HeaderOrigin: "http://example.com"})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://example.com", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))

	s = NewServer([]Handler{probeHandler{}}, WithCORS(false))
	rec = serve(s, http.MethodGet, "/ping", map[string]string{echo.HeaderOrigin: "http://example.com"})
	assert.Empty(t, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestServer_MetricsEndpoint(t *testing.T) {
	s := NewServer([]Handler{probeHandler{}}, WithMetricsPath("/metrics"))
	serve(s, http.MethodGet, "/ping", nil)

	rec := serve(s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `tapull_http_requests_total{method="GET",route="/ping",status="200"}`)

	s = NewServer([]Handler{probeHandler{}}, WithMetricsPath(""))
	rec = serve(s, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

package server_test

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rezonia/nfe-converter/internal/processor"
	"github.com/rezonia/nfe-converter/internal/server"
)

func newTestServer() *server.Server {
	config := &server.Config{
		Address:      ":8080",
		MaxBodyBytes: 1 << 20,
		Debug:        true,
	}
	return server.NewServer(config)
}

func sampleNFe(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "parser", "xml", "testdata", "nfe_sample.xml"))
	require.NoError(t, err)
	return data
}

func post(srv *server.Server, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/xml")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "ok", response["status"])
	assert.NotEmpty(t, response["time"])
	assert.NotEmpty(t, w.Header().Get(server.RequestIDHeader))
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(server.RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(server.RequestIDHeader))
}

func TestParseEndpoint(t *testing.T) {
	srv := newTestServer()

	w := post(srv, "/api/v1/parse", sampleNFe(t))
	assert.Equal(t, http.StatusOK, w.Code)

	var response server.ParseResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	assert.Equal(t, "xml", response.Method)
	require.NotNil(t, response.Invoice)
	assert.Equal(t, "1234", response.Invoice.Number)
	assert.Len(t, response.Invoice.Items, 2)
	assert.Len(t, response.Invoice.Payments, 2)
	assert.Equal(t, "Instant Payment", response.Invoice.Payments[0].Method)
}

func TestParseEndpoint_EmptyBody(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/parse", nil)
	w := httptest.NewRecorder()

	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseEndpoint_PipelineErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		kind string
	}{
		{"malformed", "not xml", "malformed_xml"},
		{"not an NF-e", "<CTe><infCte/></CTe>", "structure_not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := post(newTestServer(), "/api/v1/parse", []byte(tt.body))
			assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

			var response server.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(t, tt.kind, response.Kind)
			assert.NotEmpty(t, response.Error)
		})
	}
}

func TestParseEndpoint_TooLarge(t *testing.T) {
	srv := server.NewServer(&server.Config{MaxBodyBytes: 64})

	w := post(srv, "/api/v1/parse", []byte("<a>"+strings.Repeat("x", 200)+"</a>"))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestConvertEndpoint(t *testing.T) {
	srv := newTestServer()

	w := post(srv, "/api/v1/convert", sampleNFe(t))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="1234.xlsx"`)
	assert.Contains(t, w.Header().Get("Content-Type"), "spreadsheetml")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Items", "Payments"}, f.GetSheetList())
}

func TestPreviewEndpoint(t *testing.T) {
	srv := newTestServer()

	w := post(srv, "/api/v1/preview", sampleNFe(t))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	body := w.Body.String()
	assert.Contains(t, body, "NF-e 1234")
	assert.Contains(t, body, "R$ 37,95")
	assert.Contains(t, body, "Instant Payment")
}

func TestValidateEndpoint(t *testing.T) {
	srv := newTestServer()

	w := post(srv, "/api/v1/validate", sampleNFe(t))
	assert.Equal(t, http.StatusOK, w.Code)

	var response server.ValidationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response.Valid)
	assert.Empty(t, response.Errors)
}

func TestValidateEndpoint_InvalidXML(t *testing.T) {
	w := post(newTestServer(), "/api/v1/validate", []byte("<broken"))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var response server.ValidationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.False(t, response.Valid)
	assert.Len(t, response.Errors, 1)
}

func TestInfoEndpoint(t *testing.T) {
	w := post(newTestServer(), "/api/v1/info", sampleNFe(t))
	require.Equal(t, http.StatusOK, w.Code)

	var response server.InfoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "4.00", response.Version)
	assert.Equal(t, "NF-e", response.Model)
	assert.Equal(t, "homologation", response.Environment)
	assert.True(t, response.Authorized)
	assert.Equal(t, 2, response.Items)
}

func zipBody(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestBatchEndpoint(t *testing.T) {
	body := zipBody(t, map[string][]byte{"a.xml": sampleNFe(t), "bad.xml": []byte("junk")})

	w := post(newTestServer(), "/api/v1/batch", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, w.Header().Values("X-Processing-Issue"), 1)

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Items")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, "Access Key", rows[0][0])
}

func TestBatchEndpoint_NoValidDocuments(t *testing.T) {
	body := zipBody(t, map[string][]byte{"bad.xml": []byte("junk"), "other.xml": []byte("<root/>")})

	w := post(newTestServer(), "/api/v1/batch", body)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var response server.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "no valid NF-e documents in archive", response.Error)
	assert.Len(t, response.Warnings, 2)
}

func TestBatchEndpoint_NoXMLEntries(t *testing.T) {
	body := zipBody(t, map[string][]byte{"readme.txt": []byte("hello")})

	w := post(newTestServer(), "/api/v1/batch", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBatchEndpoint_EntryTooLarge(t *testing.T) {
	srv := server.NewServer(&server.Config{
		MaxBodyBytes: 1 << 20,
		ZipLimits:    processor.ZipLimits{MaxEntryBytes: 64 << 10},
	})
	big := append([]byte("<NFe>"), bytes.Repeat([]byte(" "), 4<<20)...)
	body := zipBody(t, map[string][]byte{"a.xml": big})
	require.Less(t, len(body), 1<<20, "compressed archive fits the body limit")

	w := post(srv, "/api/v1/batch", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestBatchEndpoint_NotZip(t *testing.T) {
	w := post(newTestServer(), "/api/v1/batch", sampleNFe(t))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func validRequest() map[string]interface{} {
	return map[string]interface{}{
		"initial_capital": 100000.0,
		"public_weights":  map[string]float64{"SPY": 0.5, "TLT": 0.5},
		"returns_data": map[string][]float64{
			"SPY": {0.01, -0.005, 0.007, 0.002, -0.006, 0.004},
			"TLT": {-0.002, 0.003, 0.001, -0.001, 0.002, 0.0},
		},
		"private_commitments": []map[string]interface{}{
			{"commitment": 20000.0, "start_month": 0},
		},
		"horizon_months": 24,
		"num_paths":      1,
		"rebalancing_policy": map[string]interface{}{
			"policy":          "periodic",
			"interval_months": 3,
		},
		"seed": 7,
	}
}

func post(t *testing.T, server *Server, body interface{}, header string) *httptest.ResponseRecorder {
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/simulate", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)
	return rec
}

func TestSimulateOK(t *testing.T) {
	server := NewServer("")
	rec := post(t, server, validRequest(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Status string `json:"status"`
		Result struct {
			Paths []struct {
				States []struct {
					Public  float64 `json:"public"`
					Private float64 `json:"private"`
					Cash    float64 `json:"cash"`
					Total   float64 `json:"total"`
				} `json:"states"`
			} `json:"paths"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "success", resp.Status)
	require.Len(t, resp.Result.Paths, 1)
	require.Len(t, resp.Result.Paths[0].States, 25)

	for _, s := range resp.Result.Paths[0].States {
		require.InDelta(t, s.Total, s.Public+s.Private+s.Cash, 1e-9)
	}
}

func TestSimulateBadConfig(t *testing.T) {
	server := NewServer("")
	body := validRequest()
	body["public_weights"] = map[string]float64{"SPY": 0.8}

	rec := post(t, server, body, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotContains(t, resp, "result")
}

func TestSimulateMalformedJSON(t *testing.T) {
	server := NewServer("")
	req := httptest.NewRequest(http.MethodPost, "/v1/simulate", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthentication(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("abcd1234.secret"), bcrypt.MinCost)
	require.NoError(t, err)

	type testCases struct {
		name   string
		header string
		code   int
	}

	for _, test := range []testCases{
		{name: "NO_HEADER", header: "", code: http.StatusUnauthorized},
		{name: "BAD_FORMAT", header: "abcd1234.secret", code: http.StatusUnauthorized},
		{name: "WRONG_TYPE", header: "basic abcd1234.secret", code: http.StatusUnauthorized},
		{name: "WRONG_KEY", header: "bearer wrong.key", code: http.StatusUnauthorized},
		{name: "VALID", header: "bearer abcd1234.secret", code: http.StatusOK},
	} {
		t.Run(test.name, func(t *testing.T) {
			server := NewServer(string(hash))
			rec := post(t, server, validRequest(), test.header)
			require.Equal(t, test.code, rec.Code)
		})
	}
}

func TestRateLimit(t *testing.T) {
	server := NewServer("")
	ok, limited := 0, 0
	for i := 0; i < 5; i++ {
		rec := post(t, server, validRequest(), "")
		switch rec.Code {
		case http.StatusOK:
			ok++
		case http.StatusTooManyRequests:
			limited++
		}
	}
	require.Greater(t, ok, 0)
	require.Greater(t, limited, 0)
}

func TestHealth(t *testing.T) {
	server := NewServer("")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

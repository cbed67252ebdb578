package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
)

type apiResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func performRequest(router http.Handler, method, path string, headers map[string]string) (*httptest.ResponseRecorder, apiResponse) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	router.ServeHTTP(rec, req)

	var resp apiResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &resp)
	return rec, resp
}

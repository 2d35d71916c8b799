package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mnehpets/queryserve/routing"
)

func okService(body string) routing.Service {
	return routing.ServiceFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	})
}

func appendTag(tag string, order *[]string) Layer {
	return func(next routing.Service) routing.Service {
		return routing.ServiceFunc(func(w http.ResponseWriter, r *http.Request) {
			*order = append(*order, tag)
			next.Call(w, r)
		})
	}
}

func TestChain_FirstLayerOutermost(t *testing.T) {
	var order []string
	svc := Chain(okService("x"), appendTag("a", &order), appendTag("b", &order), appendTag("c", &order))

	svc.Call(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestChained_ComposesToOneLayer(t *testing.T) {
	var order []string
	layer := Chained(appendTag("outer", &order), appendTag("inner", &order))
	svc := layer(okService("x"))

	svc.Call(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestStatusWriter_CapturesStatusAndSize(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := &statusWriter{ResponseWriter: rec}

	sw.WriteHeader(http.StatusBadRequest)
	_, _ = sw.Write([]byte("oops"))

	assert.Equal(t, http.StatusBadRequest, sw.statusOrDefault())
	assert.Equal(t, 4, sw.size)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusWriter_ImplicitOK(t *testing.T) {
	sw := &statusWriter{ResponseWriter: httptest.NewRecorder()}
	_, _ = sw.Write([]byte("body"))
	assert.Equal(t, http.StatusOK, sw.statusOrDefault())

	unwritten := &statusWriter{ResponseWriter: httptest.NewRecorder()}
	assert.Equal(t, http.StatusOK, unwritten.statusOrDefault())
}

func TestAPIHeaders(t *testing.T) {
	svc := APIHeaders()(okService("x"))
	rec := httptest.NewRecorder()
	svc.Call(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestAPIHeaders_DoesNotOverride(t *testing.T) {
	svc := APIHeaders()(okService("x"))
	rec := httptest.NewRecorder()
	rec.Header().Set("Cache-Control", "max-age=60")
	svc.Call(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.Equal(t, "max-age=60", rec.Header().Get("Cache-Control"))
}

package routing

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoute_ErasesConcreteType(t *testing.T) {
	called := false
	rt := NewRoute(ServiceFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	rt.Call(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	assert.True(t, called)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestRoute_CopiesShareTheService(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
	)
	rt := NewRoute(ServiceFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))

	var wg sync.WaitGroup
	for range 8 {
		cp := rt // independent copy, shared implementation
		wg.Add(1)
		go func() {
			defer wg.Done()
			cp.Call(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
		}()
	}
	wg.Wait()

	assert.Equal(t, 8, calls)
}

func TestRoute_IsItselfAService(t *testing.T) {
	var _ Service = Route{}

	inner := NewRoute(ServiceFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	outer := NewRoute(inner)

	rec := httptest.NewRecorder()
	outer.Call(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestWriteMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteMethodNotAllowed(rec, http.MethodPost)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
	assert.Empty(t, rec.Body.String())
}

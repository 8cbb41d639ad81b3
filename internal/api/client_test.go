package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"straycare/internal/notify"
)

type fakeTokens struct {
	mu      sync.Mutex
	token   string
	cleared bool
}

func (f *fakeTokens) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeTokens) ClearAuth() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.cleared = true
}

func envelope(data string) string {
	return `{"code":200,"message":"OK","data":` + data + `,"timestamp":1700000000}`
}

func TestBearerHeaderAttachedWhenTokenPresent(t *testing.T) {
	var gotAuth, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		w.Write([]byte(envelope(`{"ok":true}`)))
	}))
	defer srv.Close()

	tokens := &fakeTokens{token: "jwt-abc"}
	c := New(srv.URL, WithTokenSource(tokens))
	require.NoError(t, c.Post(context.Background(), "/animals", map[string]string{"a": "b"}, nil))
	assert.Equal(t, "Bearer jwt-abc", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
}

func TestNoBearerHeaderWithoutToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(envelope("null")))
	}))
	defer srv.Close()

	c := New(srv.URL, WithTokenSource(&fakeTokens{}))
	require.NoError(t, c.Get(context.Background(), "/animals", nil, nil))
	assert.Empty(t, gotAuth)
}

func TestUnauthorizedClearsSessionRegardlessOfEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":401,"message":"token expired"}`))
	}))
	defer srv.Close()

	tokens := &fakeTokens{token: "stale"}
	spy := &notify.Spy{}
	c := New(srv.URL, WithTokenSource(tokens), WithNotifier(spy))

	err := c.Get(context.Background(), "/care/records", nil, nil)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.True(t, tokens.cleared, "401 must clear the session")
	assert.Empty(t, tokens.Token())
	assert.Contains(t, spy.LastError(), "Session expired")
}

func TestForbiddenNotifiesWithoutClearing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	tokens := &fakeTokens{token: "still-good"}
	spy := &notify.Spy{}
	c := New(srv.URL, WithTokenSource(tokens), WithNotifier(spy))

	err := c.Delete(context.Background(), "/animals/1", nil)
	require.Error(t, err)
	assert.False(t, tokens.cleared, "403 must not clear the session")
	assert.Equal(t, "still-good", tokens.Token())
	assert.Contains(t, spy.LastError(), "Access denied")
}

func TestServerErrorNotifiesGeneric(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	spy := &notify.Spy{}
	c := New(srv.URL, WithNotifier(spy))
	require.Error(t, c.Get(context.Background(), "/animals/stats", nil, nil))
	assert.Contains(t, spy.LastError(), "Server error")
}

func TestBackendMessageCarriedVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"code":409,"message":"animal already reported","data":null,"timestamp":1}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.Post(context.Background(), "/animals", nil, nil)
	require.Error(t, err)
	assert.Equal(t, "animal already reported", MessageOf(err, "fallback"))
}

func TestMessageOfFallback(t *testing.T) {
	assert.Equal(t, "fallback", MessageOf(context.Canceled, "fallback"))
}

func TestEnvelopeDataDecoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(envelope(`{"id":"a1","species":"DOG"}`)))
	}))
	defer srv.Close()

	var out struct {
		ID      string `json:"id"`
		Species string `json:"species"`
	}
	c := New(srv.URL)
	require.NoError(t, c.Get(context.Background(), "/animals/a1", nil, &out))
	assert.Equal(t, "a1", out.ID)
	assert.Equal(t, "DOG", out.Species)
}

func TestQueryParamsEncoded(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(envelope("[]")))
	}))
	defer srv.Close()

	q := url.Values{}
	q.Set("lat", "12.97")
	q.Set("lon", "77.59")
	q.Set("radius", "5")
	c := New(srv.URL)
	require.NoError(t, c.Get(context.Background(), "/animals/nearby", q, nil))
	assert.Equal(t, "12.97", gotQuery.Get("lat"))
	assert.Equal(t, "5", gotQuery.Get("radius"))
}

func TestPostMultipartLeavesBoundaryToWriter(t *testing.T) {
	dir := t.TempDir()
	img1 := filepath.Join(dir, "one.jpg")
	img2 := filepath.Join(dir, "two.jpg")
	require.NoError(t, os.WriteFile(img1, []byte("jpeg-one"), 0o644))
	require.NoError(t, os.WriteFile(img2, []byte("jpeg-two"), 0o644))

	var contentType string
	var fields map[string][]string
	var fileNames []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		fields = r.MultipartForm.Value
		for _, fhs := range r.MultipartForm.File["images"] {
			fileNames = append(fileNames, fhs.Filename)
		}
		w.Write([]byte(envelope(`{"id":"a9"}`)))
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.PostMultipart(context.Background(), "/animals",
		map[string]string{"species": "CAT", "breed": "tabby"},
		[]FilePart{{Field: "images", Path: img1}, {Field: "images", Path: img2}},
		nil,
	)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(contentType, "multipart/form-data; boundary="), contentType)
	assert.Equal(t, []string{"CAT"}, fields["species"])
	assert.Equal(t, []string{"tabby"}, fields["breed"])
	assert.ElementsMatch(t, []string{"one.jpg", "two.jpg"}, fileNames)
}

func TestRequestIDHeaderSet(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Request-Id")
		w.Write([]byte(envelope("null")))
	}))
	defer srv.Close()

	c := New(srv.URL)
	require.NoError(t, c.Get(context.Background(), "/auth/me", nil, nil))
	assert.NotEmpty(t, got)
}

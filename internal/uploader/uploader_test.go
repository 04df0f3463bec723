package uploader

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadPutsBlobWithToken(t *testing.T) {
	blob := bytes.Repeat([]byte("x"), 4096)

	var gotMethod, gotPath, gotAuth string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"key":"ImageMessage/stored.png"}`))
	}))
	defer server.Close()

	client := New(server.URL)
	key, err := client.Upload(context.Background(), "tok", "ImageMessage/u1_1.png", blob, nil)
	require.NoError(t, err)

	assert.Equal(t, "ImageMessage/stored.png", key)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/ImageMessage/u1_1.png", gotPath)
	assert.Equal(t, "UpToken tok", gotAuth)
	assert.Equal(t, blob, gotBody)
}

func TestUploadFallsBackToRequestedKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	key, err := New(server.URL).Upload(context.Background(), "tok", "ImageMessage/u1_2.png", []byte("data"), nil)
	require.NoError(t, err)
	assert.Equal(t, "ImageMessage/u1_2.png", key)
}

func TestUploadReportsMonotonicProgress(t *testing.T) {
	blob := bytes.Repeat([]byte("x"), 64*1024)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
	}))
	defer server.Close()

	var observed []int
	_, err := New(server.URL).Upload(context.Background(), "tok", "k", blob, func(percent int) {
		observed = append(observed, percent)
	})
	require.NoError(t, err)

	require.NotEmpty(t, observed)
	assert.Equal(t, 100, observed[len(observed)-1])
	for i := 1; i < len(observed); i++ {
		assert.Greater(t, observed[i], observed[i-1])
	}
	for _, p := range observed {
		assert.GreaterOrEqual(t, p, 0)
		assert.LessOrEqual(t, p, 100)
	}
}

func TestUploadRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := New(server.URL).Upload(context.Background(), "bad", "k", []byte("data"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 401")
}

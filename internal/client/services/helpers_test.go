package services

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/gophtasks/internal/client/credentials"
	"github.com/dmitrijs2005/gophtasks/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophtasks/internal/client/storage"
)

type call struct {
	method string
	path   string
	body   any
}

// fakeTransport answers each request through handle and records it. The
// handler fills out by returning a value that is JSON round-tripped into it.
type fakeTransport struct {
	mu     sync.Mutex
	calls  []call
	handle func(method, path string, body any) (any, error)
}

func (f *fakeTransport) do(method, path string, body, out any) error {
	f.mu.Lock()
	f.calls = append(f.calls, call{method: method, path: path, body: body})
	f.mu.Unlock()

	resp, err := f.handle(method, path, body)
	if err != nil {
		return err
	}
	if out == nil || resp == nil {
		return nil
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (f *fakeTransport) Get(_ context.Context, path string, out any) error {
	return f.do("GET", path, nil, out)
}

func (f *fakeTransport) Post(_ context.Context, path string, body, out any) error {
	return f.do("POST", path, body, out)
}

func (f *fakeTransport) Put(_ context.Context, path string, body, out any) error {
	return f.do("PUT", path, body, out)
}

func (f *fakeTransport) Delete(_ context.Context, path string, out any) error {
	return f.do("DELETE", path, nil, out)
}

func (f *fakeTransport) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func newCredentials(t *testing.T) *credentials.Store {
	t.Helper()
	db, err := storage.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return credentials.NewStore(metadata.NewSQLiteRepository(db))
}

func envFunc(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

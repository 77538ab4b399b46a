package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"storefront-sync/internal/core/domain"
)

// call is one request seen by fakeGateway
type call struct {
	Method string
	Path   string
	Body   any
	Query  url.Values
}

// route answers a request; a nil response leaves out untouched
type route func(c call) (any, error)

// fakeGateway dispatches requests to scripted routes keyed "METHOD path"
type fakeGateway struct {
	mu     sync.Mutex
	routes map[string]route
	calls  []call
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{routes: make(map[string]route)}
}

func (g *fakeGateway) on(method, path string, r route) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.routes[method+" "+path] = r
}

func (g *fakeGateway) reply(method, path string, resp any) {
	g.on(method, path, func(call) (any, error) { return resp, nil })
}

func (g *fakeGateway) fail(method, path string, status int, message string) {
	g.on(method, path, func(call) (any, error) {
		return nil, &domain.ApiError{StatusCode: status, Message: message}
	})
}

func (g *fakeGateway) Request(ctx context.Context, method, path string, body any, query url.Values, out any) error {
	c := call{Method: method, Path: path, Body: body, Query: query}

	g.mu.Lock()
	g.calls = append(g.calls, c)
	r, ok := g.routes[method+" "+path]
	g.mu.Unlock()

	if !ok {
		return &domain.ApiError{StatusCode: 404, Message: fmt.Sprintf("no route for %s %s", method, path)}
	}
	resp, err := r(c)
	if err != nil {
		return err
	}
	if resp == nil || out == nil {
		return nil
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

func (g *fakeGateway) count(method, path string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := 0
	for _, c := range g.calls {
		if c.Method == method && c.Path == path {
			n++
		}
	}
	return n
}

func (g *fakeGateway) total() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

// memoryPersistence is an in-memory SessionPersistence with failure hooks
type memoryPersistence struct {
	mu      sync.Mutex
	cred    *domain.Credential
	saves   int
	saveErr error
}

func (m *memoryPersistence) Load(ctx context.Context) (*domain.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cred == nil {
		return nil, nil
	}
	cp := *m.cred
	return &cp, nil
}

func (m *memoryPersistence) Save(ctx context.Context, cred domain.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.cred = &cred
	return nil
}

func (m *memoryPersistence) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cred = nil
	return nil
}

func (m *memoryPersistence) stored() *domain.Credential {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cred == nil {
		return nil
	}
	cp := *m.cred
	return &cp
}

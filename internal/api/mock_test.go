package api

import (
	"io"
	"sync"

	fhttp "github.com/bogdanfinn/fhttp"
)

// MockResponseBody is a ReadCloser that simulates reading response data
type MockResponseBody struct {
	data   []byte
	pos    int
	closed bool
}

// NewMockResponseBody creates a new MockResponseBody with the given data
func NewMockResponseBody(data []byte) *MockResponseBody {
	return &MockResponseBody{data: data, pos: 0}
}

// Read implements the io.Reader interface
func (m *MockResponseBody) Read(p []byte) (n int, err error) {
	if m.pos >= len(m.data) {
		return 0, io.EOF
	}
	n = copy(p, m.data[m.pos:])
	m.pos += n
	return n, nil
}

// Close implements the io.Closer interface
func (m *MockResponseBody) Close() error {
	m.closed = true
	return nil
}

// MockHttpClient is a mock transport recording every request
type MockHttpClient struct {
	mu       sync.Mutex
	Response *fhttp.Response
	Err      error
	DoFunc   func(req *fhttp.Request) (*fhttp.Response, error)

	Requests []*fhttp.Request
	Bodies   [][]byte
}

// Do records the request and returns the configured response
func (m *MockHttpClient) Do(req *fhttp.Request) (*fhttp.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
	}

	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.Bodies = append(m.Bodies, body)
	fn := m.DoFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(req)
	}
	return m.Response, m.Err
}

// LastRequest returns the most recent request
func (m *MockHttpClient) LastRequest() (*fhttp.Request, []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Requests) == 0 {
		return nil, nil
	}
	i := len(m.Requests) - 1
	return m.Requests[i], m.Bodies[i]
}

// NewMockHttpClient creates a new MockHttpClient with a fixed response
func NewMockHttpClient(body []byte, statusCode int) *MockHttpClient {
	return &MockHttpClient{
		Response: &fhttp.Response{
			StatusCode: statusCode,
			Body:       NewMockResponseBody(body),
			Header:     make(fhttp.Header),
		},
	}
}

// NewMockHttpClientWithError creates a new MockHttpClient that returns an error
func NewMockHttpClientWithError(err error) *MockHttpClient {
	return &MockHttpClient{
		Response: nil,
		Err:      err,
	}
}

package resthttp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// HeaderKeyRequestID request id header key
	headerKeyRequestID = "X-Request-Id"
)

var runOnce sync.Once
var restyClient *resty.Client

// Error non 2xx response
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Body)
}

// Client resty client
func Client() *resty.Client {
	runOnce.Do(func() {
		restyClient = resty.New().
			SetHeader("Content-Type", "application/json").
			SetHeader("Charset", "utf-8").
			SetTimeout(10 * time.Second)
	})

	return restyClient
}

// Request new resty request
func Request(ctx context.Context) *resty.Request {
	return Client().R().SetContext(ctx)
}

// WithRequestID resty request with request id
func WithRequestID(ctx context.Context, requestID string) *resty.Request {
	return Request(ctx).SetHeader(headerKeyRequestID, requestID)
}

// Get get url and decode the json body into resp
func Get(ctx context.Context, url string, resp interface{}) error {
	return Execute(Request(ctx), http.MethodGet, url, nil, resp)
}

// Execute do network request
func Execute(request *resty.Request, method, url string, body interface{}, resp interface{}) error {
	if body != nil {
		request = request.SetBody(body)
	}

	r, err := request.Execute(strings.ToUpper(method), url)
	if err != nil {
		return err
	}

	return ParseResponse(r, resp)
}

// ParseResponse parse response
func ParseResponse(r *resty.Response, obj interface{}) error {
	if !r.IsSuccess() {
		return &Error{StatusCode: r.StatusCode(), Body: string(r.Body())}
	}

	if obj == nil {
		return nil
	}

	return json.Unmarshal(r.Body(), obj)
}

package webapp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ZebulonRouseFrantzich/appshell/internal/config"
)

// HeaderRequestID carries the request identifier on requests and responses.
const HeaderRequestID = "X-Request-Id"

type ctxKey int

const rootKey ctxKey = iota

// App is a configured web application.
type App struct {
	Registry    *Registry
	RootFactory RootFactory

	router chi.Router
}

// New builds the application's router from its registry. A nil factory
// uses DefaultRootFactory. Routes the router rejects are reported as an
// error naming the route.
func New(reg *Registry, rf RootFactory) (*App, error) {
	if rf == nil {
		rf = DefaultRootFactory
	}
	a := &App{Registry: reg, RootFactory: rf}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(a.withRoot)
	for _, rt := range reg.Routes {
		if err := mount(r, rt); err != nil {
			return nil, err
		}
	}
	a.router = r
	return a, nil
}

// mount registers a static route. chi panics on patterns it cannot parse.
func mount(r chi.Router, rt config.Route) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("route %s %s: %v", rt.Method, rt.Path, p)
		}
	}()
	r.Method(rt.Method, rt.Path, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(rt.Status)
		_, _ = io.WriteString(w, rt.Body)
	}))
	return nil
}

// ServeHTTP dispatches req to the matching route.
func (a *App) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	a.router.ServeHTTP(w, req)
}

// Response is the recorded result of an in-process request.
type Response struct {
	Status int
	Header http.Header
	Body   string
}

func (r *Response) String() string {
	return fmt.Sprintf("%d %s", r.Status, http.StatusText(r.Status))
}

// Do serves req in-process and records the response.
func (a *App) Do(req *http.Request) *Response {
	rec := httptest.NewRecorder()
	a.ServeHTTP(rec, req)
	return &Response{Status: rec.Code, Header: rec.Header(), Body: rec.Body.String()}
}

// Get issues an in-process GET for path.
func (a *App) Get(path string) (*Response, error) {
	return a.Request(http.MethodGet, path)
}

// Request issues an in-process request with an empty body.
func (a *App) Request(method, path string) (*Response, error) {
	req, err := http.NewRequest(method, "http://localhost"+path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	return a.Do(req), nil
}

// Routes lists "METHOD path" for every registered route.
func (a *App) Routes() []string {
	var out []string
	_ = chi.Walk(a.router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		out = append(out, method+" "+route)
		return nil
	})
	return out
}

func (a *App) String() string {
	return fmt.Sprintf("app %q", a.Registry.Name)
}

// RootFromContext returns the root created for the request being served.
func RootFromContext(ctx context.Context) (*Root, bool) {
	r, ok := ctx.Value(rootKey).(*Root)
	return r, ok
}

func (a *App) withRoot(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		root := a.RootFactory(req)
		next.ServeHTTP(w, req.WithContext(context.WithValue(req.Context(), rootKey, root)))
	})
}

// requestID assigns a request ID if the request has none and echoes it on
// the response.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := req.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.New().String()
			req.Header.Set(HeaderRequestID, id)
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, req)
	})
}

// NewRequest builds the request object handed to the shell: a GET for
// baseURL carrying a fresh request ID.
func NewRequest(ctx context.Context, baseURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set(HeaderRequestID, uuid.New().String())
	return req, nil
}

package router

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/intranet-lab/backend/config"
	"github.com/intranet-lab/backend/pkg/errorx"
	"github.com/intranet-lab/backend/pkg/ws"
	"github.com/intranet-lab/backend/pkg/xcontext"
	"github.com/mitchellh/mapstructure"
	"github.com/rs/cors"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before the handler. It can derive a new context (for
// example, attaching the authenticated user id) or reject the request.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc runs after the handler with the handler's error, if any.
type CloserFunc func(ctx context.Context, err error)

type Router struct {
	ctx     context.Context
	mux     *http.ServeMux
	befores []MiddlewareFunc
	closers []CloserFunc
}

func New(ctx context.Context) *Router {
	return &Router{
		ctx: ctx,
		mux: http.NewServeMux(),
	}
}

func (r *Router) Before(middleware MiddlewareFunc) {
	r.befores = append(r.befores, middleware)
}

func (r *Router) AddCloser(closer CloserFunc) {
	r.closers = append(r.closers, closer)
}

func (r *Router) Handler(cfg config.ServerConfigs) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowCORS,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	return c.Handler(r.mux)
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.HandleFunc(pattern, wrapHandler(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.mux.HandleFunc(pattern, wrapHandler(r, http.MethodPost, handler))
}

// Websocket registers an endpoint that upgrades the request and serves the
// handler until it returns. The live ws.Client is available to the handler
// via xcontext.WSClient.
func Websocket[Request any](r *Router, pattern string, handler func(ctx context.Context, req *Request) error) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	r.mux.HandleFunc(pattern, func(w http.ResponseWriter, req *http.Request) {
		ctx, err := r.beginRequest(w, req)
		if err != nil {
			writeError(ctx, w, err)
			r.closeRequest(ctx, err)
			return
		}

		var modelReq Request
		if err := decodeQuery(req, &modelReq); err != nil {
			writeError(ctx, w, errorx.New(errorx.BadRequest, "Cannot parse request"))
			r.closeRequest(ctx, err)
			return
		}

		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot upgrade connection: %v", err)
			r.closeRequest(ctx, err)
			return
		}

		client := ws.NewClient(conn)
		defer client.Close()

		err = handler(xcontext.WithWSClient(ctx, client), &modelReq)
		r.closeRequest(ctx, err)
	})
}

func wrapHandler[Request, Response any](
	r *Router, method string, handler HandlerFunc[Request, Response],
) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != method {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		ctx, err := r.beginRequest(w, req)
		if err != nil {
			writeError(ctx, w, err)
			r.closeRequest(ctx, err)
			return
		}

		var modelReq Request
		switch method {
		case http.MethodGet:
			err = decodeQuery(req, &modelReq)
		case http.MethodPost:
			err = json.NewDecoder(req.Body).Decode(&modelReq)
		}

		if err != nil {
			writeError(ctx, w, errorx.New(errorx.BadRequest, "Cannot parse request"))
			r.closeRequest(ctx, err)
			return
		}

		resp, err := handler(ctx, &modelReq)
		if err != nil {
			writeError(ctx, w, err)
		} else if err := WriteJson(w, newResponse(resp)); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
		}

		r.closeRequest(ctx, err)
	}
}

func (r *Router) beginRequest(w http.ResponseWriter, req *http.Request) (context.Context, error) {
	ctx := xcontext.WithHTTPRequest(r.ctx, req)

	var err error
	for _, middleware := range r.befores {
		ctx, err = middleware(ctx)
		if err != nil {
			return ctx, err
		}
	}

	return ctx, nil
}

func (r *Router) closeRequest(ctx context.Context, err error) {
	for _, closer := range r.closers {
		closer(ctx, err)
	}
}

func decodeQuery(req *http.Request, v any) error {
	values := map[string]string{}
	for key := range req.URL.Query() {
		values[key] = req.URL.Query().Get(key)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           v,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(values)
}

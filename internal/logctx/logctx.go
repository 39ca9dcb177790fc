// Package logctx enriches slog records with request and query attributes
// carried on the context, so every log line emitted below a dispatch carries
// the same identifying fields without threading them explicitly.
package logctx

import (
	"context"
	"log/slog"
)

type Handler struct {
	slog.Handler
}

func (h Handler) Handle(ctx context.Context, r slog.Record) error {
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		r.AddAttrs(slog.Group("req",
			slog.String("id", rd.RequestID),
			slog.String("method", rd.Method),
			slog.String("url", rd.URL),
			slog.String("auth_method", rd.AuthMethod),
		))
	}

	if qd, ok := ctx.Value(queryDataKey{}).(*QueryData); ok {
		r.AddAttrs(slog.Group("query",
			slog.String("protocol", qd.Protocol),
			slog.String("base_url", qd.BaseURL),
		))
	}

	return h.Handler.Handle(ctx, r)
}

type requestDataKey struct{}

type RequestData struct {
	RequestID  string
	Method     string
	URL        string
	AuthMethod string
}

func WithRequestData(ctx context.Context, data *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, data)
}

type queryDataKey struct{}

type QueryData struct {
	Protocol string
	BaseURL  string
}

func WithQueryData(ctx context.Context, data *QueryData) context.Context {
	return context.WithValue(ctx, queryDataKey{}, data)
}

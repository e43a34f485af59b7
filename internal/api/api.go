package api

import (
	"encoding/json"
	"os"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/pixelrelay/image-convert/batch"
	"github.com/pixelrelay/image-convert/internal/converter"
	"github.com/pixelrelay/image-convert/internal/global"
	"github.com/pixelrelay/image-convert/internal/presets"
)

type convertResponse struct {
	Items     []batch.Item `json:"items"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
}

type errorResponse struct {
	Error     string `json:"error"`
	ErrorKind string `json:"error_kind"`
}

// New starts the REST server. A single POST /convert endpoint covers both
// single images and directories, switching on what the input path points at.
func New(gCtx global.Context) <-chan struct{} {
	done := make(chan struct{})

	srv := fasthttp.Server{
		Handler: func(ctx *fasthttp.RequestCtx) {
			defer func() {
				if err := recover(); err != nil {
					zap.S().Errorw("panic in api",
						"panic", err,
					)
					ctx.SetStatusCode(fasthttp.StatusInternalServerError)
				}
			}()

			switch string(ctx.Path()) {
			case "/convert":
				if !ctx.IsPost() {
					ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
					return
				}

				handleConvert(gCtx, ctx)
			case "/presets":
				writeJSON(ctx, fasthttp.StatusOK, presets.List())
			case "/health":
				ctx.SetStatusCode(fasthttp.StatusOK)
			default:
				ctx.SetStatusCode(fasthttp.StatusNotFound)
			}
		},
	}

	go func() {
		defer close(done)
		zap.S().Infow("API enabled",
			"bind", gCtx.Config().API.Bind,
		)

		if err := srv.ListenAndServe(gCtx.Config().API.Bind); err != nil {
			zap.S().Fatalw("failed to bind api",
				"error", err,
			)
		}
	}()

	go func() {
		<-gCtx.Done()

		_ = srv.Shutdown()
	}()

	return done
}

func handleConvert(gCtx global.Context, ctx *fasthttp.RequestCtx) {
	req := batch.Request{}
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, converter.ErrorKindInvalidConfig, err)
		return
	}

	if req.InputPath == "" {
		writeJSON(ctx, fasthttp.StatusBadRequest, errorResponse{
			Error:     "input_path is required",
			ErrorKind: converter.ErrorKindInvalidConfig.String(),
		})

		return
	}

	cfg, err := req.Resolve()
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, converter.KindOf(err), err)
		return
	}

	info, err := os.Stat(req.InputPath)
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, converter.ErrorKindIOError, err)
		return
	}

	var items []batch.Item

	if info.IsDir() {
		results, err := converter.ConvertDirectory(gCtx, req.InputPath, cfg, req.Workers)
		if err != nil {
			writeError(ctx, fasthttp.StatusBadRequest, converter.KindOf(err), err)
			return
		}

		items = batch.ItemsFromResults(results, req.Stats)
	} else {
		result, err := converter.ConvertFile(gCtx, req.InputPath, cfg)
		if err != nil {
			writeError(ctx, fasthttp.StatusBadRequest, converter.KindOf(err), err)
			return
		}

		items = []batch.Item{batch.ItemFromResult(result, req.Stats)}
	}

	resp := convertResponse{Items: items}
	for _, item := range items {
		if item.Error == "" {
			resp.Succeeded++
		} else {
			resp.Failed++
		}
	}

	// Per-item failures are part of a successful response.
	writeJSON(ctx, fasthttp.StatusOK, resp)
}

func writeError(ctx *fasthttp.RequestCtx, status int, kind converter.ErrorKind, err error) {
	writeJSON(ctx, status, errorResponse{
		Error:     err.Error(),
		ErrorKind: kind.String(),
	})
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		zap.S().Errorw("failed to marshal response",
			"error", err,
		)
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)

		return
	}

	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(b)
}

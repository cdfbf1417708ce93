// Package server exposes the completion client as a small JSON endpoint.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/diesi/ask/internal/openai"
)

// Completer turns one prompt into one answer.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type completeRequest struct {
	// Pointer so an empty prompt is accepted while a missing one is not.
	Prompt *string `json:"prompt" binding:"required"`
}

type completeResponse struct {
	Completion string `json:"completion"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New returns the router serving POST /v1/complete and GET /healthz.
func New(c Completer, log logrus.FieldLogger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/v1/complete", func(ctx *gin.Context) {
		var req completeRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, errorResponse{Error: "body must be a JSON object with a prompt string"})
			return
		}
		answer, err := c.Complete(ctx.Request.Context(), *req.Prompt)
		if err != nil {
			log.WithError(err).WithField("kind", openai.KindOf(err)).Warn("completion failed")
			ctx.JSON(statusFor(err), errorResponse{Error: err.Error()})
			return
		}
		ctx.JSON(http.StatusOK, completeResponse{Completion: answer})
	})
	return r
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, openai.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, openai.ErrCredential):
		return http.StatusInternalServerError
	case openai.KindOf(err) != "":
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"elapsed": time.Since(start),
		}).Info("request")
	}
}

// ListenAndServe serves handler on addr until ctx is done, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, handler http.Handler, log logrus.FieldLogger) error {
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("listening")
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

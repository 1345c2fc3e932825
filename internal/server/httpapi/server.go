// Package httpapi exposes the transfer service over HTTP: multipart uploads,
// metadata listing, content fetch, revocation and the audit log endpoint.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/gursmeep404/sharden/internal/logging"
	sc "github.com/gursmeep404/sharden/internal/server/config"
	"github.com/gursmeep404/sharden/internal/server/services"
)

type HTTPServer struct {
	address       string
	service       *services.TransferService
	logger        logging.Logger
	jwtSecret     []byte
	maxUploadSize int64
	auditLogLimit int
}

func NewHTTPServer(cfg *sc.Config, l logging.Logger, svc *services.TransferService) *HTTPServer {
	return &HTTPServer{
		address:       cfg.EndpointAddr,
		service:       svc,
		logger:        l.With("module", "http_server"),
		jwtSecret:     []byte(cfg.SecretKey),
		maxUploadSize: cfg.MaxUploadSize,
		auditLogLimit: cfg.AuditLogLimit,
	}
}

// Router builds the route tree. Exposed so tests can drive handlers through
// httptest without binding a socket.
func (s *HTTPServer) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/files", s.handleUpload)
		r.Get("/files", s.handleList)
		r.Get("/files/{fileID}/download", s.handleDownload)
		r.Get("/files/{fileID}/raw", s.handleRaw)
		r.Post("/files/{fileID}/revoke", s.handleRevoke)
		r.Get("/logs", s.handleLogs)
	})

	return r
}

func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		if err := srv.Shutdown(context.Background()); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gursmeep404/sharden/internal/common"
	"github.com/gursmeep404/sharden/internal/server/auth"
	"github.com/gursmeep404/sharden/internal/server/repositories/transfers"
	"github.com/gursmeep404/sharden/internal/server/services"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps service sentinels onto HTTP statuses. Expired and
// revoked get distinct 403 bodies so the caller always learns the reason.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrMissingField),
		errors.Is(err, common.ErrEmptyPayload):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrUnsupportedOperation):
		writeError(w, http.StatusBadRequest, "end-to-end encrypted transfer, use the raw endpoint")
	case errors.Is(err, common.ErrIntegrity):
		writeError(w, http.StatusBadRequest, "integrity check failed")
	case errors.Is(err, common.ErrExpired):
		writeError(w, http.StatusForbidden, "transfer expired")
	case errors.Is(err, common.ErrRevoked):
		writeError(w, http.StatusForbidden, "transfer revoked")
	case errors.Is(err, common.ErrNotFound):
		writeError(w, http.StatusNotFound, "transfer not found")
	case errors.Is(err, common.ErrBlobMissing):
		writeError(w, http.StatusNotFound, "encrypted blob missing")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// transferID validates the path parameter before it reaches the service.
func transferID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "fileID")
	if err := uuid.Validate(id); err != nil {
		return "", fmt.Errorf("invalid file id")
	}
	return id, nil
}

// senderIdentity resolves the upload sender: explicit form value first, then
// a verified bearer token. Empty means anonymous; the service fills the
// fallback label.
func (s *HTTPServer) senderIdentity(r *http.Request) string {
	if v := r.FormValue("sender_email"); v != "" {
		return v
	}
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	identity, err := auth.GetIdentityFromToken(token, s.jwtSecret)
	if err != nil {
		s.logger.Warn(r.Context(), "bearer token rejected", "error", err.Error())
		return ""
	}
	return identity
}

func (s *HTTPServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)

	if err := r.ParseMultipartForm(s.maxUploadSize); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, http.StatusBadRequest, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	var payload []byte
	var formName string
	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		payload, err = io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, "unreadable file part")
			return
		}
		formName = header.Filename
	}

	recipient := r.FormValue("recipient_email")
	if recipient == "" {
		recipient = r.FormValue("recipient")
	}
	name := r.FormValue("original_name")
	if name == "" {
		name = formName
	}

	t, err := s.service.Upload(r.Context(), services.UploadRequest{
		Payload:      payload,
		OriginalName: name,
		MimeType:     r.FormValue("mime_type"),
		Sender:       s.senderIdentity(r),
		Recipient:    recipient,
		ClientIV:     r.FormValue("iv_b64"),
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newTransferView(t))
}

func (s *HTTPServer) handleList(w http.ResponseWriter, r *http.Request) {
	result, err := s.service.List(r.Context(), transfers.Filter{
		Sender:    r.URL.Query().Get("sender"),
		Recipient: r.URL.Query().Get("recipient"),
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	views := make([]transferView, 0, len(result))
	for _, t := range result {
		views = append(views, newTransferView(t))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *HTTPServer) handleDownload(w http.ResponseWriter, r *http.Request) {
	id, err := transferID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	plaintext, t, err := s.service.Download(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", t.MimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", t.OriginalName))
	w.Header().Set("Content-Length", strconv.Itoa(len(plaintext)))
	w.Write(plaintext)
}

func (s *HTTPServer) handleRaw(w http.ResponseWriter, r *http.Request) {
	id, err := transferID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, t, err := s.service.RawFetch(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", t.OriginalName+".enc"))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

func (s *HTTPServer) handleRevoke(w http.ResponseWriter, r *http.Request) {
	id, err := transferID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	already, err := s.service.Revoke(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	msg := "file revoked"
	if already {
		msg = "file already revoked"
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": msg, "file_id": id})
}

func (s *HTTPServer) handleLogs(w http.ResponseWriter, r *http.Request) {
	limit := s.auditLogLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	entries, err := s.service.Logs(r.Context(), limit)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	views := make([]auditEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, newAuditEntryView(e))
	}
	writeJSON(w, http.StatusOK, views)
}

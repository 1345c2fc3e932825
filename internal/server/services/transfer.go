// Package services contains the transfer manager: the only component with
// decision logic. It orchestrates the cipher, blob store, metadata store and
// audit log, and enforces the access-control sequence on every fetch.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/gursmeep404/sharden/internal/common"
	"github.com/gursmeep404/sharden/internal/cryptox"
	"github.com/gursmeep404/sharden/internal/dbx"
	"github.com/gursmeep404/sharden/internal/logging"
	"github.com/gursmeep404/sharden/internal/server/blob"
	sc "github.com/gursmeep404/sharden/internal/server/config"
	"github.com/gursmeep404/sharden/internal/server/models"
	"github.com/gursmeep404/sharden/internal/server/repositories/repomanager"
	"github.com/gursmeep404/sharden/internal/server/repositories/transfers"
)

// UnknownSender labels uploads arriving without an authenticated identity.
// The sender column is never null.
const UnknownSender = "unknown@unknown"

// DefaultMimeType is recorded when no type was declared and none could be sniffed.
const DefaultMimeType = "application/octet-stream"

// timeNow is a seam for tests that exercise expiry.
var timeNow = time.Now

// TransferService implements upload, listing, retrieval and revocation of
// transfers. It holds no mutable state between requests; everything lives in
// the stores.
type TransferService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	blobs  blob.Store
	config *sc.Config
	logger logging.Logger
}

func NewTransferService(db *sql.DB, repos repomanager.RepositoryManager, blobs blob.Store, config *sc.Config, logger logging.Logger) *TransferService {
	return &TransferService{
		db:     db,
		repos:  repos,
		blobs:  blobs,
		config: config,
		logger: logger.With("module", "transfer_service"),
	}
}

// UploadRequest carries one upload. A non-empty ClientIV selects end-to-end
// mode: the payload is treated as ciphertext and stored untouched.
type UploadRequest struct {
	Payload      []byte
	OriginalName string
	MimeType     string
	Sender       string
	Recipient    string
	ClientIV     string
}

// audit appends one entry; a failing audit write never fails the operation,
// only the log records the loss.
func (s *TransferService) audit(ctx context.Context, action models.AuditAction, transferID *string, status models.AuditStatus, detail string) {
	e := &models.AuditEntry{
		TransferID: transferID,
		Action:     action,
		Status:     status,
		Detail:     detail,
	}
	if err := s.repos.Audit(s.db).Append(ctx, e); err != nil {
		s.logger.Error(ctx, "audit append failed", "action", action, "error", err.Error())
	}
}

// sanitizeName strips any path components from a client-supplied file name.
func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	if name == "" || name == "." || name == ".." || name == "/" {
		return "upload.bin"
	}
	return name
}

// Upload stores one payload and creates its transfer record.
//
// With a client IV the payload is already ciphertext: it is stored exactly as
// received and no key is ever derived or kept. Without one the server
// generates a fresh key, encrypts, and persists nonce||tag||ciphertext.
// The blob is written and confirmed before metadata commits; if the metadata
// write fails the blob is rolled back so no orphaned ciphertext remains.
func (s *TransferService) Upload(ctx context.Context, req UploadRequest) (*models.Transfer, error) {
	if len(req.Payload) == 0 {
		s.audit(ctx, models.ActionUpload, nil, models.StatusFailure, "no file uploaded")
		return nil, fmt.Errorf("%w: no file uploaded", common.ErrEmptyPayload)
	}
	if req.Recipient == "" {
		s.audit(ctx, models.ActionUpload, nil, models.StatusFailure, "missing recipient")
		return nil, fmt.Errorf("%w: recipient", common.ErrMissingField)
	}

	sender := req.Sender
	if sender == "" {
		sender = UnknownSender
	}

	now := timeNow().UTC()

	var blobData []byte
	var enc models.EncryptionInfo
	mime := req.MimeType

	if req.ClientIV != "" {
		// end-to-end: ciphertext from the caller, stored as-is
		blobData = req.Payload
		enc = models.EndToEnd{ClientIV: req.ClientIV}
		if mime == "" {
			mime = DefaultMimeType
		}
	} else {
		key, err := cryptox.GenerateKey()
		if err != nil {
			s.audit(ctx, models.ActionUpload, nil, models.StatusFailure, err.Error())
			return nil, err
		}
		ciphertext, nonce, tag, err := cryptox.Encrypt(req.Payload, key)
		if err != nil {
			s.audit(ctx, models.ActionUpload, nil, models.StatusFailure, err.Error())
			return nil, err
		}
		blobData = cryptox.EncodeBlob(nonce, tag, ciphertext)
		enc = models.ServerManaged{Key: key}
		if mime == "" {
			mime = mimetype.Detect(req.Payload).String()
		}
	}

	ref, err := s.blobs.Put(ctx, blobData)
	if err != nil {
		s.audit(ctx, models.ActionUpload, nil, models.StatusFailure, "blob write: "+err.Error())
		return nil, fmt.Errorf("%w: blob write: %v", common.ErrStorage, err)
	}

	t := &models.Transfer{
		ID:            uuid.NewString(),
		OriginalName:  sanitizeName(req.OriginalName),
		StorageRef:    ref,
		MimeType:      mime,
		Sender:        sender,
		Recipient:     req.Recipient,
		ExpiryAt:      now.Add(s.config.TransferValidityDuration),
		Revoked:       false,
		Encryption:    enc,
		EncryptedSize: int64(len(blobData)),
		CreatedAt:     now,
	}

	if err := s.repos.Transfers(s.db).Create(ctx, t); err != nil {
		// no orphaned ciphertext: the blob goes away with the failed record
		if derr := s.blobs.Delete(ctx, ref); derr != nil {
			s.logger.Error(ctx, "blob rollback failed", "ref", ref, "error", derr.Error())
		}
		s.audit(ctx, models.ActionUpload, nil, models.StatusFailure, "metadata write: "+err.Error())
		return nil, fmt.Errorf("%w: metadata write: %v", common.ErrStorage, err)
	}

	s.audit(ctx, models.ActionUpload, &t.ID, models.StatusSuccess,
		fmt.Sprintf("sender=%s recipient=%s mode=%s", sender, req.Recipient, enc.Mode()))
	return t, nil
}

// List returns transfers matching the filter, newest first. Enumeration does
// not expose content and is not audited.
func (s *TransferService) List(ctx context.Context, f transfers.Filter) ([]*models.Transfer, error) {
	result, err := s.repos.Transfers(s.db).List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%w: list: %v", common.ErrStorage, err)
	}
	return result, nil
}

// Download returns decrypted plaintext for a server-managed transfer. The
// access checks run in a fixed order and short-circuit on the first failure;
// every branch, success included, writes exactly one audit entry.
func (s *TransferService) Download(ctx context.Context, id string) ([]byte, *models.Transfer, error) {
	t, err := s.getForAccess(ctx, models.ActionDownload, id)
	if err != nil {
		return nil, nil, err
	}

	enc, ok := t.Encryption.(models.ServerManaged)
	if !ok {
		s.audit(ctx, models.ActionDownload, &t.ID, models.StatusFailure, "end-to-end transfer, server holds no key")
		return nil, nil, common.ErrUnsupportedOperation
	}

	if err := s.checkAccess(ctx, models.ActionDownload, t); err != nil {
		return nil, nil, err
	}

	data, err := s.fetchBlob(ctx, models.ActionDownload, t)
	if err != nil {
		return nil, nil, err
	}

	nonce, tag, ciphertext, err := cryptox.DecodeBlob(data)
	if err != nil {
		s.audit(ctx, models.ActionDownload, &t.ID, models.StatusFailure, err.Error())
		return nil, nil, err
	}
	plaintext, err := cryptox.Decrypt(ciphertext, enc.Key, nonce, tag)
	if err != nil {
		s.audit(ctx, models.ActionDownload, &t.ID, models.StatusFailure, err.Error())
		return nil, nil, err
	}

	s.audit(ctx, models.ActionDownload, &t.ID, models.StatusSuccess, "")
	return plaintext, t, nil
}

// RawFetch returns the stored ciphertext verbatim. Legal in both modes: an
// end-to-end recipient decrypts with its out-of-band key.
func (s *TransferService) RawFetch(ctx context.Context, id string) ([]byte, *models.Transfer, error) {
	t, err := s.getForAccess(ctx, models.ActionRawFetch, id)
	if err != nil {
		return nil, nil, err
	}

	if err := s.checkAccess(ctx, models.ActionRawFetch, t); err != nil {
		return nil, nil, err
	}

	data, err := s.fetchBlob(ctx, models.ActionRawFetch, t)
	if err != nil {
		return nil, nil, err
	}

	s.audit(ctx, models.ActionRawFetch, &t.ID, models.StatusSuccess, "")
	return data, t, nil
}

// Revoke permanently blocks further access. Revoking an already revoked
// transfer succeeds as a no-op. The returned flag reports that case. The
// read-check-update runs in one transaction so concurrent revokes stay
// consistent.
func (s *TransferService) Revoke(ctx context.Context, id string) (bool, error) {
	var already bool

	err := s.inTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repos.Transfers(tx)

		t, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if t.Revoked {
			already = true
			return nil
		}
		return repo.Revoke(ctx, id)
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.audit(ctx, models.ActionRevoke, nil, models.StatusFailure, "id="+id+": not found")
			return false, common.ErrNotFound
		}
		s.audit(ctx, models.ActionRevoke, nil, models.StatusFailure, err.Error())
		return false, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}

	if already {
		s.audit(ctx, models.ActionRevoke, &id, models.StatusSuccess, "already revoked")
		return true, nil
	}

	s.audit(ctx, models.ActionRevoke, &id, models.StatusSuccess, "")
	return false, nil
}

// inTx runs fn inside a transaction when a database is present. The
// in-memory manager ignores the handle, so memory mode runs fn directly.
func (s *TransferService) inTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	if s.db == nil {
		return fn(ctx, nil)
	}
	return dbx.WithTx(ctx, s.db, nil, fn)
}

// Logs returns the most recent audit entries, newest first. Pure read.
func (s *TransferService) Logs(ctx context.Context, limit int) ([]*models.AuditEntry, error) {
	if limit <= 0 || limit > s.config.AuditLogLimit {
		limit = s.config.AuditLogLimit
	}
	result, err := s.repos.Audit(s.db).SelectRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: logs: %v", common.ErrStorage, err)
	}
	return result, nil
}

// getForAccess resolves the record for a content access, auditing a failed
// lookup under the attempted id.
func (s *TransferService) getForAccess(ctx context.Context, action models.AuditAction, id string) (*models.Transfer, error) {
	t, err := s.repos.Transfers(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.audit(ctx, action, nil, models.StatusFailure, "id="+id+": not found")
			return nil, common.ErrNotFound
		}
		s.audit(ctx, action, nil, models.StatusFailure, err.Error())
		return nil, fmt.Errorf("%w: %v", common.ErrStorage, err)
	}
	return t, nil
}

// checkAccess enforces the expiry-then-revocation gate shared by both fetch
// paths. Both states are terminal; neither is ever cleared.
func (s *TransferService) checkAccess(ctx context.Context, action models.AuditAction, t *models.Transfer) error {
	if t.Expired(timeNow().UTC()) {
		s.audit(ctx, action, &t.ID, models.StatusFailure, "expired")
		return common.ErrExpired
	}
	if t.Revoked {
		s.audit(ctx, action, &t.ID, models.StatusFailure, "revoked")
		return common.ErrRevoked
	}
	return nil
}

// fetchBlob confirms presence and reads the stored blob.
func (s *TransferService) fetchBlob(ctx context.Context, action models.AuditAction, t *models.Transfer) ([]byte, error) {
	ok, err := s.blobs.Exists(ctx, t.StorageRef)
	if err != nil {
		s.audit(ctx, action, &t.ID, models.StatusFailure, "blob check: "+err.Error())
		return nil, fmt.Errorf("%w: blob check: %v", common.ErrStorage, err)
	}
	if !ok {
		s.audit(ctx, action, &t.ID, models.StatusFailure, "encrypted blob missing")
		return nil, common.ErrBlobMissing
	}

	data, err := s.blobs.Get(ctx, t.StorageRef)
	if err != nil {
		if errors.Is(err, common.ErrBlobMissing) {
			s.audit(ctx, action, &t.ID, models.StatusFailure, "encrypted blob missing")
			return nil, common.ErrBlobMissing
		}
		s.audit(ctx, action, &t.ID, models.StatusFailure, "blob read: "+err.Error())
		return nil, fmt.Errorf("%w: blob read: %v", common.ErrStorage, err)
	}
	return data, nil
}

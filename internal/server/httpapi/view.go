package httpapi

import (
	"time"

	"github.com/gursmeep404/sharden/internal/server/models"
)

// transferView is the wire representation of a transfer. Key material never
// appears here; the client IV does, since the recipient needs it to decrypt.
type transferView struct {
	FileID           string `json:"file_id"`
	OriginalFilename string `json:"original_filename"`
	ExpiryTime       int64  `json:"expiry_time"`
	Revoked          bool   `json:"revoked"`
	SenderEmail      string `json:"sender_email"`
	RecipientEmail   string `json:"recipient_email"`
	MimeType         string `json:"mime_type"`
	IVBase64         string `json:"iv_b64,omitempty"`
	EndToEnd         bool   `json:"e2e"`
}

func newTransferView(t *models.Transfer) transferView {
	v := transferView{
		FileID:           t.ID,
		OriginalFilename: t.OriginalName,
		ExpiryTime:       t.ExpiryAt.Unix(),
		Revoked:          t.Revoked,
		SenderEmail:      t.Sender,
		RecipientEmail:   t.Recipient,
		MimeType:         t.MimeType,
	}
	if e2e, ok := t.Encryption.(models.EndToEnd); ok {
		v.IVBase64 = e2e.ClientIV
		v.EndToEnd = true
	}
	return v
}

type auditEntryView struct {
	ID         int64   `json:"id"`
	TransferID *string `json:"transfer_id"`
	Action     string  `json:"action"`
	Status     string  `json:"status"`
	Detail     string  `json:"detail,omitempty"`
	Timestamp  string  `json:"timestamp"`
}

func newAuditEntryView(e *models.AuditEntry) auditEntryView {
	return auditEntryView{
		ID:         e.ID,
		TransferID: e.TransferID,
		Action:     string(e.Action),
		Status:     string(e.Status),
		Detail:     e.Detail,
		Timestamp:  e.Timestamp.UTC().Format(time.RFC3339),
	}
}

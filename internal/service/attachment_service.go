package service

import (
	"context"
	"strings"

	"github.com/ticketflow/backend/internal/auth"
	"github.com/ticketflow/backend/internal/domain"
	"github.com/ticketflow/backend/internal/repository"
	"github.com/ticketflow/backend/pkg/util"
)

// AttachmentService manages attachment metadata on tickets. Upload and
// download of the blobs themselves go straight to object storage; the API
// only records what was stored where.
type AttachmentService struct {
	attachments repository.AttachmentRepository
	tickets     *TicketService
}

// NewAttachmentService wires the service.
func NewAttachmentService(attachments repository.AttachmentRepository, tickets *TicketService) *AttachmentService {
	return &AttachmentService{attachments: attachments, tickets: tickets}
}

// AttachmentInput carries metadata for a stored blob.
type AttachmentInput struct {
	Filename    string
	ContentType string
	Size        int64
	FileKey     string
}

// Attach records an attachment on a ticket the caller can access.
func (s *AttachmentService) Attach(ctx context.Context, actor *auth.Principal, ticketID string, in AttachmentInput) (*domain.Attachment, error) {
	in.Filename = strings.TrimSpace(in.Filename)
	if in.Filename == "" || in.FileKey == "" {
		return nil, util.NewValidationError("filename and file key are required", nil)
	}
	if in.Size < 0 {
		return nil, util.NewValidationError("size cannot be negative", nil)
	}
	if _, err := s.tickets.Get(ctx, actor, ticketID); err != nil {
		return nil, err
	}
	attachment := &domain.Attachment{
		TicketID:    ticketID,
		Filename:    in.Filename,
		ContentType: in.ContentType,
		Size:        in.Size,
		FileKey:     in.FileKey,
		UploadedBy:  actor.UserID,
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		return nil, util.MapError(err)
	}
	return attachment, nil
}

// List returns attachment metadata for a ticket the caller can access.
func (s *AttachmentService) List(ctx context.Context, actor *auth.Principal, ticketID string) ([]domain.Attachment, error) {
	if _, err := s.tickets.Get(ctx, actor, ticketID); err != nil {
		return nil, err
	}
	attachments, err := s.attachments.ListByTicket(ctx, ticketID)
	return attachments, util.MapError(err)
}

// Remove deletes attachment metadata from a ticket the caller can access.
func (s *AttachmentService) Remove(ctx context.Context, actor *auth.Principal, ticketID, attachmentID string) error {
	if _, err := s.tickets.Get(ctx, actor, ticketID); err != nil {
		return err
	}
	return util.MapError(s.attachments.Delete(ctx, ticketID, attachmentID))
}

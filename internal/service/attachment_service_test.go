package service

import (
	"context"
	"testing"

	"github.com/ticketflow/backend/internal/domain"
	"github.com/ticketflow/backend/pkg/util"
)

type attachmentFixture struct {
	svc     *AttachmentService
	tickets *ticketFixture
	repo    *fakeAttachmentRepo
}

func newAttachmentFixture(t *testing.T) *attachmentFixture {
	t.Helper()
	tickets := newTicketFixture(t)
	repo := newFakeAttachmentRepo()
	return &attachmentFixture{
		svc:     NewAttachmentService(repo, tickets.svc),
		tickets: tickets,
		repo:    repo,
	}
}

func TestAttachAndRemoveOnOwnTicket(t *testing.T) {
	f := newAttachmentFixture(t)
	ctx := context.Background()
	reporter := asPrincipal(domain.RoleClient, "client-1")

	ticket, err := f.tickets.svc.Create(ctx, reporter, CreateTicketInput{Title: "t", Department: "IT"})
	if err != nil {
		t.Fatalf("Create ticket: %v", err)
	}

	attachment, err := f.svc.Attach(ctx, reporter, ticket.ID, AttachmentInput{
		Filename: "log.txt", ContentType: "text/plain", Size: 42, FileKey: "blobs/log.txt",
	})
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if attachment.UploadedBy != "client-1" {
		t.Errorf("uploaded by = %q, want client-1", attachment.UploadedBy)
	}

	listed, err := f.svc.List(ctx, reporter, ticket.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("attachments = %d, want 1", len(listed))
	}

	if err := f.svc.Remove(ctx, reporter, ticket.ID, attachment.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	listed, _ = f.svc.List(ctx, reporter, ticket.ID)
	if len(listed) != 0 {
		t.Errorf("attachments after remove = %d, want 0", len(listed))
	}
}

func TestAttachValidatesMetadata(t *testing.T) {
	f := newAttachmentFixture(t)
	ctx := context.Background()
	reporter := asPrincipal(domain.RoleClient, "client-1")
	ticket, _ := f.tickets.svc.Create(ctx, reporter, CreateTicketInput{Title: "t", Department: "IT"})

	_, err := f.svc.Attach(ctx, reporter, ticket.ID, AttachmentInput{Filename: "", FileKey: "k"})
	if code := domainErrCode(t, err); code != util.CodeValidationError {
		t.Errorf("code = %q, want %q", code, util.CodeValidationError)
	}
	_, err = f.svc.Attach(ctx, reporter, ticket.ID, AttachmentInput{Filename: "f", FileKey: "k", Size: -1})
	if code := domainErrCode(t, err); code != util.CodeValidationError {
		t.Errorf("negative size code = %q, want %q", code, util.CodeValidationError)
	}
}

func TestAttachmentAccessFollowsTicketAccess(t *testing.T) {
	f := newAttachmentFixture(t)
	ctx := context.Background()
	reporter := asPrincipal(domain.RoleClient, "client-1")
	stranger := asPrincipal(domain.RoleClient, "client-2")

	ticket, _ := f.tickets.svc.Create(ctx, reporter, CreateTicketInput{Title: "t", Department: "IT"})

	if _, err := f.svc.Attach(ctx, stranger, ticket.ID, AttachmentInput{
		Filename: "f", FileKey: "k",
	}); err == nil {
		t.Error("unrelated client attached to foreign ticket")
	}
	if _, err := f.svc.List(ctx, stranger, ticket.ID); err == nil {
		t.Error("unrelated client listed foreign attachments")
	}
}

func TestRemoveAttachmentScopedToItsTicket(t *testing.T) {
	f := newAttachmentFixture(t)
	ctx := context.Background()
	clientA := asPrincipal(domain.RoleClient, "client-a")
	clientB := asPrincipal(domain.RoleClient, "client-b")

	mine, _ := f.tickets.svc.Create(ctx, clientA, CreateTicketInput{Title: "mine", Department: "IT"})
	theirs, _ := f.tickets.svc.Create(ctx, clientB, CreateTicketInput{Title: "theirs", Department: "IT"})

	foreign, err := f.svc.Attach(ctx, clientB, theirs.ID, AttachmentInput{
		Filename: "secret.txt", FileKey: "blobs/secret.txt",
	})
	if err != nil {
		t.Fatalf("Attach: %v", err)
	}

	// Access to one's own ticket must not reach an attachment that belongs
	// to a different ticket.
	err = f.svc.Remove(ctx, clientA, mine.ID, foreign.ID)
	if code := domainErrCode(t, err); code != util.CodeNotFound {
		t.Errorf("code = %q, want %q", code, util.CodeNotFound)
	}
	remaining, err := f.svc.List(ctx, clientB, theirs.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(remaining) != 1 {
		t.Errorf("foreign attachment deleted through another ticket, %d left", len(remaining))
	}
}

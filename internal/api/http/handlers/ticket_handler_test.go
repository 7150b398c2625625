package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	apihttp "github.com/ticketflow/backend/internal/api/http"
	"github.com/ticketflow/backend/internal/api/http/handlers"
	"github.com/ticketflow/backend/internal/auth"
	"github.com/ticketflow/backend/internal/domain"
	"github.com/ticketflow/backend/internal/events"
	"github.com/ticketflow/backend/internal/repository"
	"github.com/ticketflow/backend/internal/service"
	"github.com/ticketflow/backend/pkg/util"
)

var errStubOnly = errors.New("not supported by stub")

type stubTicketRepo struct {
	tickets []*domain.Ticket
}

func (r *stubTicketRepo) Create(context.Context, *domain.Ticket, *domain.TicketHistory) error {
	return errStubOnly
}

func (r *stubTicketRepo) Update(context.Context, *domain.Ticket, []domain.TicketHistory) error {
	return errStubOnly
}

func (r *stubTicketRepo) Delete(context.Context, string) error { return errStubOnly }

func (r *stubTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	for _, ticket := range r.tickets {
		if ticket.ID == id {
			clone := *ticket
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubTicketRepo) GetByKey(_ context.Context, key string) (*domain.Ticket, error) {
	for _, ticket := range r.tickets {
		if ticket.Key == key {
			clone := *ticket
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *stubTicketRepo) List(context.Context, repository.TicketFilter) ([]domain.Ticket, error) {
	return nil, errStubOnly
}

func (r *stubTicketRepo) Stats(context.Context) (*repository.TicketStats, error) {
	return nil, errStubOnly
}

type stubUserRepo struct {
	user *domain.User
}

func (r stubUserRepo) Create(context.Context, *domain.User) error { return errStubOnly }
func (r stubUserRepo) Update(context.Context, *domain.User) error { return errStubOnly }
func (r stubUserRepo) Delete(context.Context, string) error       { return errStubOnly }

func (r stubUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if r.user != nil && r.user.ID == id {
		clone := *r.user
		return &clone, nil
	}
	return nil, pgx.ErrNoRows
}

func (r stubUserRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, pgx.ErrNoRows
}

func (r stubUserRepo) List(context.Context) ([]domain.User, error) { return nil, errStubOnly }

func (r stubUserRepo) EmailExists(context.Context, string, string) (bool, error) {
	return false, nil
}

func (r stubUserRepo) AllExist(context.Context, []string) (bool, error) { return true, nil }

type stubHistoryRepo struct{}

func (stubHistoryRepo) ListByTicket(context.Context, string, int, int) ([]domain.TicketHistory, error) {
	return nil, nil
}

type stubProjectRepo struct{}

func (stubProjectRepo) Create(context.Context, *domain.Project) error { return errStubOnly }
func (stubProjectRepo) Update(context.Context, *domain.Project) error { return errStubOnly }
func (stubProjectRepo) Delete(context.Context, string) error          { return errStubOnly }

func (stubProjectRepo) GetByID(context.Context, string) (*domain.Project, error) {
	return nil, pgx.ErrNoRows
}

func (stubProjectRepo) KeyExists(context.Context, string, string) (bool, error) {
	return false, nil
}

func (stubProjectRepo) List(context.Context) ([]domain.Project, error) { return nil, nil }

// newTicketApp mounts the ticket routes behind the real auth middleware and
// error handler and returns a valid access token for the user.
func newTicketApp(t *testing.T, repo repository.TicketRepository, user *domain.User) (*fiber.App, string) {
	t.Helper()
	svc := service.NewTicketService(repo, stubHistoryRepo{}, stubUserRepo{user: user}, stubProjectRepo{},
		events.NewInMemoryDispatcher(zap.NewNop()), zap.NewNop())
	h := handlers.NewTicketHandler(svc, nil)

	tokens := auth.NewTokenManager("handler-test-secret", 15, 30)
	pair, err := tokens.GeneratePair(user)
	if err != nil {
		t.Fatalf("GeneratePair: %v", err)
	}
	mw := auth.NewMiddleware(tokens, stubUserRepo{user: user})

	app := fiber.New(fiber.Config{ErrorHandler: apihttp.NewErrorHandler(zap.NewNop())})
	app.Get("/api/v1/tickets/:id", mw.Handle, h.Get)
	return app, pair.AccessToken
}

func getTicket(t *testing.T, app *fiber.App, token, path string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp
}

func TestTicketGetResolvesBothIDAndKey(t *testing.T) {
	const ticketID = "550e8400-e29b-41d4-a716-446655440000"
	user := &domain.User{ID: "client-1", Email: "c@x.com", Role: domain.RoleClient, Active: true}
	repo := &stubTicketRepo{tickets: []*domain.Ticket{{
		ID:         ticketID,
		Key:        "TSK-1001",
		Title:      "printer on fire",
		Status:     domain.TicketStatusOpen,
		Priority:   domain.TicketPriorityMedium,
		Department: "IT",
		ReporterID: "client-1",
	}}}
	app, token := newTicketApp(t, repo, user)

	tests := []struct {
		name string
		path string
	}{
		// UUIDs contain hyphens, so the id/key discriminator must not
		// send them down the key lookup.
		{"by uuid id", "/api/v1/tickets/" + ticketID},
		{"by key", "/api/v1/tickets/TSK-1001"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := getTicket(t, app, token, tc.path)
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
			}
			var body struct {
				ID  string `json:"id"`
				Key string `json:"key"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.ID != ticketID || body.Key != "TSK-1001" {
				t.Errorf("got %s/%s, want %s/TSK-1001", body.ID, body.Key, ticketID)
			}
		})
	}
}

func TestTicketGetUnknownTicketIs404(t *testing.T) {
	user := &domain.User{ID: "client-1", Email: "c@x.com", Role: domain.RoleClient, Active: true}
	app, token := newTicketApp(t, &stubTicketRepo{}, user)

	resp := getTicket(t, app, token, "/api/v1/tickets/7f1c2a9e-0000-4000-8000-000000000000")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error != util.CodeTicketNotFound {
		t.Errorf("error = %q, want %q", body.Error, util.CodeTicketNotFound)
	}
}

func TestTicketGetRequiresToken(t *testing.T) {
	user := &domain.User{ID: "client-1", Email: "c@x.com", Role: domain.RoleClient, Active: true}
	app, _ := newTicketApp(t, &stubTicketRepo{}, user)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tickets/TSK-1001", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

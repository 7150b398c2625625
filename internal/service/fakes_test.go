package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ticketflow/backend/internal/domain"
	"github.com/ticketflow/backend/internal/repository"
)

// In-memory repository fakes. They mirror the Postgres implementations'
// observable behavior: key allocation by max suffix, single refresh row per
// user, history appended atomically with the ticket mutation.

type fakeUserRepo struct {
	users  map[string]*domain.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) add(user *domain.User) *domain.User {
	_ = r.Create(context.Background(), user)
	return user
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.nextID++
	if user.ID == "" {
		user.ID = fmt.Sprintf("user-%d", r.nextID)
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	user.UpdatedAt = time.Now()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		out = append(out, *user)
	}
	return out, nil
}

func (r *fakeUserRepo) EmailExists(_ context.Context, email, excludeID string) (bool, error) {
	for _, user := range r.users {
		if user.Email == email && user.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) AllExist(_ context.Context, ids []string) (bool, error) {
	for _, id := range ids {
		if _, ok := r.users[id]; !ok {
			return false, nil
		}
	}
	return true, nil
}

// fakeTicketRepo serializes mutations with a mutex the way the Postgres
// implementation serializes key allocation with an advisory lock.
type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]*domain.Ticket
	history []domain.TicketHistory
	nextID  int
	nextSeq int64
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[string]*domain.Ticket)}
}

func (r *fakeTicketRepo) appendHistory(entry domain.TicketHistory) {
	r.nextSeq++
	entry.Seq = r.nextSeq
	entry.ID = fmt.Sprintf("hist-%d", r.nextSeq)
	entry.CreatedAt = time.Now()
	r.history = append(r.history, entry)
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket, created *domain.TicketHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	max := 1000
	for _, existing := range r.tickets {
		if idx := strings.LastIndex(existing.Key, "-"); idx >= 0 {
			if n, err := strconv.Atoi(existing.Key[idx+1:]); err == nil && n > max {
				max = n
			}
		}
	}
	r.nextID++
	ticket.ID = fmt.Sprintf("ticket-%d", r.nextID)
	ticket.Key = fmt.Sprintf("TSK-%d", max+1)
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	clone := *ticket
	clone.AssigneeIDs = append([]string(nil), ticket.AssigneeIDs...)
	r.tickets[ticket.ID] = &clone
	if created != nil {
		created.TicketID = ticket.ID
		r.appendHistory(*created)
	}
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket, entries []domain.TicketHistory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	clone := *ticket
	clone.AssigneeIDs = append([]string(nil), ticket.AssigneeIDs...)
	r.tickets[ticket.ID] = &clone
	for _, entry := range entries {
		r.appendHistory(entry)
	}
	return nil
}

func (r *fakeTicketRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	clone.AssigneeIDs = append([]string(nil), ticket.AssigneeIDs...)
	return &clone, nil
}

func (r *fakeTicketRepo) GetByKey(_ context.Context, key string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ticket := range r.tickets {
		if ticket.Key == key {
			clone := *ticket
			clone.AssigneeIDs = append([]string(nil), ticket.AssigneeIDs...)
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.Status != nil && ticket.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && ticket.Priority != *filter.Priority {
			continue
		}
		if filter.Department != nil && ticket.Department != *filter.Department {
			continue
		}
		if filter.AssigneeID != nil && !ticket.HasAssignee(*filter.AssigneeID) {
			continue
		}
		if filter.ReporterID != nil && ticket.ReporterID != *filter.ReporterID {
			continue
		}
		if filter.AccessUserID != nil &&
			ticket.ReporterID != *filter.AccessUserID && !ticket.HasAssignee(*filter.AccessUserID) {
			continue
		}
		out = append(out, *ticket)
	}
	return out, nil
}

func (r *fakeTicketRepo) Stats(_ context.Context) (*repository.TicketStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &repository.TicketStats{
		ByStatus:     make(map[domain.TicketStatus]int),
		ByPriority:   make(map[domain.TicketPriority]int),
		ByDepartment: make(map[string]int),
	}
	for _, ticket := range r.tickets {
		stats.Total++
		stats.ByStatus[ticket.Status]++
		stats.ByPriority[ticket.Priority]++
		stats.ByDepartment[ticket.Department]++
	}
	return stats, nil
}

// historyByTicket filters recorded entries in insertion order.
func (r *fakeTicketRepo) historyByTicket(ticketID string) []domain.TicketHistory {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TicketHistory
	for _, entry := range r.history {
		if entry.TicketID == ticketID {
			out = append(out, entry)
		}
	}
	return out
}

type fakeHistoryRepo struct {
	tickets *fakeTicketRepo
}

func (r *fakeHistoryRepo) ListByTicket(_ context.Context, ticketID string, _, _ int) ([]domain.TicketHistory, error) {
	return r.tickets.historyByTicket(ticketID), nil
}

type fakeProjectRepo struct {
	projects map[string]*domain.Project
	nextID   int
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[string]*domain.Project)}
}

func (r *fakeProjectRepo) Create(_ context.Context, project *domain.Project) error {
	r.nextID++
	project.ID = fmt.Sprintf("project-%d", r.nextID)
	project.CreatedAt = time.Now()
	project.UpdatedAt = project.CreatedAt
	clone := *project
	r.projects[project.ID] = &clone
	return nil
}

func (r *fakeProjectRepo) Update(_ context.Context, project *domain.Project) error {
	if _, ok := r.projects[project.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *project
	r.projects[project.ID] = &clone
	return nil
}

func (r *fakeProjectRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.projects[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.projects, id)
	return nil
}

func (r *fakeProjectRepo) GetByID(_ context.Context, id string) (*domain.Project, error) {
	project, ok := r.projects[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *project
	return &clone, nil
}

func (r *fakeProjectRepo) KeyExists(_ context.Context, key, excludeID string) (bool, error) {
	for _, project := range r.projects {
		if project.Key == key && project.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeProjectRepo) List(_ context.Context) ([]domain.Project, error) {
	out := make([]domain.Project, 0, len(r.projects))
	for _, project := range r.projects {
		out = append(out, *project)
	}
	return out, nil
}

type fakeRefreshRepo struct {
	byUser map[string]*domain.RefreshToken
	nextID int
}

func newFakeRefreshRepo() *fakeRefreshRepo {
	return &fakeRefreshRepo{byUser: make(map[string]*domain.RefreshToken)}
}

func (r *fakeRefreshRepo) Save(_ context.Context, token *domain.RefreshToken) error {
	r.nextID++
	token.ID = fmt.Sprintf("refresh-%d", r.nextID)
	token.CreatedAt = time.Now()
	clone := *token
	r.byUser[token.UserID] = &clone
	return nil
}

func (r *fakeRefreshRepo) GetByToken(_ context.Context, tokenStr string) (*domain.RefreshToken, error) {
	for _, token := range r.byUser {
		if token.Token == tokenStr && !token.Expired(time.Now()) {
			clone := *token
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeRefreshRepo) DeleteByUser(_ context.Context, userID string) error {
	delete(r.byUser, userID)
	return nil
}

func (r *fakeRefreshRepo) DeleteExpired(_ context.Context) (int64, error) {
	var n int64
	for userID, token := range r.byUser {
		if token.Expired(time.Now()) {
			delete(r.byUser, userID)
			n++
		}
	}
	return n, nil
}

type fakeWorkflowRepo struct {
	rules  map[string]*domain.WorkflowRule
	nextID int
}

func newFakeWorkflowRepo() *fakeWorkflowRepo {
	return &fakeWorkflowRepo{rules: make(map[string]*domain.WorkflowRule)}
}

func (r *fakeWorkflowRepo) Create(_ context.Context, rule *domain.WorkflowRule) error {
	r.nextID++
	rule.ID = fmt.Sprintf("workflow-%d", r.nextID)
	rule.CreatedAt = time.Now()
	rule.UpdatedAt = rule.CreatedAt
	clone := *rule
	r.rules[rule.ID] = &clone
	return nil
}

func (r *fakeWorkflowRepo) Update(_ context.Context, rule *domain.WorkflowRule) error {
	if _, ok := r.rules[rule.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *rule
	r.rules[rule.ID] = &clone
	return nil
}

func (r *fakeWorkflowRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.rules[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.rules, id)
	return nil
}

func (r *fakeWorkflowRepo) GetByID(_ context.Context, id string) (*domain.WorkflowRule, error) {
	rule, ok := r.rules[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *rule
	return &clone, nil
}

func (r *fakeWorkflowRepo) List(_ context.Context) ([]domain.WorkflowRule, error) {
	out := make([]domain.WorkflowRule, 0, len(r.rules))
	for _, rule := range r.rules {
		out = append(out, *rule)
	}
	return out, nil
}

func (r *fakeWorkflowRepo) ListActiveByTrigger(_ context.Context, trigger domain.WorkflowTrigger) ([]domain.WorkflowRule, error) {
	var out []domain.WorkflowRule
	for _, rule := range r.rules {
		if rule.Active && rule.Trigger == trigger {
			out = append(out, *rule)
		}
	}
	return out, nil
}

type fakeAttachmentRepo struct {
	attachments map[string]*domain.Attachment
	nextID      int
}

func newFakeAttachmentRepo() *fakeAttachmentRepo {
	return &fakeAttachmentRepo{attachments: make(map[string]*domain.Attachment)}
}

func (r *fakeAttachmentRepo) Create(_ context.Context, attachment *domain.Attachment) error {
	r.nextID++
	attachment.ID = fmt.Sprintf("att-%d", r.nextID)
	attachment.CreatedAt = time.Now()
	clone := *attachment
	r.attachments[attachment.ID] = &clone
	return nil
}

func (r *fakeAttachmentRepo) Delete(_ context.Context, ticketID, id string) error {
	attachment, ok := r.attachments[id]
	if !ok || attachment.TicketID != ticketID {
		return pgx.ErrNoRows
	}
	delete(r.attachments, id)
	return nil
}

func (r *fakeAttachmentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Attachment, error) {
	var out []domain.Attachment
	for _, attachment := range r.attachments {
		if attachment.TicketID == ticketID {
			out = append(out, *attachment)
		}
	}
	return out, nil
}

type fakeCodeStore struct {
	codes map[string]string
}

func newFakeCodeStore() *fakeCodeStore {
	return &fakeCodeStore{codes: make(map[string]string)}
}

func (s *fakeCodeStore) Issue(_ context.Context, email string) (string, error) {
	code := fmt.Sprintf("%06d", len(s.codes)+100001)
	s.codes[email] = code
	return code, nil
}

func (s *fakeCodeStore) Check(_ context.Context, email, code string) (bool, error) {
	stored, ok := s.codes[email]
	if !ok || stored != code {
		return false, nil
	}
	delete(s.codes, email)
	return true, nil
}

type fakeMailer struct {
	sent []string
}

func (m *fakeMailer) SendVerificationCode(_ context.Context, to, _ string, code string) error {
	m.sent = append(m.sent, to+":"+code)
	return nil
}

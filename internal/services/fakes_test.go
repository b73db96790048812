package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/SundayYogurt/visa_service/internal/domain"
	"github.com/SundayYogurt/visa_service/internal/dto"
	"github.com/SundayYogurt/visa_service/internal/interfaces"
	"github.com/SundayYogurt/visa_service/internal/repository"
	"gorm.io/gorm"
)

// memStore backs every fake repository so services see one consistent dataset.
type memStore struct {
	mu sync.Mutex

	countries    map[uint]*domain.Country
	requirements map[uint]*domain.DocumentRequirement
	requests     map[uint]*domain.VerificationRequest
	documents    map[uint]*domain.StudentDocument
	tickets      map[uint]*domain.Ticket
	messages     []domain.TicketMessage
	students     map[uint]*domain.Student
	staff        map[uint]*domain.Staff
	audits       []domain.AuditLog

	nextID uint
}

func newMemStore() *memStore {
	return &memStore{
		countries:    map[uint]*domain.Country{},
		requirements: map[uint]*domain.DocumentRequirement{},
		requests:     map[uint]*domain.VerificationRequest{},
		documents:    map[uint]*domain.StudentDocument{},
		tickets:      map[uint]*domain.Ticket{},
		students:     map[uint]*domain.Student{},
		staff:        map[uint]*domain.Staff{},
		nextID:       100,
	}
}

func (m *memStore) id() uint {
	m.nextID++
	return m.nextID
}

// country

type fakeCountryRepo struct{ *memStore }

func (f fakeCountryRepo) Create(c *domain.Country) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.countries {
		if existing.Slug == c.Slug {
			return gorm.ErrDuplicatedKey
		}
	}
	c.ID = f.id()
	cp := *c
	f.countries[c.ID] = &cp
	return nil
}

func (f fakeCountryRepo) FindByID(id uint) (*domain.Country, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.countries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (f fakeCountryRepo) List() ([]domain.Country, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Country, 0, len(f.countries))
	for _, c := range f.countries {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

// requirement

type fakeRequirementRepo struct{ *memStore }

func (f fakeRequirementRepo) duplicate(r *domain.DocumentRequirement) bool {
	for _, existing := range f.requirements {
		if existing.ID != r.ID && existing.CountryID == r.CountryID &&
			existing.DocumentType == r.DocumentType && existing.Title == r.Title {
			return true
		}
	}
	return false
}

func (f fakeRequirementRepo) Create(r *domain.DocumentRequirement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.duplicate(r) {
		return gorm.ErrDuplicatedKey
	}
	r.ID = f.id()
	cp := *r
	f.requirements[r.ID] = &cp
	return nil
}

func (f fakeRequirementRepo) Save(r *domain.DocumentRequirement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.duplicate(r) {
		return gorm.ErrDuplicatedKey
	}
	cp := *r
	f.requirements[r.ID] = &cp
	return nil
}

func (f fakeRequirementRepo) Delete(id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.requirements[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.requirements, id)
	return nil
}

func (f fakeRequirementRepo) FindByID(id uint) (*domain.DocumentRequirement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requirements[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func (f fakeRequirementRepo) list(countryID uint, activeOnly bool) []domain.DocumentRequirement {
	var out []domain.DocumentRequirement
	for _, r := range f.requirements {
		if r.CountryID == countryID && (!activeOnly || r.Active) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].Title < out[j].Title
	})
	return out
}

func (f fakeRequirementRepo) ListActiveByCountry(countryID uint) ([]domain.DocumentRequirement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.list(countryID, true), nil
}

func (f fakeRequirementRepo) ListByCountry(countryID uint) ([]domain.DocumentRequirement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.list(countryID, false), nil
}

func (f fakeRequirementRepo) CountDocuments(id uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, d := range f.documents {
		if d.RequirementID == id {
			n++
		}
	}
	return n, nil
}

// verification request

type fakeVerificationRepo struct{ *memStore }

func (f fakeVerificationRepo) FindOrCreateOpen(studentID, countryID uint) (*domain.VerificationRequest, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if r.StudentID == studentID && r.CountryID == countryID && r.Status != domain.VerificationCompleted {
			cp := *r
			return &cp, false, nil
		}
	}
	r := &domain.VerificationRequest{ID: f.id(), StudentID: studentID, CountryID: countryID, Status: domain.VerificationPending}
	f.requests[r.ID] = r
	cp := *r
	return &cp, true, nil
}

func (f fakeVerificationRepo) FindByID(id uint) (*domain.VerificationRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func (f fakeVerificationRepo) FindDetailed(id uint) (*domain.VerificationRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	cp.Documents = f.docsOf(id)
	return &cp, nil
}

func (f fakeVerificationRepo) ListByStudent(studentID uint) ([]domain.VerificationRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.VerificationRequest
	for _, r := range f.requests {
		if r.StudentID == studentID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f fakeVerificationRepo) List(filter dto.VerificationFilter) ([]domain.VerificationRequest, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.VerificationRequest
	for _, r := range f.requests {
		if filter.Status != "" && string(r.Status) != filter.Status {
			continue
		}
		if filter.CountryID != 0 && r.CountryID != filter.CountryID {
			continue
		}
		if filter.AssignedToID != 0 && (r.AssignedToID == nil || *r.AssignedToID != filter.AssignedToID) {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

// openClash mirrors the partial unique index on unfinished requests.
func (m *memStore) openClash(r *domain.VerificationRequest, status domain.VerificationStatus) bool {
	if status == domain.VerificationCompleted {
		return false
	}
	for _, other := range m.requests {
		if other.ID != r.ID && other.StudentID == r.StudentID && other.CountryID == r.CountryID &&
			other.Status != domain.VerificationCompleted {
			return true
		}
	}
	return false
}

func (f fakeVerificationRepo) Update(id uint, fields map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if status, ok := fields["status"].(domain.VerificationStatus); ok && f.openClash(r, status) {
		return gorm.ErrDuplicatedKey
	}
	for k, v := range fields {
		switch k {
		case "status":
			r.Status = v.(domain.VerificationStatus)
		case "assigned_to_id":
			id := v.(uint)
			r.AssignedToID = &id
		case "review_notes":
			r.ReviewNotes = v.(*string)
		case "reviewed_by_id":
			id := v.(uint)
			r.ReviewedByID = &id
		case "reviewed_at":
			at := v.(time.Time)
			r.ReviewedAt = &at
		}
	}
	return nil
}

func (m *memStore) docsOf(requestID uint) []domain.StudentDocument {
	var out []domain.StudentDocument
	for _, d := range m.documents {
		if d.VerificationRequestID == requestID {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// documents

type fakeDocumentRepo struct{ *memStore }

func (f fakeDocumentRepo) Create(d *domain.StudentDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d.ID = f.id()
	cp := *d
	f.documents[d.ID] = &cp
	return nil
}

func (f fakeDocumentRepo) FindByID(id uint) (*domain.StudentDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.documents[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *d
	return &cp, nil
}

func (f fakeDocumentRepo) Replace(d *domain.StudentDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.documents[d.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *d
	cp.Status = domain.DocumentPending
	cp.ReviewNotes, cp.RejectionReason, cp.ReviewedByID, cp.ReviewedAt = nil, nil, nil, nil
	f.documents[d.ID] = &cp
	return nil
}

func (f fakeDocumentRepo) Review(docID uint, in repository.ReviewInput, aggregate repository.AggregateFunc) (*repository.ReviewResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.documents[docID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	req := f.requests[d.VerificationRequestID]
	prev := req.Status

	docs := f.docsOf(req.ID)
	for i := range docs {
		if docs[i].ID == docID {
			docs[i].Status = in.Status
		}
	}
	if f.openClash(req, aggregate(docs)) {
		return nil, gorm.ErrDuplicatedKey
	}

	reviewer, at := in.ReviewerID, in.ReviewedAt
	d.Status = in.Status
	d.ReviewNotes = in.ReviewNotes
	d.RejectionReason = in.RejectionReason
	d.ReviewedByID = &reviewer
	d.ReviewedAt = &at

	req.Status = aggregate(f.docsOf(req.ID))
	req.AssignedToID = &reviewer

	return &repository.ReviewResult{Document: *d, Request: *req, PreviousStatus: prev}, nil
}

// tickets

type fakeTicketRepo struct{ *memStore }

func (f fakeTicketRepo) Create(t *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = f.id()
	cp := *t
	f.tickets[t.ID] = &cp
	return nil
}

func (f fakeTicketRepo) FindByID(id uint) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tickets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (f fakeTicketRepo) FindWithThread(id uint) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tickets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	for _, m := range f.messages {
		if m.TicketID == id {
			cp.Messages = append(cp.Messages, m)
		}
	}
	return &cp, nil
}

func (f fakeTicketRepo) List(filter repository.TicketFilter) ([]domain.Ticket, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Ticket
	for _, t := range f.tickets {
		if filter.StudentID != 0 && t.StudentID != filter.StudentID {
			continue
		}
		if filter.AssociateID != 0 && (t.AssociateID == nil || *t.AssociateID != filter.AssociateID) {
			continue
		}
		if filter.Status != "" && string(t.Status) != filter.Status {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (f fakeTicketRepo) LatestMessages(ids []uint) (map[uint]domain.TicketMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[uint]domain.TicketMessage{}
	for _, m := range f.messages {
		out[m.TicketID] = m
	}
	return out, nil
}

func (f fakeTicketRepo) AddMessage(msg *domain.TicketMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tickets[msg.TicketID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if t.Status != domain.TicketOpen {
		return repository.ErrTicketClosed
	}
	msg.ID = f.id()
	f.messages = append(f.messages, *msg)
	return nil
}

func (f fakeTicketRepo) Close(id uint, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tickets[id]
	if !ok || t.Status != domain.TicketOpen {
		return repository.ErrTicketClosed
	}
	t.Status = domain.TicketClosed
	t.ClosedAt = &at
	return nil
}

func (m *memStore) messageCount(ticketID uint) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, msg := range m.messages {
		if msg.TicketID == ticketID {
			n++
		}
	}
	return n
}

// people and audit

type fakeStudentRepo struct{ *memStore }

func (f fakeStudentRepo) FindByID(id uint) (*domain.Student, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.students[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

type fakeStaffRepo struct{ *memStore }

func (f fakeStaffRepo) FindByID(id uint) (*domain.Staff, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.staff[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (f fakeStaffRepo) FindActiveByID(id uint) (*domain.Staff, error) {
	s, err := f.FindByID(id)
	if err != nil {
		return nil, err
	}
	if !s.Active {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

type fakeAuditRepo struct{ *memStore }

func (f fakeAuditRepo) Create(e *domain.AuditLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = f.id()
	f.audits = append(f.audits, *e)
	return nil
}

func (f fakeAuditRepo) ListByEntity(entity string, id uint) ([]domain.AuditLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.AuditLog
	for _, a := range f.audits {
		if a.Entity == entity && a.EntityID == id {
			out = append(out, a)
		}
	}
	return out, nil
}

// messaging

type fakeProducer struct {
	mu     sync.Mutex
	events []string
}

func (p *fakeProducer) PublishMessage(key, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, string(key))
	return nil
}

func (p *fakeProducer) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

// fixture seeds one country with three active requirements, a student with an associate, and
// staff members: 1 director, 2 associate, 3 inactive associate.
type fixture struct {
	store    *memStore
	producer *fakeProducer

	country      *domain.Country
	passport     *domain.DocumentRequirement
	photo        *domain.DocumentRequirement
	transcript   *domain.DocumentRequirement
	student      dto.AuthResponse
	otherStudent dto.AuthResponse
	director     dto.AuthResponse
	associate    dto.AuthResponse
}

func newFixture() *fixture {
	m := newMemStore()
	f := &fixture{store: m, producer: &fakeProducer{}}

	f.country = &domain.Country{ID: 1, Title: "Canada", Slug: "canada"}
	m.countries[1] = f.country

	f.passport = &domain.DocumentRequirement{ID: 11, CountryID: 1, DocumentType: "PASSPORT", Title: "Passport",
		MaxFileSize: 5_000_000, AllowedTypes: []string{"pdf", "jpg"}, Active: true, Order: 1}
	f.photo = &domain.DocumentRequirement{ID: 12, CountryID: 1, DocumentType: "PHOTO", Title: "Photo",
		MaxFileSize: 2 * 1024 * 1024, AllowedTypes: []string{"jpg", "png"}, Active: true, Order: 2}
	f.transcript = &domain.DocumentRequirement{ID: 13, CountryID: 1, DocumentType: "TRANSCRIPT", Title: "Transcript",
		MaxFileSize: 5 * 1024 * 1024, AllowedTypes: []string{"pdf"}, Active: true, Order: 3}
	for _, r := range []*domain.DocumentRequirement{f.passport, f.photo, f.transcript} {
		cp := *r
		m.requirements[r.ID] = &cp
	}

	associateID := uint(2)
	m.students[50] = &domain.Student{ID: 50, FullName: "Ana Student", Email: "ana@example.com", AssociateID: &associateID}
	m.students[51] = &domain.Student{ID: 51, FullName: "Ben Student", Email: "ben@example.com"}
	m.staff[1] = &domain.Staff{ID: 1, FullName: "Dee Director", Email: "dee@example.com", Role: domain.RoleDirector, Active: true}
	m.staff[2] = &domain.Staff{ID: 2, FullName: "Al Associate", Email: "al@example.com", Role: domain.RoleAssociate, Active: true}
	m.staff[3] = &domain.Staff{ID: 3, FullName: "Gone Associate", Email: "gone@example.com", Role: domain.RoleAssociate, Active: false}

	f.student = dto.AuthResponse{UserID: 50, Email: "ana@example.com", Role: domain.RoleStudent}
	f.otherStudent = dto.AuthResponse{UserID: 51, Email: "ben@example.com", Role: domain.RoleStudent}
	f.director = dto.AuthResponse{UserID: 1, Email: "dee@example.com", Role: domain.RoleDirector}
	f.associate = dto.AuthResponse{UserID: 2, Email: "al@example.com", Role: domain.RoleAssociate}
	return f
}

func (f *fixture) catalog() CatalogService {
	return NewCatalogService(fakeCountryRepo{f.store}, fakeRequirementRepo{f.store}, fakeAuditRepo{f.store})
}

func (f *fixture) documents(up *fakeUploader) DocumentService {
	var uploader interfaces.Uploader
	if up != nil {
		uploader = up
	}
	return NewDocumentService(fakeDocumentRepo{f.store}, fakeRequirementRepo{f.store}, fakeVerificationRepo{f.store},
		fakeCountryRepo{f.store}, fakeStudentRepo{f.store}, fakeAuditRepo{f.store}, uploader, f.producer)
}

func (f *fixture) verifications() VerificationService {
	return NewVerificationService(fakeVerificationRepo{f.store}, fakeCountryRepo{f.store}, fakeStaffRepo{f.store},
		fakeStudentRepo{f.store}, fakeAuditRepo{f.store}, f.producer)
}

func (f *fixture) tickets() TicketService {
	return NewTicketService(fakeTicketRepo{f.store}, fakeStudentRepo{f.store}, fakeStaffRepo{f.store},
		fakeAuditRepo{f.store}, f.producer)
}

type fakeUploader struct {
	folder   string
	filename string
	size     int
}

func (u *fakeUploader) UploadBytes(_ context.Context, folder, filename string, b []byte) (string, error) {
	u.folder, u.filename, u.size = folder, filename, len(b)
	return "https://cdn.example.com/" + folder + "/" + filename, nil
}

package crm

import (
	"context"
	"fmt"

	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/crm/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
)

// Cache scopes touched by the crm services
const (
	contactsScope  = "contacts"
	dealsScope     = "deals"
	projectsScope  = "projects"
	dashboardScope = "dashboard"
)

// contactListPage bundles a list page with its total for caching
type contactListPage struct {
	Items []ContactListResponse
	Total int64
}

// ContactService handles contact-related business operations
type ContactService struct {
	contactRepo crm.ContactRepository
	queries     cache.QueryCache
	invalidator cache.Invalidator
	events      shared.EventPublisher
}

// NewContactService creates a new ContactService
func NewContactService(
	contactRepo crm.ContactRepository,
	queries cache.QueryCache,
	invalidator cache.Invalidator,
	events shared.EventPublisher,
) *ContactService {
	return &ContactService{
		contactRepo: contactRepo,
		queries:     queries,
		invalidator: invalidator,
		events:      events,
	}
}

// Create creates a new contact
func (s *ContactService) Create(ctx context.Context, req CreateContactRequest) (*ContactResponse, error) {
	exists, err := s.contactRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Contact with this email already exists")
	}

	contact, err := crm.NewContact(crm.ContactType(req.Type), req.CompanyName, req.FirstName, req.LastName, req.Email)
	if err != nil {
		return nil, err
	}

	contact.SetPhone(optional(req.Phone))
	contact.SetPosition(optional(req.Position))
	contact.SetIndustry(optional(req.Industry))
	contact.SetLocation(optional(req.Address), optional(req.City), optional(req.Country))
	contact.SetWebsite(optional(req.Website))
	contact.SetNotes(optional(req.Notes))
	contact.AssignTo(req.AssignedTo)

	if err := s.contactRepo.Save(ctx, contact); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, contact)
	s.invalidate(ctx, contactsScope, dealsScope, projectsScope, dashboardScope)

	response := ToContactResponse(contact)
	return &response, nil
}

// GetByID retrieves a contact by ID
func (s *ContactService) GetByID(ctx context.Context, contactID uuid.UUID) (*ContactResponse, error) {
	key := cache.Key(contactsScope, "detail", contactID.String())
	response, err := cache.GetTyped(ctx, s.queries, key, func(ctx context.Context) (ContactResponse, error) {
		contact, err := s.contactRepo.FindByID(ctx, contactID)
		if err != nil {
			return ContactResponse{}, err
		}
		return ToContactResponse(contact), nil
	})
	if err != nil {
		return nil, err
	}
	return &response, nil
}

// List retrieves contacts with filtering and pagination
func (s *ContactService) List(ctx context.Context, filter ContactListFilter) ([]ContactListResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search
	if filter.Type != "" {
		domainFilter.Filters["type"] = filter.Type
	}
	if filter.AssignedTo != "" {
		domainFilter.Filters["assigned_to"] = filter.AssignedTo
	}
	if filter.City != "" {
		domainFilter.Filters["city"] = filter.City
	}
	if filter.Country != "" {
		domainFilter.Filters["country"] = filter.Country
	}
	if filter.Industry != "" {
		domainFilter.Filters["industry"] = filter.Industry
	}

	key := cache.Key(contactsScope, "list", filterKey(domainFilter))
	page, err := cache.GetTyped(ctx, s.queries, key, func(ctx context.Context) (contactListPage, error) {
		items, err := s.contactRepo.FindAll(ctx, domainFilter)
		if err != nil {
			return contactListPage{}, err
		}
		total, err := s.contactRepo.Count(ctx, domainFilter)
		if err != nil {
			return contactListPage{}, err
		}
		return contactListPage{Items: ToContactListResponses(items), Total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return page.Items, page.Total, nil
}

// Update applies a partial update to a contact
func (s *ContactService) Update(ctx context.Context, contactID uuid.UUID, req UpdateContactRequest) (*ContactResponse, error) {
	contact, err := s.contactRepo.FindByID(ctx, contactID)
	if err != nil {
		return nil, err
	}
	expectedVersion := contact.Version

	if req.Type != nil {
		if err := contact.ChangeType(crm.ContactType(*req.Type)); err != nil {
			return nil, err
		}
	}

	if req.CompanyName != nil || req.FirstName != nil || req.LastName != nil {
		companyName := contact.CompanyName
		firstName := contact.FirstName
		lastName := contact.LastName
		if req.CompanyName != nil {
			companyName = *req.CompanyName
		}
		if req.FirstName != nil {
			firstName = *req.FirstName
		}
		if req.LastName != nil {
			lastName = *req.LastName
		}
		if err := contact.Rename(companyName, firstName, lastName); err != nil {
			return nil, err
		}
	}

	if req.Email != nil && *req.Email != contact.Email {
		exists, err := s.contactRepo.ExistsByEmail(ctx, *req.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Contact with this email already exists")
		}
		if err := contact.ChangeEmail(*req.Email); err != nil {
			return nil, err
		}
	}

	if req.Phone != nil {
		contact.SetPhone(req.Phone)
	}
	if req.Position != nil {
		contact.SetPosition(req.Position)
	}
	if req.Industry != nil {
		contact.SetIndustry(req.Industry)
	}
	if req.Address != nil || req.City != nil || req.Country != nil {
		address := valueOr(req.Address, contact.Address)
		city := valueOr(req.City, contact.City)
		country := valueOr(req.Country, contact.Country)
		contact.SetLocation(address, city, country)
	}
	if req.Website != nil {
		contact.SetWebsite(req.Website)
	}
	if req.Notes != nil {
		contact.SetNotes(req.Notes)
	}
	if req.AssignedTo != nil {
		contact.AssignTo(req.AssignedTo)
	}

	if err := s.contactRepo.SaveWithLock(ctx, contact, expectedVersion); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, contact)
	s.invalidate(ctx, contactsScope, dealsScope, projectsScope, dashboardScope)

	response := ToContactResponse(contact)
	return &response, nil
}

// Delete removes a contact
func (s *ContactService) Delete(ctx context.Context, contactID uuid.UUID) error {
	if err := s.contactRepo.Delete(ctx, contactID); err != nil {
		return err
	}
	s.invalidate(ctx, contactsScope, dealsScope, projectsScope, dashboardScope)
	return nil
}

func (s *ContactService) publishEvents(ctx context.Context, contact *crm.Contact) {
	if s.events == nil {
		return
	}
	_ = s.events.Publish(ctx, contact.GetDomainEvents()...)
	contact.ClearDomainEvents()
}

// invalidate drops the given scopes locally and broadcasts them to peers.
// It runs only after a successful mutation.
func (s *ContactService) invalidate(ctx context.Context, scopes ...string) {
	for _, scope := range scopes {
		s.queries.InvalidateScope(scope)
		if s.invalidator != nil {
			_ = s.invalidator.PublishScope(ctx, scope)
		}
	}
}

// optional maps empty strings from create requests to nil pointers
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// valueOr returns the override when present, the current value otherwise
func valueOr(override *string, current *string) *string {
	if override != nil {
		return override
	}
	return current
}

// filterKey renders a filter into a deterministic cache key segment
func filterKey(f shared.Filter) string {
	return fmt.Sprintf("p=%d:ps=%d:ob=%s:od=%s:q=%s:f=%v",
		f.Page, f.PageSize, f.OrderBy, f.OrderDir, f.Search, f.Filters)
}

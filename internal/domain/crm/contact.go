package crm

import (
	"regexp"
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ContactType categorizes where a contact sits in the sales relationship
type ContactType string

const (
	ContactTypeProspect ContactType = "prospect"
	ContactTypeClient   ContactType = "client"
	ContactTypePartner  ContactType = "partner"
)

// IsValid checks if the contact type is a known value
func (t ContactType) IsValid() bool {
	switch t {
	case ContactTypeProspect, ContactTypeClient, ContactTypePartner:
		return true
	}
	return false
}

var contactEmailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Contact is a person at a company the team does business with
type Contact struct {
	shared.BaseAggregateRoot
	Type        ContactType
	CompanyName string
	FirstName   string
	LastName    string
	Email       string
	Phone       *string
	Position    *string
	Industry    *string
	Address     *string
	City        *string
	Country     *string
	Website     *string
	Notes       *string
	AssignedTo  *uuid.UUID
}

// NewContact creates a contact with the required fields validated
func NewContact(contactType ContactType, companyName, firstName, lastName, email string) (*Contact, error) {
	if fields := validateContactRequired(contactType, companyName, firstName, lastName, email); len(fields) > 0 {
		return nil, shared.NewValidationError(fields)
	}

	contact := &Contact{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              contactType,
		CompanyName:       strings.TrimSpace(companyName),
		FirstName:         strings.TrimSpace(firstName),
		LastName:          strings.TrimSpace(lastName),
		Email:             strings.ToLower(strings.TrimSpace(email)),
	}
	contact.AddDomainEvent(NewContactCreatedEvent(contact))
	return contact, nil
}

// FullName returns the display name
func (c *Contact) FullName() string {
	return c.FirstName + " " + c.LastName
}

// ChangeType updates the relationship category
func (c *Contact) ChangeType(contactType ContactType) error {
	if !contactType.IsValid() {
		return shared.NewDomainError("INVALID_CONTACT_TYPE", "Contact type must be prospect, client or partner")
	}
	c.Type = contactType
	c.touch()
	return nil
}

// Rename updates the person and company names
func (c *Contact) Rename(companyName, firstName, lastName string) error {
	fields := map[string]string{}
	if strings.TrimSpace(companyName) == "" {
		fields["company_name"] = "Company name is required"
	}
	if strings.TrimSpace(firstName) == "" {
		fields["first_name"] = "First name is required"
	}
	if strings.TrimSpace(lastName) == "" {
		fields["last_name"] = "Last name is required"
	}
	if len(fields) > 0 {
		return shared.NewValidationError(fields)
	}
	c.CompanyName = strings.TrimSpace(companyName)
	c.FirstName = strings.TrimSpace(firstName)
	c.LastName = strings.TrimSpace(lastName)
	c.touch()
	return nil
}

// ChangeEmail updates the email address
func (c *Contact) ChangeEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return shared.NewValidationError(map[string]string{"email": "Email is required"})
	}
	if !contactEmailPattern.MatchString(email) {
		return shared.NewValidationError(map[string]string{"email": "Email format is invalid"})
	}
	c.Email = strings.ToLower(email)
	c.touch()
	return nil
}

// SetPhone updates the phone number, nil clears it
func (c *Contact) SetPhone(phone *string) {
	c.Phone = normalizeOptional(phone)
	c.touch()
}

// SetPosition updates the job title, nil clears it
func (c *Contact) SetPosition(position *string) {
	c.Position = normalizeOptional(position)
	c.touch()
}

// SetIndustry updates the industry, nil clears it
func (c *Contact) SetIndustry(industry *string) {
	c.Industry = normalizeOptional(industry)
	c.touch()
}

// SetLocation updates the postal address fields, nil clears each
func (c *Contact) SetLocation(address, city, country *string) {
	c.Address = normalizeOptional(address)
	c.City = normalizeOptional(city)
	c.Country = normalizeOptional(country)
	c.touch()
}

// SetWebsite updates the website, nil clears it
func (c *Contact) SetWebsite(website *string) {
	c.Website = normalizeOptional(website)
	c.touch()
}

// SetNotes updates free-form notes, nil clears them
func (c *Contact) SetNotes(notes *string) {
	c.Notes = normalizeOptional(notes)
	c.touch()
}

// AssignTo sets the owning user, nil unassigns
func (c *Contact) AssignTo(userID *uuid.UUID) {
	c.AssignedTo = userID
	c.touch()
}

func (c *Contact) touch() {
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

func validateContactRequired(contactType ContactType, companyName, firstName, lastName, email string) map[string]string {
	fields := map[string]string{}
	if !contactType.IsValid() {
		fields["type"] = "Contact type must be prospect, client or partner"
	}
	if strings.TrimSpace(companyName) == "" {
		fields["company_name"] = "Company name is required"
	}
	if strings.TrimSpace(firstName) == "" {
		fields["first_name"] = "First name is required"
	}
	if strings.TrimSpace(lastName) == "" {
		fields["last_name"] = "Last name is required"
	}
	email = strings.TrimSpace(email)
	if email == "" {
		fields["email"] = "Email is required"
	} else if !contactEmailPattern.MatchString(email) {
		fields["email"] = "Email format is invalid"
	}
	return fields
}

// normalizeOptional maps empty or whitespace-only strings to nil
func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

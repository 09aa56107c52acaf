package crm

import "github.com/crm/backend/internal/domain/shared"

// Event types for the crm domain
const (
	EventContactCreated   = "crm.contact.created"
	EventDealCreated      = "crm.deal.created"
	EventDealStageChanged = "crm.deal.stage_changed"
)

// ContactCreatedEvent is raised when a contact is created
type ContactCreatedEvent struct {
	shared.BaseDomainEvent
	CompanyName string      `json:"company_name"`
	FullName    string      `json:"full_name"`
	ContactType ContactType `json:"contact_type"`
}

// NewContactCreatedEvent creates a ContactCreatedEvent from a contact
func NewContactCreatedEvent(contact *Contact) *ContactCreatedEvent {
	return &ContactCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventContactCreated, "Contact", contact.ID),
		CompanyName:     contact.CompanyName,
		FullName:        contact.FullName(),
		ContactType:     contact.Type,
	}
}

// DealCreatedEvent is raised when a deal is created
type DealCreatedEvent struct {
	shared.BaseDomainEvent
	Title string `json:"title"`
	Value string `json:"value"`
}

// NewDealCreatedEvent creates a DealCreatedEvent from a deal
func NewDealCreatedEvent(deal *Deal) *DealCreatedEvent {
	return &DealCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventDealCreated, "Deal", deal.ID),
		Title:           deal.Title,
		Value:           deal.Value.String(),
	}
}

// DealStageChangedEvent is raised when a deal moves between pipeline stages
type DealStageChangedEvent struct {
	shared.BaseDomainEvent
	Title         string    `json:"title"`
	PreviousStage DealStage `json:"previous_stage"`
	NewStage      DealStage `json:"new_stage"`
}

// NewDealStageChangedEvent creates a DealStageChangedEvent
func NewDealStageChangedEvent(deal *Deal, previous DealStage) *DealStageChangedEvent {
	return &DealStageChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventDealStageChanged, "Deal", deal.ID),
		Title:           deal.Title,
		PreviousStage:   previous,
		NewStage:        deal.Stage,
	}
}

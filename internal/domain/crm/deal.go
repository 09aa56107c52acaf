package crm

import (
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DealStage is the pipeline stage of a deal
type DealStage string

const (
	StageLead        DealStage = "lead"
	StageQualified   DealStage = "qualified"
	StageProposal    DealStage = "proposal"
	StageNegotiation DealStage = "negotiation"
	StageClosedWon   DealStage = "closed_won"
	StageClosedLost  DealStage = "closed_lost"
)

// IsValid checks if the stage is a known value
func (s DealStage) IsValid() bool {
	switch s {
	case StageLead, StageQualified, StageProposal, StageNegotiation, StageClosedWon, StageClosedLost:
		return true
	}
	return false
}

// IsClosed reports whether the stage is terminal
func (s DealStage) IsClosed() bool {
	return s == StageClosedWon || s == StageClosedLost
}

// Deal is a sales opportunity in the pipeline
type Deal struct {
	shared.BaseAggregateRoot
	Title             string
	Description       *string
	Value             decimal.Decimal
	Stage             DealStage
	Probability       int
	ContactID         *uuid.UUID
	AssignedTo        *uuid.UUID
	ExpectedCloseDate *time.Time
	ActualCloseDate   *time.Time
	Source            *string
	Notes             *string
}

// NewDeal creates a deal in the lead stage
func NewDeal(title string, value decimal.Decimal, probability int) (*Deal, error) {
	fields := map[string]string{}
	if strings.TrimSpace(title) == "" {
		fields["title"] = "Title is required"
	}
	if value.IsNegative() {
		fields["value"] = "Value must not be negative"
	}
	if probability < 0 || probability > 100 {
		fields["probability"] = "Probability must be between 0 and 100"
	}
	if len(fields) > 0 {
		return nil, shared.NewValidationError(fields)
	}

	deal := &Deal{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Title:             strings.TrimSpace(title),
		Value:             value,
		Stage:             StageLead,
		Probability:       probability,
	}
	deal.AddDomainEvent(NewDealCreatedEvent(deal))
	return deal, nil
}

// Rename updates the title
func (d *Deal) Rename(title string) error {
	if strings.TrimSpace(title) == "" {
		return shared.NewValidationError(map[string]string{"title": "Title is required"})
	}
	d.Title = strings.TrimSpace(title)
	d.touch()
	return nil
}

// ChangeValue updates the monetary value
func (d *Deal) ChangeValue(value decimal.Decimal) error {
	if value.IsNegative() {
		return shared.NewValidationError(map[string]string{"value": "Value must not be negative"})
	}
	d.Value = value
	d.touch()
	return nil
}

// ChangeProbability updates the close probability
func (d *Deal) ChangeProbability(probability int) error {
	if probability < 0 || probability > 100 {
		return shared.NewValidationError(map[string]string{"probability": "Probability must be between 0 and 100"})
	}
	d.Probability = probability
	d.touch()
	return nil
}

// MoveToStage advances the deal and stamps the close date on terminal stages
func (d *Deal) MoveToStage(stage DealStage) error {
	if !stage.IsValid() {
		return shared.NewDomainError("INVALID_DEAL_STAGE", "Unknown deal stage")
	}
	previous := d.Stage
	d.Stage = stage
	if stage.IsClosed() && d.ActualCloseDate == nil {
		now := time.Now()
		d.ActualCloseDate = &now
	}
	if !stage.IsClosed() {
		d.ActualCloseDate = nil
	}
	d.touch()
	if previous != stage {
		d.AddDomainEvent(NewDealStageChangedEvent(d, previous))
	}
	return nil
}

// SetDescription updates the description, nil clears it
func (d *Deal) SetDescription(description *string) {
	d.Description = normalizeOptional(description)
	d.touch()
}

// SetContact links the deal to a contact, nil unlinks
func (d *Deal) SetContact(contactID *uuid.UUID) {
	d.ContactID = contactID
	d.touch()
}

// AssignTo sets the owning user, nil unassigns
func (d *Deal) AssignTo(userID *uuid.UUID) {
	d.AssignedTo = userID
	d.touch()
}

// SetExpectedCloseDate updates the forecast date, nil clears it
func (d *Deal) SetExpectedCloseDate(date *time.Time) {
	d.ExpectedCloseDate = date
	d.touch()
}

// SetSource updates the lead source, nil clears it
func (d *Deal) SetSource(source *string) {
	d.Source = normalizeOptional(source)
	d.touch()
}

// SetNotes updates free-form notes, nil clears them
func (d *Deal) SetNotes(notes *string) {
	d.Notes = normalizeOptional(notes)
	d.touch()
}

// WeightedValue returns value scaled by probability
func (d *Deal) WeightedValue() decimal.Decimal {
	return d.Value.Mul(decimal.NewFromInt(int64(d.Probability))).Div(decimal.NewFromInt(100))
}

func (d *Deal) touch() {
	d.UpdatedAt = time.Now()
	d.IncrementVersion()
}

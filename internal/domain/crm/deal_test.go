package crm

import (
	"errors"
	"testing"

	"github.com/crm/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeal(t *testing.T) {
	t.Run("creates deal in lead stage", func(t *testing.T) {
		deal, err := NewDeal("Pilot engagement", decimal.NewFromInt(25000), 40)
		require.NoError(t, err)

		assert.Equal(t, StageLead, deal.Stage)
		assert.Equal(t, 40, deal.Probability)
		assert.True(t, deal.Value.Equal(decimal.NewFromInt(25000)))
		assert.Nil(t, deal.ActualCloseDate)
	})

	t.Run("accepts probability boundaries", func(t *testing.T) {
		_, err := NewDeal("Zero", decimal.Zero, 0)
		require.NoError(t, err)

		_, err = NewDeal("Certain", decimal.Zero, 100)
		require.NoError(t, err)
	})

	t.Run("rejects probability above 100", func(t *testing.T) {
		_, err := NewDeal("Overconfident", decimal.NewFromInt(100), 150)
		require.Error(t, err)

		var verr *shared.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "probability")
	})

	t.Run("rejects negative value", func(t *testing.T) {
		_, err := NewDeal("Refund", decimal.NewFromInt(-1), 50)
		require.Error(t, err)

		var verr *shared.ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "value")
	})

	t.Run("rejects blank title", func(t *testing.T) {
		_, err := NewDeal("  ", decimal.NewFromInt(100), 50)
		require.Error(t, err)
	})
}

func TestDealStageTransitions(t *testing.T) {
	newDeal := func(t *testing.T) *Deal {
		deal, err := NewDeal("Pilot engagement", decimal.NewFromInt(25000), 40)
		require.NoError(t, err)
		deal.ClearDomainEvents()
		return deal
	}

	t.Run("closing stamps the actual close date", func(t *testing.T) {
		deal := newDeal(t)
		require.NoError(t, deal.MoveToStage(StageClosedWon))

		require.NotNil(t, deal.ActualCloseDate)
		assert.True(t, deal.Stage.IsClosed())
	})

	t.Run("reopening clears the close date", func(t *testing.T) {
		deal := newDeal(t)
		require.NoError(t, deal.MoveToStage(StageClosedLost))
		require.NotNil(t, deal.ActualCloseDate)

		require.NoError(t, deal.MoveToStage(StageNegotiation))
		assert.Nil(t, deal.ActualCloseDate)
	})

	t.Run("stage change raises an event", func(t *testing.T) {
		deal := newDeal(t)
		require.NoError(t, deal.MoveToStage(StageQualified))

		events := deal.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventDealStageChanged, events[0].EventType())
	})

	t.Run("moving to the same stage raises no event", func(t *testing.T) {
		deal := newDeal(t)
		require.NoError(t, deal.MoveToStage(StageLead))

		assert.Empty(t, deal.GetDomainEvents())
	})

	t.Run("unknown stage is rejected", func(t *testing.T) {
		deal := newDeal(t)
		err := deal.MoveToStage("archived")
		require.Error(t, err)

		var derr *shared.DomainError
		require.True(t, errors.As(err, &derr))
		assert.Equal(t, "INVALID_DEAL_STAGE", derr.Code)
	})
}

func TestDealWeightedValue(t *testing.T) {
	deal, err := NewDeal("Pilot engagement", decimal.NewFromInt(25000), 40)
	require.NoError(t, err)

	assert.True(t, deal.WeightedValue().Equal(decimal.NewFromInt(10000)))
}

package notifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mauv0809/padel-roster/internal/club"
	"github.com/stretchr/testify/assert"
)

func TestMulti_FansOutAndJoinsErrors(t *testing.T) {
	ok := NewMock()
	failing := NewMock()
	failing.Err = errors.New("telegram is down")
	multi := Multi{ok, failing}

	group := club.Group{ID: "g1", Name: "Thursday Americano"}
	member := club.Member{ID: "U1", FirstName: "Ann", LastName: "Lee"}
	date := time.Date(2024, 11, 28, 0, 0, 0, 0, time.UTC)

	err := multi.NotifyPromotion(context.Background(), group, member, date, false)
	assert.ErrorIs(t, err, failing.Err)
	assert.Len(t, ok.NotifyPromotionCalls, 1)
	assert.Len(t, failing.NotifyPromotionCalls, 1)

	assert.NoError(t, Multi{ok}.AnnouncePeriodOpened(context.Background(), group, "Americano 14.11-04.12", false))
	assert.Equal(t, 2, ok.Calls())
}

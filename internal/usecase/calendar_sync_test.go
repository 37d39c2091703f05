package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/frontdesk/internal/entity"
	"github.com/xavierca1/frontdesk/internal/infra/queue"
	"github.com/xavierca1/frontdesk/internal/mocks"
	"github.com/xavierca1/frontdesk/internal/usecase"
)

func newSync() (*usecase.CalendarSyncUseCase, *mocks.BookingRepository, *mocks.CalendarTokenRepository, *mocks.CalendarGateway) {
	bookings := new(mocks.BookingRepository)
	tokens := new(mocks.CalendarTokenRepository)
	gateway := new(mocks.CalendarGateway)
	audit, _ := newAudit()
	return usecase.NewCalendarSyncUseCase(bookings, tokens, gateway, audit, nil), bookings, tokens, gateway
}

func TestApplySkipsWhenNotConnected(t *testing.T) {
	uc, _, tokens, gateway := newSync()
	tokens.On("FindByChiropractor", mock.Anything, "anna").Return(nil, entity.ErrTokenNotFound)

	err := uc.Apply(context.Background(), queue.CalendarSyncJob{Action: queue.SyncUpsert, BookingID: "b1", Chiropractor: "anna"})

	require.NoError(t, err)
	gateway.AssertNotCalled(t, "InsertEvent", mock.Anything, mock.Anything, mock.Anything)
}

func TestApplyInsertsAndStoresEventID(t *testing.T) {
	uc, bookings, tokens, gateway := newSync()
	token := &entity.CalendarToken{Chiropractor: "anna", AccessToken: "at"}
	booking := &entity.Booking{ID: "b1", Chiropractor: "anna"}

	tokens.On("FindByChiropractor", mock.Anything, "anna").Return(token, nil)
	bookings.On("FindByID", mock.Anything, "anna", "b1").Return(booking, nil)
	gateway.On("InsertEvent", mock.Anything, token, booking).Return("evt-9", nil)
	bookings.On("SetGoogleEventID", mock.Anything, "b1", "evt-9").Return(nil)

	err := uc.Apply(context.Background(), queue.CalendarSyncJob{Action: queue.SyncUpsert, BookingID: "b1", Chiropractor: "anna"})

	require.NoError(t, err)
	bookings.AssertExpectations(t)
}

func TestApplyUpdatesExistingEvent(t *testing.T) {
	uc, bookings, tokens, gateway := newSync()
	token := &entity.CalendarToken{Chiropractor: "anna"}
	booking := &entity.Booking{ID: "b1", Chiropractor: "anna", GoogleEventID: "evt-1"}

	tokens.On("FindByChiropractor", mock.Anything, "anna").Return(token, nil)
	bookings.On("FindByID", mock.Anything, "anna", "b1").Return(booking, nil)
	gateway.On("UpdateEvent", mock.Anything, token, "evt-1", booking).Return(nil)

	require.NoError(t, uc.Apply(context.Background(), queue.CalendarSyncJob{Action: queue.SyncUpsert, BookingID: "b1", Chiropractor: "anna"}))
	gateway.AssertExpectations(t)
}

func TestApplyDeleteReturnsGatewayError(t *testing.T) {
	uc, _, tokens, gateway := newSync()
	token := &entity.CalendarToken{Chiropractor: "anna"}
	tokens.On("FindByChiropractor", mock.Anything, "anna").Return(token, nil)
	gateway.On("DeleteEvent", mock.Anything, token, "evt-1").Return(errors.New("503"))

	err := uc.Apply(context.Background(), queue.CalendarSyncJob{Action: queue.SyncDelete, BookingID: "b1", Chiropractor: "anna", EventID: "evt-1"})

	assert.EqualError(t, err, "503")
}

func TestConnectKeepsPreviousRefreshToken(t *testing.T) {
	uc, _, tokens, _ := newSync()
	tokens.On("FindByChiropractor", mock.Anything, "anna").Return(&entity.CalendarToken{RefreshToken: "old-refresh"}, nil)
	tokens.On("Save", mock.Anything, mock.MatchedBy(func(tok *entity.CalendarToken) bool {
		return tok.RefreshToken == "old-refresh" && tok.CalendarID == "primary"
	})).Return(nil)

	err := uc.Connect(context.Background(), staff, &entity.CalendarToken{Chiropractor: "anna", AccessToken: "new"})

	require.NoError(t, err)
	tokens.AssertExpectations(t)
}

func TestConnected(t *testing.T) {
	uc, _, tokens, _ := newSync()
	tokens.On("FindByChiropractor", mock.Anything, "anna").Return(nil, entity.ErrTokenNotFound)

	ok, err := uc.Connected(context.Background(), staff, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

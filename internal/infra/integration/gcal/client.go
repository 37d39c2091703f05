package gcal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/xavierca1/frontdesk/internal/entity"
	"github.com/xavierca1/frontdesk/internal/logger"
)

const bookingIDProperty = "frontdeskBookingId"

// Client mirrors bookings into Google Calendar with per-chiropractor grants.
type Client struct {
	config            *oauth2.Config
	tokens            entity.CalendarTokenRepositoryInterface
	location          *time.Location
	defaultCalendarID string

	// endpoint overrides the API base URL in tests.
	endpoint string
}

func NewClient(clientID, clientSecret, redirectURL, calendarID string, tokens entity.CalendarTokenRepositoryInterface, loc *time.Location) *Client {
	if loc == nil {
		loc = time.UTC
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	return &Client{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{calendar.CalendarEventsScope},
			Endpoint:     google.Endpoint,
		},
		tokens:            tokens,
		location:          loc,
		defaultCalendarID: calendarID,
	}
}

// AuthCodeURL returns the consent page URL. Offline access with forced
// approval makes Google hand out a refresh token every time.
func (c *Client) AuthCodeURL(state string) string {
	return c.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades the callback code for a grant owned by chiropractor.
func (c *Client) Exchange(ctx context.Context, chiropractor, code string) (*entity.CalendarToken, error) {
	tok, err := c.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange oauth code: %w", err)
	}
	return &entity.CalendarToken{
		Chiropractor: chiropractor,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
		CalendarID:   c.defaultCalendarID,
		UpdatedAt:    time.Now(),
	}, nil
}

func (c *Client) InsertEvent(ctx context.Context, token *entity.CalendarToken, b *entity.Booking) (string, error) {
	svc, err := c.service(ctx, token)
	if err != nil {
		return "", err
	}
	event, err := eventFromBooking(b, c.location)
	if err != nil {
		return "", err
	}

	created, err := svc.Events.Insert(c.calendarID(token), event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert google event: %w", err)
	}
	return created.Id, nil
}

func (c *Client) UpdateEvent(ctx context.Context, token *entity.CalendarToken, eventID string, b *entity.Booking) error {
	svc, err := c.service(ctx, token)
	if err != nil {
		return err
	}
	event, err := eventFromBooking(b, c.location)
	if err != nil {
		return err
	}

	_, err = svc.Events.Update(c.calendarID(token), eventID, event).Context(ctx).Do()
	if isGone(err) {
		logger.FromContext(ctx).Info("google event no longer exists, skipping update",
			zap.String("event_id", eventID),
			zap.String("booking_id", b.ID),
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("update google event: %w", err)
	}
	return nil
}

// DeleteEvent removes the mirror. An event already gone counts as deleted.
func (c *Client) DeleteEvent(ctx context.Context, token *entity.CalendarToken, eventID string) error {
	svc, err := c.service(ctx, token)
	if err != nil {
		return err
	}
	err = svc.Events.Delete(c.calendarID(token), eventID).Context(ctx).Do()
	if err != nil && !isGone(err) {
		return fmt.Errorf("delete google event: %w", err)
	}
	return nil
}

func (c *Client) calendarID(token *entity.CalendarToken) string {
	if token.CalendarID != "" {
		return token.CalendarID
	}
	return c.defaultCalendarID
}

func (c *Client) service(ctx context.Context, token *entity.CalendarToken) (*calendar.Service, error) {
	tok := &oauth2.Token{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Expiry:       token.Expiry,
	}
	src := &persistingTokenSource{
		base:    c.config.TokenSource(ctx, tok),
		tokens:  c.tokens,
		stored:  token,
		current: tok.AccessToken,
	}
	httpClient := oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, src))

	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint))
	}
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return svc, nil
}

// persistingTokenSource writes refreshed access tokens back to storage so the
// next job does not refresh again.
type persistingTokenSource struct {
	base    oauth2.TokenSource
	tokens  entity.CalendarTokenRepositoryInterface
	stored  *entity.CalendarToken
	current string
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken == s.current || s.tokens == nil {
		return tok, nil
	}

	updated := *s.stored
	updated.AccessToken = tok.AccessToken
	updated.TokenType = tok.TokenType
	updated.Expiry = tok.Expiry
	if tok.RefreshToken != "" {
		updated.RefreshToken = tok.RefreshToken
	}
	updated.UpdatedAt = time.Now()

	if err := s.tokens.Save(context.Background(), &updated); err != nil {
		logger.L().Warn("persist refreshed google token failed",
			zap.String("chiropractor", updated.Chiropractor),
			zap.Error(err),
		)
	}
	s.current = tok.AccessToken
	return tok, nil
}

func eventFromBooking(b *entity.Booking, loc *time.Location) (*calendar.Event, error) {
	start, err := b.StartTime(loc)
	if err != nil {
		return nil, fmt.Errorf("booking start: %w", err)
	}
	end, err := b.EndTime(loc)
	if err != nil {
		return nil, fmt.Errorf("booking end: %w", err)
	}

	event := &calendar.Event{
		Summary:     b.Name,
		Description: b.Description,
		Start:       &calendar.EventDateTime{DateTime: start.Format(time.RFC3339), TimeZone: loc.String()},
		End:         &calendar.EventDateTime{DateTime: end.Format(time.RFC3339), TimeZone: loc.String()},
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{bookingIDProperty: b.ID},
		},
	}
	if b.Status == entity.BookingCompleted {
		event.ColorId = "8"
	}
	return event, nil
}

func isGone(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone
	}
	return false
}

package ical

import (
	"bytes"
	"fmt"
	"time"

	goical "github.com/emersion/go-ical"

	"github.com/xavierca1/frontdesk/internal/entity"
)

const productID = "-//frontdesk//calendar feed//PL"

// Feed encodes bookings as a VCALENDAR document for calendar subscriptions.
// Bookings with unparseable dates are skipped.
func Feed(name string, bookings []*entity.Booking, loc *time.Location, now time.Time) ([]byte, error) {
	if loc == nil {
		loc = time.UTC
	}

	cal := goical.NewCalendar()
	cal.Props.SetText(goical.PropVersion, "2.0")
	cal.Props.SetText(goical.PropProductID, productID)
	if name != "" {
		cal.Props.SetText("X-WR-CALNAME", name)
	}
	cal.Props.SetText("X-WR-TIMEZONE", loc.String())

	for _, b := range bookings {
		event, ok := toEvent(b, loc, now)
		if !ok {
			continue
		}
		cal.Children = append(cal.Children, event)
	}

	var buf bytes.Buffer
	if err := goical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode ical feed: %w", err)
	}
	return buf.Bytes(), nil
}

func toEvent(b *entity.Booking, loc *time.Location, now time.Time) (*goical.Component, bool) {
	start, err := b.StartTime(loc)
	if err != nil {
		return nil, false
	}
	end, err := b.EndTime(loc)
	if err != nil {
		return nil, false
	}

	stamp := b.UpdatedAt
	if stamp.IsZero() {
		stamp = now
	}

	ve := goical.NewComponent(goical.CompEvent)
	ve.Props.SetText(goical.PropUID, b.ID+"@frontdesk")
	ve.Props.SetText(goical.PropSummary, b.Name)
	ve.Props.SetDateTime(goical.PropDateTimeStamp, stamp.UTC())
	ve.Props.SetDateTime(goical.PropDateTimeStart, start.UTC())
	ve.Props.SetDateTime(goical.PropDateTimeEnd, end.UTC())
	ve.Props.SetText(goical.PropStatus, "CONFIRMED")
	ve.Props.SetText(goical.PropCategories, b.Chiropractor)
	if b.Description != "" {
		ve.Props.SetText(goical.PropDescription, b.Description)
	}
	return ve, true
}

package entity

// ReconcileLeadStatus derives a lead's status from its bookings.
//
// A lead with any scheduled booking is Umówiony. A lead left Umówiony with no
// bookings at all goes back to Nowy kontakt. Any other combination keeps the
// current status, so completed visits leave the lead Umówiony and manual
// board moves are not overridden.
func ReconcileLeadStatus(current LeadStatus, bookings []*Booking) LeadStatus {
	for _, b := range bookings {
		if b.Status == BookingScheduled {
			return LeadStatusBooked
		}
	}
	if current == LeadStatusBooked && len(bookings) == 0 {
		return LeadStatusNew
	}
	return current
}

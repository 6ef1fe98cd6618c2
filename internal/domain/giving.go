package domain

import "time"

// Transaction types counted toward giving statistics. Everything else
// (soft credits, pledges themselves, memberships) is excluded.
const (
	TransactionDonation          = "Donation"
	TransactionPledgePayment     = "PledgePayment"
	TransactionRecurringDonation = "RecurringDonationPayment"
)

// Designation is the portion of one gift allocated to a fund, campaign, or
// appeal. Missing fields stay empty; a designation without its own amount or
// date inherits them from the parent transaction.
type Designation struct {
	Fund     string     `json:"fund,omitempty"`
	Campaign string     `json:"campaign,omitempty"`
	Appeal   string     `json:"appeal,omitempty"`
	Amount   float64    `json:"amount"`
	Date     *time.Time `json:"date,omitempty"`
}

// GivingStats aggregates a constituent's included transactions. "Last year"
// is the full prior calendar year; YTD runs from January 1 of the current
// year through now.
type GivingStats struct {
	LifetimeTotal  float64    `json:"lifetime_total"`
	LastYearTotal  float64    `json:"last_year_total"`
	YTDTotal       float64    `json:"ytd_total"`
	LastGiftAmount float64    `json:"last_gift_amount"`
	LastGiftDate   *time.Time `json:"last_gift_date,omitempty"`
	GiftCount      int        `json:"gift_count"`
}

// GivingInterest is one ranked giving-interest bucket, keyed by the
// (fund, campaign, appeal) triple. The synthetic "Other" bucket absorbs
// everything past the top five and always sorts last.
type GivingInterest struct {
	Fund          string     `json:"fund,omitempty"`
	Campaign      string     `json:"campaign,omitempty"`
	Appeal        string     `json:"appeal,omitempty"`
	TotalAmount   float64    `json:"total_amount"`
	GiftCount     int        `json:"gift_count"`
	FirstGiftDate *time.Time `json:"first_gift_date,omitempty"`
	LastGiftDate  *time.Time `json:"last_gift_date,omitempty"`
}

// GivingSummary is the call-ready analytics payload for one constituent.
type GivingSummary struct {
	ConstituentID string           `json:"constituent_id"`
	Stats         GivingStats      `json:"stats"`
	Interests     []GivingInterest `json:"interests"`
}

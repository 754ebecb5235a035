package models

import "time"

// CustomerProfile represents a row of customer_profiles
type CustomerProfile struct {
	LoyaltyID         string     `json:"loyaltyId"`
	CIDCustomerID     string     `json:"cidCustomerId"`
	FormatType        string     `json:"formatType"`
	StoreID           string     `json:"storeId"`
	FirstSeen         time.Time  `json:"firstSeen"`
	LastSeen          time.Time  `json:"lastSeen"`
	TotalTransactions int        `json:"totalTransactions"`
	IsManagerCard     bool       `json:"isManagerCard"`
	AVTVerified       bool       `json:"avtVerified"`
	LastAVTVerified   *time.Time `json:"lastAvtVerified,omitempty"`
	EAIVVerified      bool       `json:"eaivVerified"`
	LastEAIVVerified  *time.Time `json:"lastEaivVerified,omitempty"`
}

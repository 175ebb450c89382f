package models

// List is a subscriber list that imported records can be attached to.
type List struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	Type            string `json:"type"`
	Optin           string `json:"optin"`
	SubscriberCount int    `json:"subscriber_count"`
}

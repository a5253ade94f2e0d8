// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

// ProductAddedEvent is published when a product is appended to a
// manufacturer's catalog.  It carries enough information for downstream
// consumers to log or trigger analytics without querying the primary
// database.
type ProductAddedEvent struct {
	ManufacturerID string  `json:"manufacturer_id"`
	ProductID      string  `json:"product_id"`
	ProductName    string  `json:"product_name"`
	TotalPrice     float64 `json:"total_price"`
	BillPrice      float64 `json:"bill_price"`
	Foc            bool    `json:"foc"`
	AddedAt        string  `json:"added_at"`
}

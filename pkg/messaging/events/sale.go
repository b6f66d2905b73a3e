package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/grocerytracker/pkg/messaging"
	"go.opentelemetry.io/otel/propagation"
)

// SaleCreatedEvent is emitted once a sale has been committed.
// Carrier holds the propagated trace context of the request that made the sale.
type SaleCreatedEvent struct {
	Carrier        propagation.MapCarrier `json:"carrier,omitempty"`
	SaleID         int64                  `json:"sale_id"`
	ProductID      int64                  `json:"product_id"`
	Quantity       int32                  `json:"quantity"`
	TotalPrice     float64                `json:"total_price"`
	RemainingStock int32                  `json:"remaining_stock"`
	CreatedAt      time.Time              `json:"created_at"`
}

func (e SaleCreatedEvent) Subject() string {
	return messaging.SalesCreatedSubject
}

func (e SaleCreatedEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

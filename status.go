package main

import "time"

// Order lifecycle. An order only ever moves to an immediate successor;
// skipping stages or reverting is not supported.
const (
	StatusPending           = "pending"
	StatusAccepted          = "accepted"
	StatusProcessing        = "processing"
	StatusOrderProcessed    = "orderProcessed"
	StatusShipped           = "shipped"
	StatusInTransit         = "inTransit"
	StatusArrivedAtFacility = "arrivedAtFacility"
	StatusOutForDelivery    = "outForDelivery"
	StatusDelivered         = "delivered"
	StatusCompleted         = "completed"
	StatusCancelled         = "cancelled"
	StatusRejected          = "rejected"
)

var nextStatuses = map[string][]string{
	StatusPending:           {StatusAccepted, StatusProcessing, StatusRejected},
	StatusAccepted:          {StatusProcessing},
	StatusProcessing:        {StatusOrderProcessed},
	StatusOrderProcessed:    {StatusShipped},
	StatusShipped:           {StatusInTransit},
	StatusInTransit:         {StatusArrivedAtFacility},
	StatusArrivedAtFacility: {StatusOutForDelivery},
	StatusOutForDelivery:    {StatusDelivered, StatusCompleted},
}

func CanTransition(from string, to string) bool {
	for _, next := range nextStatuses[from] {
		if next == to {
			return true
		}
	}

	return false
}

func NextStatusOptions(from string) []string {
	return nextStatuses[from]
}

func IsTerminalStatus(status string) bool {
	switch status {
	case StatusCancelled, StatusRejected, StatusDelivered, StatusCompleted:
		return true
	}

	return false
}

// AppendStatusUpdate adds one row to the order's audit trail. History is
// append-only; previous entries are never touched.
func AppendStatusUpdate(orderID string, status string, message string, location *string) {
	db.Create(&StatusUpdate{
		OrderID:   orderID,
		Status:    status,
		Message:   message,
		Location:  location,
		CreatedAt: time.Now(),
	})
}

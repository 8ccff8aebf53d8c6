package commands

import (
	"snapeats/internal/core/domain/model/order"
	"snapeats/internal/core/ports"
)

// publishOrderEvents fans out the events an aggregate recorded during a
// committed transaction. Routing rules:
//   - order:new goes to the restaurant room
//   - order:update goes to the customer room, and additionally to the
//     restaurant room when the order was just taken off the new-order list
//     (placed -> accepted)
//   - order:rider_assigned goes to the customer room; the dispatch
//     coordinator separately notifies riders holding withdrawn offers
func publishOrderEvents(publisher ports.EventPublisher, o *order.Order, events []order.Event) {
	for _, event := range events {
		switch e := event.(type) {
		case order.OrderPlaced:
			publisher.Publish(ports.RestaurantRoom(e.RestaurantID), e)
		case order.OrderStatusChanged:
			publisher.Publish(ports.UserRoom(o.Customer()), e)
			if e.From == order.Placed && e.To == order.Accepted {
				publisher.Publish(ports.RestaurantRoom(o.Restaurant()), e)
			}
		case order.OrderRiderAssigned:
			publisher.Publish(ports.UserRoom(o.Customer()), e)
		}
	}
}

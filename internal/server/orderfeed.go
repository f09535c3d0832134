package server

import (
	"encoding/json"

	"github.com/shashiranjanraj/kirana/app/models"
	"github.com/shashiranjanraj/kirana/app/resources"
	"github.com/shashiranjanraj/kirana/app/services"
	"github.com/shashiranjanraj/kirana/pkg/event"
	"github.com/shashiranjanraj/kirana/pkg/logger"
	"github.com/shashiranjanraj/kirana/pkg/ws"
)

// listenOrderFeed relays order lifecycle events to connected dashboard
// clients. Broadcasts are fire-and-forget; a slow client drops frames
// rather than blocking the event listener.
func listenOrderFeed(hub *ws.Hub) {
	relay := func(name string) func(payload interface{}) {
		return func(payload interface{}) {
			order, ok := payload.(models.Order)
			if !ok {
				return
			}

			frame, err := json.Marshal(map[string]interface{}{
				"event": name,
				"order": resources.Order(order),
			})
			if err != nil {
				logger.Warn("order feed: marshal", "event", name, "error", err)
				return
			}

			select {
			case hub.Broadcast <- frame:
			default:
			}
		}
	}

	event.Listen(services.EventOrderCreated, relay(services.EventOrderCreated))
	event.Listen(services.EventOrderCancelled, relay(services.EventOrderCancelled))
	event.Listen(services.EventOrderStatusChanged, relay(services.EventOrderStatusChanged))
}

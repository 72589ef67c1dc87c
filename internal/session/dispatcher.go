package session

import (
	"context"
	"encoding/json"

	"collabroom/internal/metrics"
	"collabroom/internal/models"
	"collabroom/internal/utils"
)

// Bus republishes room broadcasts to other instances. Implementations must
// not block the caller.
type Bus interface {
	Publish(roomID string, frame models.WSFrame)
}

// Event is one unit of work for the dispatcher loop: an inbound frame from a
// connection, a transport-reported disconnect, or a frame relayed from
// another instance.
type Event struct {
	Client *Client
	Frame  models.WSFrame

	Disconnect bool

	Remote     bool
	RemoteRoom string
}

// Dispatcher is the single entry point for all inbound events. Run consumes
// them one at a time, so every handler mutates the registry from one logical
// thread of control; events from the same connection keep their arrival
// order.
type Dispatcher struct {
	log *utils.Logger
	reg *Registry
	co  *Coordinator
	bus Bus

	events chan Event
}

func NewDispatcher(log *utils.Logger, reg *Registry) *Dispatcher {
	return &Dispatcher{
		log:    log,
		reg:    reg,
		co:     NewCoordinator(reg),
		events: make(chan Event, 256),
	}
}

// AttachBus enables cross-instance fanout of relay frames.
func (d *Dispatcher) AttachBus(b Bus) { d.bus = b }

// Post queues an event for the run loop.
func (d *Dispatcher) Post(ev Event) { d.events <- ev }

// Disconnect reports a transport-level disconnect for the client. The
// cleanup event is posted exactly once per connection no matter how many
// times the transport fires.
func (d *Dispatcher) Disconnect(c *Client) {
	c.disconnected.Do(func() {
		d.Post(Event{Client: c, Disconnect: true})
	})
}

// Run consumes posted events until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-d.events:
			d.Dispatch(ev)
		}
	}
}

// Dispatch handles a single event to completion. Malformed payloads are
// dropped without a reply so a probing client cannot tell validation
// outcomes apart; a bad frame never affects other rooms or connections.
func (d *Dispatcher) Dispatch(ev Event) {
	if ev.Remote {
		d.relayRemote(ev.RemoteRoom, ev.Frame)
		return
	}
	if ev.Client == nil {
		return
	}
	if ev.Disconnect {
		metrics.Events.WithLabelValues("disconnect").Inc()
		d.co.Leave(ev.Client)
		metrics.Rooms.Set(float64(d.reg.RoomCount()))
		return
	}

	metrics.Events.WithLabelValues(eventLabel(ev.Frame.Event)).Inc()

	switch ev.Frame.Event {
	case models.EventJoin:
		var p models.JoinPayload
		decode(ev.Frame.Data, &p)
		if p.RoomID == "" || p.UserName == "" {
			return
		}
		d.co.Join(ev.Client, p.RoomID, p.UserName)
		metrics.Rooms.Set(float64(d.reg.RoomCount()))

	case models.EventCodeChange:
		var p models.CodeChangePayload
		decode(ev.Frame.Data, &p)
		if p.RoomID == "" || p.Code == nil {
			return
		}
		d.relay(ev.Client, p.RoomID, models.WSFrame{Event: models.EventCodeUpdate, Data: *p.Code}, false)

	case models.EventTyping:
		var p models.TypingPayload
		decode(ev.Frame.Data, &p)
		if p.RoomID == "" || p.UserName == "" {
			return
		}
		d.relay(ev.Client, p.RoomID, models.WSFrame{Event: models.EventUserTyping, Data: p.UserName}, false)

	case models.EventLanguageChange:
		var p models.LanguageChangePayload
		decode(ev.Frame.Data, &p)
		if p.RoomID == "" || p.Language == "" {
			return
		}
		d.relay(ev.Client, p.RoomID, models.WSFrame{Event: models.EventLanguageUpdate, Data: p.Language}, true)

	case models.EventLeaveRoom:
		d.co.Leave(ev.Client)
		metrics.Rooms.Set(float64(d.reg.RoomCount()))

	default:
		// unknown event names are ignored, not answered
	}
}

// relay fans frame out to the members of roomID. The room id is taken from
// the payload as supplied, not from the sender's tracked room. codeUpdate
// and userTyping exclude the sender (the editor applies local edits
// immediately); languageUpdate includes it so every language selector
// converges on the same value.
func (d *Dispatcher) relay(sender *Client, roomID string, frame models.WSFrame, includeSender bool) {
	for _, peer := range d.reg.connections(roomID) {
		if !includeSender && peer == sender {
			continue
		}
		peer.Send(frame)
		metrics.Broadcasts.Inc()
	}
	if d.bus != nil {
		d.bus.Publish(roomID, frame)
	}
}

// relayRemote delivers a frame published by another instance to every local
// member of the room. The sender lives on the publishing instance, so no
// local exclusion applies.
func (d *Dispatcher) relayRemote(roomID string, frame models.WSFrame) {
	for _, peer := range d.reg.connections(roomID) {
		peer.Send(frame)
		metrics.Broadcasts.Inc()
	}
}

// eventLabel collapses client-supplied event names onto the known set so a
// client spamming made-up names cannot grow the counter's label space.
func eventLabel(event string) string {
	switch event {
	case models.EventJoin, models.EventCodeChange, models.EventTyping,
		models.EventLanguageChange, models.EventLeaveRoom:
		return event
	}
	return "unknown"
}

func decode(in any, out any) { b, _ := json.Marshal(in); _ = json.Unmarshal(b, out) }

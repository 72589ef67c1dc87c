package session

import (
	"collabroom/internal/metrics"
	"collabroom/internal/models"
)

// Coordinator owns every mutation of the Registry and computes the
// membership broadcast that follows each one. No other component may touch
// room membership.
type Coordinator struct {
	reg *Registry
}

func NewCoordinator(reg *Registry) *Coordinator { return &Coordinator{reg: reg} }

// Join moves the connection into roomID under userName. A connection that is
// already in a room leaves it first, so it can never be a member of two
// rooms at once. The updated member list goes to every connection in the
// room, including the joining one.
func (co *Coordinator) Join(c *Client, roomID, userName string) {
	if c.Room() != "" {
		co.Leave(c)
	}
	c.setPresence(roomID, userName)
	members := co.reg.add(roomID, c, userName)
	co.broadcastMembers(roomID, members)
}

// Leave removes the connection from its current room, tells the remaining
// members, and clears the connection's presence. Calling it again is a
// no-op; the explicit leaveRoom event and a transport disconnect both land
// here.
func (co *Coordinator) Leave(c *Client) {
	roomID := c.Room()
	if roomID == "" {
		return
	}
	members := co.reg.remove(roomID, c, c.Name())
	c.clearPresence()
	co.broadcastMembers(roomID, members)
}

func (co *Coordinator) broadcastMembers(roomID string, members []string) {
	frame := models.WSFrame{Event: models.EventUserJoined, Data: members}
	for _, peer := range co.reg.connections(roomID) {
		peer.Send(frame)
		metrics.Broadcasts.Inc()
	}
}

package session

import "sync"

// Registry is the process-wide map from room id to its current members. It
// is constructed once at startup and injected into the coordinator; all
// mutation happens on the dispatcher loop. The lock exists for read-side
// snapshots taken by the REST layer and metrics.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*room
}

// room tracks the connections present in one room together with the
// insertion-ordered display names. names has set semantics: a name joining
// twice is recorded once and removed by the first leave, even when another
// connection still uses it.
type room struct {
	names []string
	conns map[*Client]struct{}
}

func NewRegistry() *Registry { return &Registry{rooms: make(map[string]*room)} }

// add records the connection and its display name in the room, creating the
// room on first use, and returns the updated ordered member list.
func (r *Registry) add(id string, c *Client, name string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm := r.rooms[id]
	if rm == nil {
		rm = &room{conns: make(map[*Client]struct{})}
		r.rooms[id] = rm
	}
	rm.conns[c] = struct{}{}
	if !contains(rm.names, name) {
		rm.names = append(rm.names, name)
	}
	return snapshot(rm.names)
}

// remove deletes the connection and its display name from the room and
// returns the remaining ordered member list. Rooms with no connections left
// are pruned; rejoining the same id later recreates the room transparently.
func (r *Registry) remove(id string, c *Client, name string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	rm := r.rooms[id]
	if rm == nil {
		return nil
	}
	delete(rm.conns, c)
	rm.names = without(rm.names, name)
	if len(rm.conns) == 0 {
		delete(r.rooms, id)
		return nil
	}
	return snapshot(rm.names)
}

// connections returns the clients currently present in the room.
func (r *Registry) connections(id string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm := r.rooms[id]
	if rm == nil {
		return nil
	}
	out := make([]*Client, 0, len(rm.conns))
	for c := range rm.conns {
		out = append(out, c)
	}
	return out
}

// Members returns the insertion-ordered member names of a room. An empty
// room is indistinguishable from one that was never created.
func (r *Registry) Members(id string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rm := r.rooms[id]
	if rm == nil {
		return []string{}
	}
	return snapshot(rm.names)
}

// RoomCount returns the number of rooms with at least one connection.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func without(names []string, name string) []string {
	out := names[:0]
	for _, n := range names {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}

func snapshot(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}

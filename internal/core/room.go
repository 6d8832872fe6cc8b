package core

// room tracks the live membership of one room: which clients are in
// it and the display name each declared at join time. Only the hub
// goroutine touches it.
type room struct {
	id      string
	members map[*Client]string
}

func newRoom(id string) *room {
	return &room{
		id:      id,
		members: make(map[*Client]string),
	}
}

// join records a client under the given name. Rejoining overwrites
// the previously declared name.
func (r *room) join(c *Client, name string) {
	r.members[c] = name
}

// leave removes a client. Returns true if it was a member.
func (r *room) leave(c *Client) bool {
	if _, ok := r.members[c]; !ok {
		return false
	}
	delete(r.members, c)
	return true
}

// roster snapshots the display names of all current members. Names
// are a multiset: two connections with the same declared name yield
// two entries. Order is unspecified.
func (r *room) roster() []string {
	names := make([]string, 0, len(r.members))
	for _, name := range r.members {
		names = append(names, name)
	}
	return names
}

// broadcast sends an event to every member.
func (r *room) broadcast(ev *Event) {
	for c := range r.members {
		c.send(ev)
	}
}

func (r *room) empty() bool {
	return len(r.members) == 0
}

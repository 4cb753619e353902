package eventstream

// Subscribe registers a client with no connection and returns its queue
func (h *Hub) Subscribe(buffer int) <-chan []byte {
	c := &client{out: make(chan []byte, buffer), closed: make(chan struct{})}
	h.add(c)
	return c.out
}

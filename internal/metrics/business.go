package metrics

// IncrementWSConnection records an accepted websocket connection.
func (m *Metrics) IncrementWSConnection() {
	m.safeExecute("IncrementWSConnection", func() {
		m.WSConnectionsTotal.Inc()
		m.WSActiveConnections.Inc()
	})
}

// DecrementWSConnection records a closed websocket connection.
func (m *Metrics) DecrementWSConnection() {
	m.safeExecute("DecrementWSConnection", func() {
		m.WSActiveConnections.Dec()
	})
}

// IncrementRoomJoin records a room join.
func (m *Metrics) IncrementRoomJoin() {
	m.safeExecute("IncrementRoomJoin", func() {
		m.RoomJoinsTotal.Inc()
	})
}

// IncrementRoomLeave records a room leave.
func (m *Metrics) IncrementRoomLeave() {
	m.safeExecute("IncrementRoomLeave", func() {
		m.RoomLeavesTotal.Inc()
	})
}

// IncrementSignalRelayed records one relayed collaboration event.
func (m *Metrics) IncrementSignalRelayed(event string) {
	m.safeExecute("IncrementSignalRelayed", func() {
		m.SignalsRelayedTotal.WithLabelValues(event).Inc()
	})
}

// SetRoomsActive sets the active room gauge.
func (m *Metrics) SetRoomsActive(count int) {
	m.safeExecute("SetRoomsActive", func() {
		m.RoomsActive.Set(float64(count))
	})
}

// SetPresenceUsersActive sets the tracked presence entries gauge.
func (m *Metrics) SetPresenceUsersActive(count int) {
	m.safeExecute("SetPresenceUsersActive", func() {
		m.PresenceUsersActive.Set(float64(count))
	})
}

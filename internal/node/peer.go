package node

import "encoding/json"

// PeerStatus tracks the controller's last announced status.
type PeerStatus struct {
	status string
	logger Logger
}

// NewPeerStatus creates a tracker with an unknown status.
func NewPeerStatus(logger Logger) *PeerStatus {
	if logger == nil {
		logger = noopLogger{}
	}
	return &PeerStatus{logger: logger}
}

// Observe records a {"status": ...} payload and logs changes.
// Payloads without a string status are ignored.
func (p *PeerStatus) Observe(payload []byte) {
	var msg struct {
		Status *string `json:"status"`
	}
	if err := json.Unmarshal(payload, &msg); err != nil || msg.Status == nil {
		p.logger.Debug("peer status ignored", "payload", string(payload))
		return
	}
	if *msg.Status == p.status {
		return
	}
	p.logger.Info("controller status changed", "from", p.status, "to", *msg.Status)
	p.status = *msg.Status
}

package models

import "time"

// CallbackNotice is the flattened body relayed downstream once a callback
// has been accepted.
type CallbackNotice struct {
	EventID       string    `json:"event_id"`
	OrderID       string    `json:"order_id"`
	State         string    `json:"state"`
	SubState      string    `json:"order_sub_state,omitempty"`
	KnownSubState bool      `json:"known_sub_state"`
	Message       string    `json:"message,omitempty"`
	ReceivedAt    time.Time `json:"received_at"`
}

// ToCallbackNotice flattens info into a CallbackNotice.
func (info OrderStateInfo) ToCallbackNotice(eventID string, receivedAt time.Time) CallbackNotice {
	return CallbackNotice{
		EventID:       eventID,
		OrderID:       deref(info.OrderID),
		State:         deref(info.RawState),
		SubState:      deref(info.RawSubState),
		KnownSubState: info.SubState != nil,
		Message:       deref(info.Message),
		ReceivedAt:    receivedAt.UTC(),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

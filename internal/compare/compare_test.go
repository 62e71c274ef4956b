package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/juancollazo-ch/monoparts-service/internal/models"
)

func info(state, sub string) models.OrderStateInfo {
	raw := map[string]any{"order_id": "o-1", "state": state}
	if sub != "" {
		raw["order_sub_state"] = sub
	}
	return models.DecodeOrderState(raw)
}

func TestOrderStates(t *testing.T) {
	waiting := info("IN_PROCESS", "WAITING_FOR_CLIENT")
	tests := []struct {
		name     string
		prev     *models.OrderStateInfo
		curr     models.OrderStateInfo
		changed  bool
		terminal bool
	}{
		{"first reading", nil, waiting, true, false},
		{"same", &waiting, info("IN_PROCESS", "WAITING_FOR_CLIENT"), false, false},
		{"sub state moves", &waiting, info("IN_PROCESS", "WAITING_FOR_STORE_CONFIRM"), true, false},
		{"unknown sub state", &waiting, info("IN_PROCESS", "SOMETHING_NEW"), true, false},
		{"success", &waiting, info("SUCCESS", ""), true, true},
		{"fail", &waiting, info("FAIL", "REJECTED_BY_STORE"), true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := OrderStates(tt.prev, tt.curr, nil)
			assert.Equal(t, tt.changed, res.Changed)
			assert.Equal(t, tt.terminal, res.Terminal)
			assert.Equal(t, "o-1", res.OrderID)
		})
	}
}

func TestOrderStates_LogsChange(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	prev := info("IN_PROCESS", "WAITING_FOR_CLIENT")

	OrderStates(&prev, info("SUCCESS", ""), zap.New(core))
	OrderStates(&prev, prev, zap.New(core))

	assert.Equal(t, 1, logs.Len())
	assert.Equal(t, "IN_PROCESS/WAITING_FOR_CLIENT", logs.All()[0].ContextMap()["from"])
}

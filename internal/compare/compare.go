package compare

import (
	"go.uber.org/zap"

	"github.com/juancollazo-ch/monoparts-service/internal/logging"
	"github.com/juancollazo-ch/monoparts-service/internal/models"
)

// Result describe el resultado de la comparación
type Result struct {
	Changed     bool   // true si cambió el estado o el sub-estado
	OrderID     string // id de la orden
	OldState    string
	NewState    string
	OldSubState string
	NewSubState string
	Terminal    bool // SUCCESS o FAIL: ya no habrá más transiciones
}

// OrderStates compara dos lecturas del estado de una orden. Se comparan los
// valores crudos, así los estados y sub-estados desconocidos también cuentan
// como transición. prev puede ser nil en la primera lectura.
func OrderStates(prev *models.OrderStateInfo, curr models.OrderStateInfo, logger *zap.Logger) Result {
	logger = logging.OrNop(logger)

	res := Result{
		OrderID:     val(curr.OrderID),
		NewState:    val(curr.RawState),
		NewSubState: val(curr.RawSubState),
		Terminal:    IsTerminal(curr),
	}
	if prev == nil {
		res.Changed = true
	} else {
		res.OldState = val(prev.RawState)
		res.OldSubState = val(prev.RawSubState)
		res.Changed = res.OldState != res.NewState || res.OldSubState != res.NewSubState
	}

	if res.Changed {
		logger.Info("compare: status change detected",
			zap.String("order_id", res.OrderID),
			zap.String("from", res.OldState+"/"+res.OldSubState),
			zap.String("to", res.NewState+"/"+res.NewSubState),
		)
	} else {
		logger.Debug("compare: no change in status",
			zap.String("order_id", res.OrderID),
			zap.String("status", res.NewState),
		)
	}
	return res
}

// IsTerminal indica si info es un estado final.
func IsTerminal(info models.OrderStateInfo) bool {
	if info.State == nil {
		return false
	}
	return *info.State == models.OrderStateSuccess || *info.State == models.OrderStateFail
}

func val(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

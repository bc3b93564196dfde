package minter

import (
	"go.uber.org/zap"
)

// Pipeline stage names reported to the observer, in execution order.
const (
	StageValidate     = "validate"
	StageWalletCheck  = "wallet_check"
	StageNetworkProbe = "network_probe"
	StageKeypair      = "keypair"
	StageMetadata     = "metadata"
	StageCollection   = "collection"
	StageEncode       = "encode"
	StageSign         = "sign"
	StageSubmit       = "submit"
	StageConfirm      = "confirm"
	StageDone         = "done"
)

// Observer receives pipeline progress. Implementations must be cheap; they
// run inline with the mint.
type Observer interface {
	Stage(stage string, fields ...zap.Field)
	Failed(stage string, err error)
}

// LogObserver reports progress through the service logger.
type LogObserver struct {
	log *zap.Logger
}

func NewLogObserver(log *zap.Logger) *LogObserver {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogObserver{log: log}
}

func (o *LogObserver) Stage(stage string, fields ...zap.Field) {
	o.log.Info("mint pipeline stage", append([]zap.Field{zap.String("stage", stage)}, fields...)...)
}

func (o *LogObserver) Failed(stage string, err error) {
	o.log.Error("mint pipeline failed",
		zap.String("stage", stage),
		zap.Error(err),
	)
}

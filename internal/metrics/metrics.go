package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Metrics names.
	MetricNameBuildInfo        = "solstake_build_info"
	MetricNameActionsAssembled = "solstake_actions_assembled_total"
	MetricNameErrors           = "solstake_errors_total"

	// Labels.
	LabelVersion   = "version"
	LabelCommit    = "commit"
	LabelDate      = "date"
	LabelAction    = "action"
	LabelErrorType = "error_type"

	// Error types.
	ErrorTypePoolNotFound   = "pool_not_found"
	ErrorTypeGetAccount     = "get_account"
	ErrorTypeDecodeAccount  = "decode_account"
	ErrorTypeResolveMints   = "resolve_mints"
	ErrorTypeAssembleAction = "assemble_action"
	ErrorTypeEstimateFee    = "estimate_fee"
)

var (
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: MetricNameBuildInfo,
			Help: "Build information of the staking client",
		},
		[]string{LabelVersion, LabelCommit, LabelDate},
	)

	ActionsAssembled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameActionsAssembled,
			Help: "Number of unsigned transactions assembled, by action",
		},
		[]string{LabelAction},
	)

	Errors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameErrors,
			Help: "Number of errors encountered",
		},
		[]string{LabelErrorType},
	)
)

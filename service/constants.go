package service

const (
	DefaultReviewThreshold = 0.5
	DefaultCacheSize       = 4096
	DefaultTopK            = 3

	MaxCandidates    = 12
	MaxPlanSteps     = 2
	MinAmountTarget  = 1000.0 // piso del monto sugerido
	ImprovementNoise = 1e-9   // margen para no elegir un no-op por ruido de punto flotante
	MinImprovement   = 1e-6   // mejora mínima para agregar un paso al plan

	ProbabilityDecimals = 6
	ClientMessageLines  = 3
)

var (
	amountFractions = []float64{0.9, 0.8, 0.7}
	utilTargets     = []float64{70, 60, 50}
	dtiTargets      = []float64{35, 30, 25}
)

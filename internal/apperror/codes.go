package apperror

// Code represents a unique error code for the application
type Code string

// General error codes
const (
	CodeRequiredField   Code = "REQUIRED_FIELD"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeInvalidFormat   Code = "INVALID_FORMAT"
	CodeInvalidState    Code = "INVALID_STATE"
	CodeNotFound        Code = "NOT_FOUND"
	CodeValidationError Code = "VALIDATION_ERROR"

	CodeConfigurationError Code = "CONFIGURATION_ERROR"

	CodeExternalServiceError Code = "EXTERNAL_SERVICE_ERROR"
	CodeServiceTimeout       Code = "SERVICE_TIMEOUT"
	CodeServiceUnavailable   Code = "SERVICE_UNAVAILABLE"
	CodeRateLimitExceeded    Code = "RATE_LIMIT_EXCEEDED"

	CodeInternalError Code = "INTERNAL_ERROR"
	CodeUnknownError  Code = "UNKNOWN_ERROR"
)

// Market data errors
const (
	CodeDataUnavailable  Code = "DATA_UNAVAILABLE"
	CodeStaleSnapshot    Code = "STALE_SNAPSHOT"
	CodeInvalidSnapshot  Code = "INVALID_SNAPSHOT"
	CodeDuplicatePool    Code = "DUPLICATE_POOL"
	CodeUnknownToken     Code = "UNKNOWN_TOKEN"
	CodeGasOracleFailed  Code = "GAS_ORACLE_FAILED"
	CodeEthereumRPCError Code = "ETHEREUM_RPC_ERROR"
)

// Arbitrage errors
const (
	CodeUnknownVenue      Code = "UNKNOWN_VENUE"
	CodeInvalidTradeSize  Code = "INVALID_TRADE_SIZE"
	CodeInvalidCycle      Code = "INVALID_CYCLE"
	CodeUnsolvableTarget  Code = "UNSOLVABLE_TARGET"
	CodeUnknownRiskTier   Code = "UNKNOWN_RISK_TIER"
	CodeEmptyBatch        Code = "EMPTY_BATCH"
	CodeScanCancelled     Code = "SCAN_CANCELLED"
	CodeExecutionAborted  Code = "EXECUTION_ABORTED"
	CodeJournalFailed     Code = "JOURNAL_FAILED"
	CodePriceCalculation  Code = "PRICE_CALCULATION_FAILED"
	CodeSpreadCalculation Code = "SPREAD_CALCULATION_ERROR"
)

// Execution leg errors
const (
	CodeInsufficientLiquidity Code = "INSUFFICIENT_LIQUIDITY"
	CodeSlippageExceeded      Code = "SLIPPAGE_EXCEEDED"
	CodeVenueRejected         Code = "VENUE_REJECTED"
	CodeSettlementFailed      Code = "SETTLEMENT_FAILED"
)

// Circuit breaker errors
const (
	CodeCircuitOpen Code = "CIRCUIT_OPEN"
)

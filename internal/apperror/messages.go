package apperror

// messages maps error codes to human-readable messages
var messages = map[Code]string{
	CodeRequiredField:   "Required field is missing",
	CodeInvalidInput:    "Invalid input provided",
	CodeInvalidFormat:   "Invalid data format",
	CodeInvalidState:    "Invalid state for this operation",
	CodeNotFound:        "Resource not found",
	CodeValidationError: "Validation error",

	CodeConfigurationError: "Configuration error",

	CodeExternalServiceError: "External service error",
	CodeServiceTimeout:       "Service request timeout",
	CodeServiceUnavailable:   "Service temporarily unavailable",
	CodeRateLimitExceeded:    "Rate limit exceeded",

	CodeInternalError: "Internal server error",
	CodeUnknownError:  "An unknown error occurred",

	CodeDataUnavailable:  "Market data unavailable",
	CodeStaleSnapshot:    "Market snapshot is stale",
	CodeInvalidSnapshot:  "Invalid market snapshot",
	CodeDuplicatePool:    "Duplicate pool in snapshot",
	CodeUnknownToken:     "Pool references an unknown token",
	CodeGasOracleFailed:  "Gas price lookup failed",
	CodeEthereumRPCError: "Ethereum RPC call failed",

	CodeUnknownVenue:      "Venue is not in the fee schedule",
	CodeInvalidTradeSize:  "Invalid trade size",
	CodeInvalidCycle:      "Pools do not form a closed triangle",
	CodeUnsolvableTarget:  "Spread too small to cover fees",
	CodeUnknownRiskTier:   "Unknown risk tier",
	CodeEmptyBatch:        "No opportunities to execute",
	CodeScanCancelled:     "Scan cancelled",
	CodeExecutionAborted:  "Batch execution aborted",
	CodeJournalFailed:     "Journal write failed",
	CodePriceCalculation:  "Price calculation failed",
	CodeSpreadCalculation: "Spread calculation error",

	CodeInsufficientLiquidity: "Insufficient liquidity for trade size",
	CodeSlippageExceeded:      "Price moved beyond slippage tolerance",
	CodeVenueRejected:         "Venue rejected the trade",
	CodeSettlementFailed:      "Atomic settlement failed",

	CodeCircuitOpen: "Circuit breaker is open",
}

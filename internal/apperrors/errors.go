package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrTradeNotFound indicates that a trade record with the given ID does not exist.
	ErrTradeNotFound = errors.New("trade not found")

	// ErrSymbolNotFound indicates that a price lookup returned no results.
	ErrSymbolNotFound = errors.New("symbol not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrInvalidTransition indicates that the selected row is not in the state
	// required by the requested wheel step (e.g. assigning a row that is not
	// an open Sell Put).
	ErrInvalidTransition = errors.New("row is not eligible for this step")

	// ErrNegativeAmount indicates that an amount field has an invalid negative value.
	ErrNegativeAmount = errors.New("amount cannot be negative")
)

// Operation failure errors represent system-level failures when retrieving or
// processing data. These errors indicate that an operation failed, but not
// due to missing entities or validation issues.
var (
	ErrFailedToRetrieveTrades = errors.New("failed to retrieve trades")
	ErrFailedToRetrieveTrade  = errors.New("failed to retrieve trade")
	ErrFailedToCreateTrade    = errors.New("failed to create trade")
	ErrFailedToDeleteTrade    = errors.New("failed to delete trade")
	ErrFailedToAdvanceWheel   = errors.New("failed to advance wheel step")
	ErrFailedToImportTrades   = errors.New("failed to import trades")
	ErrFailedToExportTrades   = errors.New("failed to export trades")
	ErrFailedToGetSummary     = errors.New("failed to compute summary")

	// ErrInvalidCSVHeaders indicates that an uploaded broker file matches
	// neither known import profile. The whole import is rejected.
	ErrInvalidCSVHeaders = errors.New("invalid CSV headers")
)

// Data integrity errors represent inconsistencies in the stored journal.
var (
	// ErrPartialWrite indicates that a multi-row mutation committed one half
	// (the in-place update or the derived append) but not the other.
	ErrPartialWrite = errors.New("partial write: paired row mutation incomplete")

	// ErrMissingRequiredField indicates that a required field is missing or empty.
	ErrMissingRequiredField = errors.New("missing required field")
)

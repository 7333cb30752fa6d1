package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Object addressing errors
	ErrInvalidPath  = fmt.Errorf("invalid object path")
	ErrNoSuchObject = fmt.Errorf("no such object")

	// Browse/Search request errors
	ErrInvalidBrowseFlag    = fmt.Errorf("invalid browse flag")
	ErrUnsupportedCriteria  = fmt.Errorf("unsupported search criteria")
	ErrUnsupportedSort      = fmt.Errorf("unsupported sort criteria")
	ErrUnsupportedContainer = fmt.Errorf("search not supported on container")

	// Backend and eventing errors
	ErrQueryFailed        = fmt.Errorf("backend query failed")
	ErrSubscriptionGone   = fmt.Errorf("subscription not found")
	ErrInvalidSubscribe   = fmt.Errorf("invalid subscription request")
	ErrScanInProgress     = fmt.Errorf("scan already in progress")
	ErrLibraryUnavailable = fmt.Errorf("library unavailable")
)

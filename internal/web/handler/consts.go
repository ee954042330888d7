package handler

const (
	// RouterRootPath is the path of a route relative to its group.
	RouterRootPath = ""

	// APIPath is the prefix of every JSON route that needs a logged in user.
	APIPath = "/api"

	// ErrNilACDFatalLogMsg is used if app or service var pointer is nil.
	ErrNilACDFatalLogMsg = "router or service is nil"

	// MsgInternal is returned to clients when an operation fails for a reason they cannot fix.
	MsgInternal = "could not complete the operation"
)

// MIMECSV is the content type of CSV downloads.
const MIMECSV = "text/csv; charset=utf-8"

package constants

// Boolean string values
const (
	BoolTrue  = "true"
	BoolFalse = "false"
	BoolYes   = "yes"
	BoolNo    = "no"
	BoolOne   = "1"
	BoolZero  = "0"
)

// Display limits
const (
	DefaultListLimit    = 20
	DefaultAPIListLimit = 50
	RecentMemosLimit    = 10

	PreviewLength      = 100
	ShortPreviewLength = 80
)

// Schema
const (
	SchemaVersion = 1
	MemoTable     = "MemoData"
)

// Search intent
const (
	// ActionSearch is the action string hosts attach to a search intent.
	ActionSearch = "android.intent.action.SEARCH"
	// ExtraQuery is the payload key carrying the query text.
	ExtraQuery = "query"
)

// File permissions
const (
	ConfigFileMode = 0600 // Secure file permissions for config
	DataDirMode    = 0755
)

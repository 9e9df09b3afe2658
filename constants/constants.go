package constants

const (
	// NullToken is the bare filter value that stands for "no value".
	NullToken = "null"
	// ReservedChars must be escaped with a backslash to be used literally in a filter.
	ReservedChars = `,|=!@_-*\`

	TermSeparator        = ','
	AlternativeSeparator = '|'
	CaseInsensitiveMark  = '*'
	EscapeChar           = '\\'
)

// viper keys
const (
	ConfigFolder = "CONFIG_FOLDER"
	LogLevel     = "LOG_LEVEL"
	LogToFile    = "LOG_TO_FILE"
	Concurrency  = "CONCURRENCY"
	EnvPrefix    = "SIEVE"
)

const (
	LogFileName        = "sieve.log"
	DefaultLogLevel    = "info"
	DefaultConcurrency = 0 // 0 keeps evaluation lazy and sequential
)

package logging

const emptyString = ""

// Properties that drive sink routing and enrichment. They keep the names the
// perf table and search indexes already use.
const (
	FieldElapsedMilliseconds = "ElapsedMilliseconds"
	FieldUsageName           = "UsageName"
	FieldPerfItem            = "PerfItem"
	FieldActionName          = "ActionName"
	FieldMachineName         = "MachineName"
	FieldAssembly            = "Assembly"
	FieldVersion             = "Version"
	FieldUserInfo            = "UserInfo"
	FieldErrorRecord         = "ErrorRecord"
	FieldErrorID             = "ErrorId"
	FieldRequestMethod       = "RequestMethod"
	FieldRequestPath         = "RequestPath"
)

const (
	errMsgNilConfig       = "Logging config is nil."
	errMsgNilService      = "Logger service is nil."
	errMsgAppCfgNotSet    = "Application config is not set."
	errMsgConfigInvalid   = "Logging configuration is invalid."
	errMsgWorkingDir      = "Working directory has not been set."
	errMsgLogDir          = "Failed to create logs directory."
	errMsgNoChannels      = "No logging channels enabled."
	errMsgLevel           = "Invalid logging level."
	errMsgEnvFile         = "Failed to read environment file."
	errMsgEnvValue        = "Invalid environment value."
	errMsgSinkInit        = "Failed to initialize log sink."
	errMsgTemplate        = "Failed to register index template."
	errMsgUnknownDialect  = "Unsupported logging database dialect."
	errMsgDBOpen          = "Failed to open logging database."
	errMsgAutoCreateTable = "Failed to create perf log table."
)

const (
	defaultPerfTableName     = "PerfLog"
	defaultUsageIndexPrefix  = "usage-"
	defaultErrorIndexPrefix  = "error-"
	defaultSinkQueueSize     = 1024
	defaultSinkWriteTimeout  = 5000
	defaultShutdownTimeoutMS = 2000
	indexDateLayout          = "2006.01.02"
)

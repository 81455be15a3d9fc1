package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// Configuration codes.
const (
	CodeConfigFile        = "SC101"
	CodeConfigEnv         = "SC102"
	CodeUnknownBackend    = "SC103"
	CodeMissingSetting    = "SC104"
	CodeInvalidLogLevel   = "SC105"
	CodeInvalidLogFormat  = "SC106"
	CodeBackendNotAllowed = "SC107"
)

// Backend codes.
const (
	CodeBackendOpen  = "SC201"
	CodeBackendRead  = "SC202"
	CodeBackendWrite = "SC203"
	CodeNotListable  = "SC204"
)

// CLI codes.
const (
	CodeKeyNotFound  = "SC301"
	CodeInvalidValue = "SC302"
	CodeServe        = "SC303"
)

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Configuration Errors (SC101-SC199)
	// ============================================

	CodeConfigFile: {
		Category:   CategoryConfig,
		Message:    "Configuration file could not be read",
		Detail:     "The file named by --config or STORECTX_CONFIG is missing or is not valid YAML.",
		Suggestion: "Check the path and run the file through a YAML linter.",
	},
	CodeConfigEnv: {
		Category:   CategoryConfig,
		Message:    "Invalid environment configuration",
		Detail:     "A STORECTX_ environment variable holds a value of the wrong type.",
		Suggestion: "Booleans take true/false; the remaining settings are strings.",
	},
	CodeUnknownBackend: {
		Category: CategoryConfig,
		Message:  "Unknown storage backend",
		Detail:   "Backends are memory, sqlite, file and s3 (s3 for the local handle only).",
	},
	CodeMissingSetting: {
		Category: CategoryConfig,
		Message:  "Missing backend setting",
		Detail:   "The selected backend needs a setting that is empty: sqlite_path for sqlite, file_dir for file, s3.bucket and s3.region for s3.",
	},
	CodeInvalidLogLevel: {
		Category:   CategoryConfig,
		Message:    "Invalid log level",
		Suggestion: "Use debug, info, warn or error.",
	},
	CodeInvalidLogFormat: {
		Category:   CategoryConfig,
		Message:    "Invalid log format",
		Suggestion: "Use text or json.",
	},
	CodeBackendNotAllowed: {
		Category: CategoryConfig,
		Message:  "Backend not supported for this handle",
		Detail:   "The session handle is process-scoped and supports memory, sqlite and file only.",
	},

	// ============================================
	// Backend Errors (SC201-SC299)
	// ============================================

	CodeBackendOpen: {
		Category: CategoryBackend,
		Message:  "Storage backend could not be opened",
	},
	CodeBackendRead: {
		Category: CategoryBackend,
		Message:  "Storage backend read failed",
	},
	CodeBackendWrite: {
		Category: CategoryBackend,
		Message:  "Storage backend write failed",
	},
	CodeNotListable: {
		Category: CategoryBackend,
		Message:  "Storage backend cannot list keys",
	},

	// ============================================
	// CLI Errors (SC301-SC399)
	// ============================================

	CodeKeyNotFound: {
		Category: CategoryCLI,
		Message:  "Key not found",
	},
	CodeInvalidValue: {
		Category:   CategoryCLI,
		Message:    "Value is not valid JSON",
		Suggestion: `Quote strings: storectx set key '"text"'.`,
	},
	CodeServe: {
		Category: CategoryCLI,
		Message:  "Inspector server failed",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}

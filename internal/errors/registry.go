package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://github.com/vango-dev/observation/blob/main/docs/errors.md#"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (E001-E099)
	// ============================================

	"E001": {
		Category: CategoryRuntime,
		Message:  "Invalid property identifier",
		Detail:   "The zero PropertyID was used. Declare each property once with observation.NewProperty and use that value for reads and writes.",
		DocURL:   docBase + "e001",
	},
	"E002": {
		Category: CategoryRuntime,
		Message:  "Nil registrar",
		Detail:   "An observable object routed a read or write through a nil *Registrar.",
		DocURL:   docBase + "e002",
	},

	// ============================================
	// Config Errors (E120-E149)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "observe.json could not be read or parsed.",
		DocURL:   docBase + "e120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Invalid log level",
		Detail:   "log.level must be one of debug, info, warn or error.",
		DocURL:   docBase + "e121",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid port",
		Detail:   "Port must be between 0 and 65535.",
		DocURL:   docBase + "e122",
	},
	"E123": {
		Category: CategoryConfig,
		Message:  "Invalid log format",
		Detail:   "log.format must be text or json.",
		DocURL:   docBase + "e123",
	},
	"E124": {
		Category: CategoryConfig,
		Message:  "Invalid metrics path",
		Detail:   "metrics.path must start with '/'.",
		DocURL:   docBase + "e124",
	},
	"E141": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		Detail:   "No observe.json was found.",
		DocURL:   docBase + "e141",
	},

	// ============================================
	// CLI Errors (E200-E219)
	// ============================================

	"E200": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The HTTP server stopped with an error.",
		DocURL:   docBase + "e200",
	},

	// ============================================
	// Server Errors (E220-E249)
	// ============================================

	"E220": {
		Category: CategoryServer,
		Message:  "Suspect not found",
		Detail:   "No suspect is registered under this id.",
		DocURL:   docBase + "e220",
	},
	"E221": {
		Category: CategoryServer,
		Message:  "Invalid request body",
		Detail:   "The request body must be a JSON object with optional name and suspiciousness fields.",
		DocURL:   docBase + "e221",
	},
	"E222": {
		Category: CategoryServer,
		Message:  "Suspect already exists",
		Detail:   "A suspect with this id is already registered.",
		DocURL:   docBase + "e222",
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

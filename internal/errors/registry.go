package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Runtime Errors (E001-E019)
	// ============================================

	"E001": {
		Category: CategoryRuntime,
		Message:  "Duplicate node kind",
		Detail:   "A node with this kind is already registered at this scope level. Each scope level holds at most one node per kind; register the second node in a child scope instead.",
		DocURL:   "https://trinity-go.dev/docs/errors/E001",
	},
	"E002": {
		Category: CategoryRuntime,
		Message:  "Node kind not found",
		Detail:   "No node with the requested kind is registered in this scope or any enclosing scope. A bridge's parent must be registered before the node holding the bridge.",
		DocURL:   "https://trinity-go.dev/docs/errors/E002",
	},
	"E003": {
		Category: CategoryRuntime,
		Message:  "Node already attached",
		Detail:   "A node attaches to exactly one scope. Create a new node instance instead of registering the same one twice.",
		DocURL:   "https://trinity-go.dev/docs/errors/E003",
	},
	"E004": {
		Category: CategoryRuntime,
		Message:  "Bridge write before connect",
		Detail:   "Writing through a bridge requires a live parent connection. The bridge connects during registration of its owning node; writes before that, or after disposal, are programming errors.",
		DocURL:   "https://trinity-go.dev/docs/errors/E004",
	},
	"E005": {
		Category: CategoryRuntime,
		Message:  "Scope disposed",
		Detail:   "The scope has been torn down. Registrations and lookups against a disposed scope usually mean a stale reference outlived its session.",
		DocURL:   "https://trinity-go.dev/docs/errors/E005",
	},
	"E006": {
		Category: CategoryRuntime,
		Message:  "Kind registered with different type",
		Detail:   "A node with the requested kind exists but its concrete type does not match the lookup. Kinds are expected to map one-to-one to node types.",
		DocURL:   "https://trinity-go.dev/docs/errors/E006",
	},
	"E007": {
		Category: CategoryRuntime,
		Message:  "Producer panicked",
		Detail:   "An asynchronous producer panicked. The panic was recovered and surfaced as the error variant of the async value.",
		DocURL:   "https://trinity-go.dev/docs/errors/E007",
	},

	// ============================================
	// Protocol Errors (E060-E079)
	// ============================================

	"E060": {
		Category: CategoryProtocol,
		Message:  "WebSocket upgrade failed",
		Detail:   "The HTTP connection could not be upgraded to a WebSocket.",
		DocURL:   "https://trinity-go.dev/docs/errors/E060",
	},
	"E061": {
		Category: CategoryProtocol,
		Message:  "Invalid frame format",
		Detail:   "The received frame could not be decoded as JSON or is missing its type field.",
		DocURL:   "https://trinity-go.dev/docs/errors/E061",
	},
	"E062": {
		Category: CategoryProtocol,
		Message:  "Unknown event name",
		Detail:   "No registered handler matches the event name in the frame.",
		DocURL:   "https://trinity-go.dev/docs/errors/E062",
	},
	"E063": {
		Category: CategoryProtocol,
		Message:  "Session not found",
		Detail:   "The session ID is invalid or the session has been closed.",
		DocURL:   "https://trinity-go.dev/docs/errors/E063",
	},

	// ============================================
	// Configuration Errors (E120-E139)
	// ============================================

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		Detail:   "The configuration file is malformed YAML.",
		DocURL:   "https://trinity-go.dev/docs/errors/E120",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Missing required configuration",
		Detail:   "A required configuration value is not set.",
		DocURL:   "https://trinity-go.dev/docs/errors/E121",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid listen address",
		Detail:   "The configured listen address or port is invalid.",
		DocURL:   "https://trinity-go.dev/docs/errors/E122",
	},
	"E123": {
		Category: CategoryConfig,
		Message:  "Invalid snapshot store",
		Detail:   "The snapshot store configuration is incomplete or names an unknown backend.",
		DocURL:   "https://trinity-go.dev/docs/errors/E123",
	},

	// ============================================
	// CLI Errors (E140-E159)
	// ============================================

	"E140": {
		Category: CategoryCLI,
		Message:  "Configuration file not found",
		Detail:   "The configuration file passed on the command line does not exist.",
		DocURL:   "https://trinity-go.dev/docs/errors/E140",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "Server failed to start",
		Detail:   "The host server could not bind its listen address.",
		DocURL:   "https://trinity-go.dev/docs/errors/E141",
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

package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Config errors (E100-E199)
	"E100": {
		Category: CategoryConfig,
		Message:  "Config file not found",
		Detail:   "No semiresponsive.json or semiresponsive.yaml was found in the project directory.",
	},
	"E101": {
		Category: CategoryConfig,
		Message:  "Invalid config file",
		Detail:   "The config file could not be parsed.",
	},
	"E102": {
		Category: CategoryConfig,
		Message:  "Invalid switcher option",
		Detail:   "One of the switcher class, attribute or parameter names is not usable.",
	},
	"E103": {
		Category: CategoryConfig,
		Message:  "Invalid server option",
		Detail:   "A server address, timeout or limit is out of range.",
	},
	"E104": {
		Category: CategoryConfig,
		Message:  "Unsupported config format",
		Detail:   "Config files must end in .json, .yaml or .yml.",
	},

	// Page errors (E200-E299)
	"E200": {
		Category: CategoryPage,
		Message:  "Page not found",
		Detail:   "The page markup could not be read.",
	},
	"E201": {
		Category: CategoryPage,
		Message:  "Invalid page URI",
		Detail:   "Page sources are a file path, s3://bucket/key or demo:.",
	},
	"E202": {
		Category: CategoryPage,
		Message:  "Object storage request failed",
		Detail:   "Fetching the page from S3 failed.",
	},
	"E203": {
		Category: CategoryPage,
		Message:  "Container not found",
		Detail:   "The container selector matched no element in the page.",
	},
	"E204": {
		Category: CategoryPage,
		Message:  "Invalid page markup",
		Detail:   "The page could not be parsed as HTML.",
	},

	// Server errors (E300-E399)
	"E300": {
		Category: CategoryServer,
		Message:  "Server failed to start",
		Detail:   "The HTTP listener could not be opened.",
	},
	"E301": {
		Category: CategoryServer,
		Message:  "Shutdown timed out",
		Detail:   "Open sessions did not close before the shutdown deadline.",
	},

	// CLI errors (E400-E499)
	"E400": {
		Category: CategoryCLI,
		Message:  "Invalid flag value",
	},
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

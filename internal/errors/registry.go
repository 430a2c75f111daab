package errors

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Pattern errors (W001-W019)
	// ============================================

	"W001": {
		Category: CategoryPattern,
		Message:  "Malformed path template",
		Detail:   "A placeholder is unbalanced or names an invalid capture. Placeholders look like <name> or <converter:name>.",
	},
	"W002": {
		Category: CategoryPattern,
		Message:  "Unknown converter",
		Detail:   "The placeholder names a converter that is not registered. Builtins are str, int, slug, uuid and path.",
	},
	"W003": {
		Category: CategoryPattern,
		Message:  "Duplicate capture name",
		Detail:   "A capture name may appear only once within a pattern and once across an include chain.",
	},

	// ============================================
	// Route table errors (W020-W039)
	// ============================================

	"W020": {
		Category: CategoryConfig,
		Message:  "Unknown table reference",
		Detail:   "An include block names a table that is not declared in any loaded route file.",
	},
	"W021": {
		Category: CategoryConfig,
		Message:  "Duplicate table name",
		Detail:   "Two table blocks share a name. Table names must be unique across all loaded route files.",
	},
	"W022": {
		Category: CategoryConfig,
		Message:  "Missing root table",
		Detail:   "Route files must declare exactly one root block for dispatch to start from.",
	},
	"W023": {
		Category: CategoryConfig,
		Message:  "Include cycle",
		Detail:   "A table includes itself, directly or through other tables. Route tables form a tree, not a graph.",
	},
	"W024": {
		Category: CategoryConfig,
		Message:  "Invalid route block",
		Detail:   "A route block is missing a required attribute or carries one that does not apply to it.",
	},
	"W025": {
		Category: CategoryConfig,
		Message:  "Route file does not parse",
		Detail:   "The file is not valid HCL.",
	},
	"W026": {
		Category: CategoryConfig,
		Message:  "Route table does not compile",
		Detail:   "The declarations loaded from the route files were rejected by the dispatcher.",
	},

	// ============================================
	// CLI errors (W040-W049)
	// ============================================

	"W040": {
		Category: CategoryCLI,
		Message:  "No route files",
		Detail:   "Pass route files as arguments or list them in wayfind.json.",
	},
}

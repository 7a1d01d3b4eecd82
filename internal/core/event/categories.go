package event

// Category is one of the fixed timeline lane categories.
type Category string

const (
	CategoryUser           Category = "user"
	CategoryExploration    Category = "exploration"
	CategoryPlanning       Category = "planning"
	CategoryImplementation Category = "implementation"
	CategoryVerification   Category = "verification"
	CategoryDebugging      Category = "debugging"
	CategoryRuleCompliance Category = "rule_compliance"
)

// CategoryOrder is the fixed lane ordering. Lanes always render in this
// order regardless of event counts or first appearance.
var CategoryOrder = []Category{
	CategoryUser,
	CategoryExploration,
	CategoryPlanning,
	CategoryImplementation,
	CategoryVerification,
	CategoryDebugging,
	CategoryRuleCompliance,
}

// CategoryLabels maps categories to display labels.
var CategoryLabels = map[Category]string{
	CategoryUser:           "User",
	CategoryExploration:    "Exploration",
	CategoryPlanning:       "Planning",
	CategoryImplementation: "Implementation",
	CategoryVerification:   "Verification",
	CategoryDebugging:      "Debugging",
	CategoryRuleCompliance: "Rules",
}

// TypeCategoryMap is the static event type to category lookup used when no
// registry resolution applies.
var TypeCategoryMap = map[string]Category{
	"code_search":       CategoryExploration,
	"doc_read":          CategoryExploration,
	"dependency_check":  CategoryExploration,
	"file_read":         CategoryExploration,
	"query":             CategoryExploration,
	"task_analysis":     CategoryPlanning,
	"approach_decision": CategoryPlanning,
	"task_complete":     CategoryPlanning,
	"code_create":       CategoryImplementation,
	"code_modify":       CategoryImplementation,
	"refactor":          CategoryImplementation,
	"file_write":        CategoryImplementation,
	"test_run":          CategoryVerification,
	"build_run":         CategoryVerification,
	"lint_run":          CategoryVerification,
	"error_encountered": CategoryDebugging,
	"error_resolved":    CategoryDebugging,
	"rule_match":        CategoryRuleCompliance,
	"violation_found":   CategoryRuleCompliance,
	"fix_applied":       CategoryRuleCompliance,
}

// CategoryForType resolves an event type through the static table, falling
// back to exploration for unknown types.
func CategoryForType(eventType string) Category {
	if cat, ok := TypeCategoryMap[eventType]; ok {
		return cat
	}
	return CategoryExploration
}

// ValidCategory reports whether s names a known category.
func ValidCategory(s string) bool {
	_, ok := CategoryLabels[Category(s)]
	return ok
}

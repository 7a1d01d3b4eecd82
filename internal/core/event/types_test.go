package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimeMs(t *testing.T) {
	t.Run("rfc3339", func(t *testing.T) {
		r := Record{Timestamp: "2026-03-10T10:00:00Z"}
		assert.Equal(t, int64(1773136800000), r.TimeMs())
	})

	t.Run("sqlite_datetime", func(t *testing.T) {
		r := Record{Timestamp: "2026-03-10 10:00:00"}
		assert.Equal(t, int64(1773136800000), r.TimeMs())
	})

	t.Run("malformed", func(t *testing.T) {
		r := Record{Timestamp: "yesterday-ish"}
		assert.Zero(t, r.TimeMs())
	})
}

func TestHasPrompt(t *testing.T) {
	empty := ""
	prompt := "do the thing"
	assert.False(t, (&Record{}).HasPrompt())
	assert.False(t, (&Record{Prompt: &empty}).HasPrompt())
	assert.True(t, (&Record{Prompt: &prompt}).HasPrompt())
}

func TestCategoryForType(t *testing.T) {
	assert.Equal(t, CategoryVerification, CategoryForType("test_run"))
	assert.Equal(t, CategoryRuleCompliance, CategoryForType("violation_found"))
	assert.Equal(t, CategoryExploration, CategoryForType("never_heard_of_it"))
}

func TestValidCategory(t *testing.T) {
	for _, cat := range CategoryOrder {
		assert.True(t, ValidCategory(string(cat)))
	}
	assert.False(t, ValidCategory("snacks"))
}

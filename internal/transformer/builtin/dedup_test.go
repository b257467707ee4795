package builtin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type kv struct {
	key string
	val string
}

func kvKey(x kv) (string, bool) { return x.key, x.key != "" }

// TestDeDup_KeepFirst verifies the first occurrence wins, output order is
// stable and unkeyed items pass through at the end.
func TestDeDup_KeepFirst(t *testing.T) {
	in := []kv{{"b", "1"}, {"a", "2"}, {"b", "3"}, {"", "4"}, {"c", "5"}, {"a", "6"}}
	got := DeDup[kv]{Key: kvKey}.Apply(in)
	assert.Equal(t, []kv{{"b", "1"}, {"a", "2"}, {"c", "5"}, {"", "4"}}, got)
}

// TestDeDup_Empty returns the input as-is.
func TestDeDup_Empty(t *testing.T) {
	assert.Nil(t, DeDup[kv]{Key: kvKey}.Apply(nil))
	in := []kv{{"a", "1"}}
	assert.Equal(t, in, DeDup[kv]{}.Apply(in))
}

package objectpath_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cbl-diagnostics/logscope/internal/objectpath"
)

func TestResolveDemanglesJNIMangledForm(t *testing.T) {
	assert.Equal(t, "Puller", objectpath.Resolve("N9litecore4repl6PullerE"))
}

func TestResolvePassesThroughPlainObjectPaths(t *testing.T) {
	assert.Equal(t, "Puller", objectpath.Resolve("Puller"))
	assert.Equal(t, "", objectpath.Resolve(""))
}

package swagger

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocPathsAreRelativeToBasePath(t *testing.T) {
	var doc struct {
		BasePath string                     `json:"basePath"`
		Paths    map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte((&swaggerDoc{}).ReadDoc()), &doc))

	assert.Equal(t, "/api/v1", doc.BasePath)
	assert.Contains(t, doc.Paths, "/auth/login")
	assert.Contains(t, doc.Paths, "/exports/{token}")
	for path := range doc.Paths {
		assert.False(t, strings.HasPrefix(path, "/api/v1"), path)
	}
}

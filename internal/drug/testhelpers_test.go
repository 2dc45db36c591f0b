package drug

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleFixture = `[
	{"code": "A-100", "company": "Acme", "launchDate": "2021-03-04T00:00:00.000Z", "name": "Acmetol"},
	{"code": "B-200", "company": "Borealis", "launchDate": "2019-11-20", "name": "Borazine", "strength": "20mg"}
]`

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "drugs.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

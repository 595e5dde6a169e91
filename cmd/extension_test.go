package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/etnz/folio/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunExtension(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("extensions are shell scripts in this test")
	}
	dir := t.TempDir()
	script := `#!/bin/sh
echo "store=$FOLIO_STORE"
echo "db=$FOLIO_DB"
echo "currency=$FOLIO_CURRENCY"
echo "verbose=$FOLIO_VERBOSE"
echo "args=$*"
exit 3
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pcs-hello"), []byte(script), 0755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))

	setup(t, &config.Config{Store: config.StoreSQLite, DatabasePath: "/tmp/ledger.db", Currency: "XYZ"})
	var out bytes.Buffer
	stdout = &out

	found, code := RunExtension("hello", []string{"a", "b"})
	assert.True(t, found)
	assert.Equal(t, 3, code)
	assert.Equal(t, "store=sqlite\ndb=/tmp/ledger.db\ncurrency=XYZ\nverbose=false\nargs=a b\n", out.String())

	found, _ = RunExtension("missing", nil)
	assert.False(t, found)
}

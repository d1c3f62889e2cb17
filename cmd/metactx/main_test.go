package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/metactx/pkg/auth"
	"github.com/ajitpratap0/metactx/pkg/metadata"
)

const testCatalog = `
glossaries:
  - qualifiedName: Glossary::Sales
    displayName: Sales
    terms:
      - qualifiedName: Term::Customer
        displayName: Customer
locations:
  - qualifiedName: Location::Campus
    displayName: Campus
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	return writeFile(t, dir, "metactx.yaml", `
storage:
  backend: memory
  snapshot_path: `+filepath.Join(dir, "metadata.snap.lz4")+`
context:
  user_id: erinoverview
  connector_name: cli-test
observability:
  log_level: error
  enable_metrics: false
`+extra)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "metactx v"+version)
}

func TestKinds(t *testing.T) {
	out, err := execute(t, "kinds")
	require.NoError(t, err)
	assert.Contains(t, out, "GlossaryTerm\n")
	assert.Contains(t, out, "TermAnchor (Glossary -> GlossaryTerm)")
	assert.Contains(t, out, "names:  qualifiedName, displayName, abbreviation")
}

func TestLoadFindAndGet(t *testing.T) {
	cfg := testConfig(t, "")
	catalog := writeFile(t, t.TempDir(), "catalog.yaml", testCatalog)

	out, err := execute(t, "load", "--config", cfg, "--file", catalog)
	require.NoError(t, err)
	assert.Contains(t, out, "created: 3")
	assert.Contains(t, out, "linked:  1")

	// the snapshot carries the load into the next invocation
	out, err = execute(t, "find", "Sales", "--config", cfg, "--type", "Glossary")
	require.NoError(t, err)
	var found []*metadata.Element
	require.NoError(t, json.Unmarshal([]byte(out), &found))
	require.Len(t, found, 1)
	assert.Equal(t, "Glossary::Sales", found[0].Properties.GetString("qualifiedName"))

	out, err = execute(t, "get", found[0].GUID(), "--config", cfg)
	require.NoError(t, err)
	var got metadata.Element
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, found[0].GUID(), got.GUID())
	assert.Equal(t, "erinoverview", got.Header.Versions.CreatedBy)

	out, err = execute(t, "load", "--config", cfg, "--file", catalog)
	require.NoError(t, err)
	assert.Contains(t, out, "created: 0")
	assert.Contains(t, out, "updated: 3")
}

func TestLoadRejectsBadCatalog(t *testing.T) {
	cfg := testConfig(t, "")
	catalog := writeFile(t, t.TempDir(), "catalog.yaml", "glossaries:\n  - displayName: nameless\n")
	_, err := execute(t, "load", "--config", cfg, "--file", catalog)
	assert.Error(t, err)
}

func TestToken(t *testing.T) {
	cfg := testConfig(t, "server:\n  name: metactx\n  jwt_secret: s3cret\n")
	out, err := execute(t, "token", "--config", cfg, "--user", "garygeeke")
	require.NoError(t, err)

	claims, err := auth.NewManager("s3cret", "").Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "garygeeke", claims.Subject)

	_, err = execute(t, "token", "--config", testConfig(t, ""), "--user", "garygeeke")
	assert.Error(t, err)
}

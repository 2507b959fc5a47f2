package cli

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/koustreak/automodel/internal/errs"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func fixtureDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`
		CREATE TABLE teams (id INTEGER PRIMARY KEY NOT NULL, name TEXT NOT NULL);
		CREATE TABLE users (id INTEGER PRIMARY KEY NOT NULL, team_id INTEGER REFERENCES teams(id));
	`)
	require.NoError(t, err)
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand("test")
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestGenerateCommand(t *testing.T) {
	db := fixtureDB(t)
	dir := filepath.Join(t.TempDir(), "models")

	out, err := execute(t, "generate",
		"--config", filepath.Join(t.TempDir(), "none.yaml"),
		"--driver", "sqlite", "-d", db, "-o", dir,
		"--spaces", "--indentation", "2",
		"-a", "timestamps=false", "-a", "schema=main",
	)
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err), out)

	out, err = execute(t, "generate",
		"--driver", "sqlite", "-d", db, "-o", dir,
		"--spaces", "--indentation", "2",
		"-a", "timestamps=false", "-a", "schema=main",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "models written to "+dir)

	fs := afero.NewOsFs()
	model, err := afero.ReadFile(fs, filepath.Join(dir, "users.js"))
	require.NoError(t, err)
	assert.Contains(t, string(model), "    tableName: 'users',\n    timestamps: false,\n    schema: 'main',\n    freezeTableName: true\n")

	assoc, err := afero.ReadFile(fs, filepath.Join(dir, "users.model.js"))
	require.NoError(t, err)
	assert.Contains(t, string(assoc), "m.hasOne(teams, { as: 'teams', foreignKey: 'id' });")

	for _, name := range []string{"teams.js", "teams.model.js", "teams.repository.js", "DB__teams.hx", "users.repository.js", "DB__users.hx"} {
		exists, err := afero.Exists(fs, filepath.Join(dir, name))
		require.NoError(t, err)
		assert.True(t, exists, name)
	}
}

func TestTablesCommand(t *testing.T) {
	db := fixtureDB(t)

	out, err := execute(t, "tables", "--driver", "sqlite", "-d", db)
	require.NoError(t, err)
	assert.Contains(t, out, "2 table(s)")
	assert.Contains(t, out, "teams")
	assert.Contains(t, out, "users")

	out, err = execute(t, "tables", "--driver", "sqlite", "-d", db, "-t", "users,ghosts")
	require.NoError(t, err)
	assert.Contains(t, out, "1 table(s)")
	assert.NotContains(t, out, "teams")
}

func TestGenerateCommand_Errors(t *testing.T) {
	_, err := execute(t, "generate", "--driver", "oracle", "-d", "x")
	assert.True(t, errs.IsUnsupported(err))

	_, err = execute(t, "generate", "--driver", "sqlite", "-d", "x", "-a", "novalue")
	assert.True(t, errs.IsInvalidInput(err))

	_, err = execute(t, "generate", "--driver", "sqlite", "-d", "x", "--bucket", "models")
	assert.True(t, errs.IsInvalidInput(err))
}

func TestConfigFileAndEnv(t *testing.T) {
	db := fixtureDB(t)
	dir := filepath.Join(t.TempDir(), "out")
	cfgFile := filepath.Join(t.TempDir(), "automodel.yaml")
	require.NoError(t, afero.WriteFile(afero.NewOsFs(), cfgFile, []byte(`
database:
  driver: sqlite
generate:
  tables: [teams]
  additional:
    paranoid: true
`), 0o644))

	t.Setenv("AUTOMODEL_DATABASE_NAME", db)
	t.Setenv("AUTOMODEL_OUTPUT_DIRECTORY", dir)

	_, err := execute(t, "generate", "--config", cfgFile)
	require.NoError(t, err)

	model, err := afero.ReadFile(afero.NewOsFs(), filepath.Join(dir, "teams.js"))
	require.NoError(t, err)
	assert.Contains(t, string(model), "\t\tparanoid: true,\n\t\tfreezeTableName: true\n")

	exists, _ := afero.Exists(afero.NewOsFs(), filepath.Join(dir, "users.js"))
	assert.False(t, exists)
}

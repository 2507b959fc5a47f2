package render

import (
	"strings"
	"testing"

	"github.com/koustreak/automodel/internal/errs"
	"github.com/koustreak/automodel/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// usersTable is the users/teams scenario: a serial id, a required email,
// a team_id referencing teams.id, an enum and a column of unmapped type.
func usersTable() *schema.Table {
	return &schema.Table{
		Name: "users",
		Columns: []schema.Column{
			{Name: "id", Attributes: schema.Attributes{
				Type:         "INTEGER",
				DefaultValue: "nextval('users_id_seq'::regclass)",
				PrimaryKey:   true,
				ForeignKey:   &schema.ForeignKeyRef{SourceTable: "users", SourceColumn: "id", IsPrimaryKey: true},
			}},
			{Name: "email", Attributes: schema.Attributes{Type: "CHARACTER VARYING(255)"}},
			{Name: "team_id", Attributes: schema.Attributes{
				Type:      "INTEGER",
				AllowNull: true,
				ForeignKey: &schema.ForeignKeyRef{
					SourceTable: "users", SourceColumn: "team_id",
					TargetTable: "teams", TargetColumn: "id",
					IsForeignKey: true,
				},
			}},
			{Name: "status", Attributes: schema.Attributes{
				Type:         "USER-DEFINED",
				Special:      []string{"active", "banned"},
				DefaultValue: "active",
			}},
			{Name: "score", Attributes: schema.Attributes{Type: "NUMERIC", AllowNull: true, DefaultValue: int64(0)}},
		},
	}
}

func primaryIsSerial(ref *schema.ForeignKeyRef) bool { return ref.IsPrimaryKey }

func mustRender(t *testing.T, kind Kind, opts Options, serial SerialFunc, table *schema.Table) string {
	t.Helper()
	r, err := New(kind, opts, serial)
	require.NoError(t, err)
	out, err := r.Render(table)
	require.NoError(t, err)
	return out
}

func TestModel(t *testing.T) {
	got := mustRender(t, KindModel, Options{Spaces: true, Indentation: 2}, primaryIsSerial, usersTable())

	want := `module.exports = function(sequelize, Sequelize) {
  return sequelize.define('users', {
    id: {
      primaryKey: true,
      type: Sequelize.INTEGER,
      allowNull: false,
      autoIncrement: true
    },
    email: {
      type: Sequelize.STRING,
      allowNull: false
    },
    team_id: {
      type: Sequelize.INTEGER,
      allowNull: true,
      references: {
        model: 'teams',
        key: 'id'
      }
    },
    status: {
      type: Sequelize.ENUM('active','banned'),
      allowNull: false,
      defaultValue: 'active'
    },
    score: {
      type: 'NUMERIC',
      allowNull: true,
      defaultValue: 0
    }
  }, {
    tableName: 'users',
    freezeTableName: true
  });
};
`
	assert.Equal(t, want, got)
}

func TestModel_SerialAndReferenceAreExclusive(t *testing.T) {
	table := usersTable()
	always := func(*schema.ForeignKeyRef) bool { return true }

	got := mustRender(t, KindModel, Options{}, always, table)

	assert.Contains(t, got, "autoIncrement: true")
	assert.NotContains(t, got, "references")
}

func TestModel_WithoutSerialPredicate(t *testing.T) {
	got := mustRender(t, KindModel, Options{}, nil, usersTable())

	assert.NotContains(t, got, "autoIncrement")
	// the default of a non-serial key is kept
	assert.Contains(t, got, `defaultValue: 'nextval(\'users_id_seq\'::regclass)'`)
	assert.Equal(t, 1, strings.Count(got, "references: {"))
}

func TestModel_TabsAndGlobals(t *testing.T) {
	table := &schema.Table{Name: "tags", Columns: []schema.Column{
		{Name: "id", Attributes: schema.Attributes{Type: "int(11)"}},
	}}
	got := mustRender(t, KindModel, Options{Global: "DataTypes", Local: "db"}, nil, table)

	want := "module.exports = function(db, DataTypes) {\n" +
		"\treturn db.define('tags', {\n" +
		"\t\tid: {\n" +
		"\t\t\tprimaryKey: true,\n" +
		"\t\t\ttype: DataTypes.INTEGER(11),\n" +
		"\t\t\tallowNull: false\n" +
		"\t\t}\n" +
		"\t}, {\n" +
		"\t\ttableName: 'tags',\n" +
		"\t\tfreezeTableName: true\n" +
		"\t});\n" +
		"};\n"
	assert.Equal(t, want, got)
}

func TestModel_AdditionalOptions(t *testing.T) {
	table := &schema.Table{Name: "t", Columns: []schema.Column{{Name: "id", Attributes: schema.Attributes{Type: "uuid"}}}}

	t.Run("kept in order with freezeTableName appended", func(t *testing.T) {
		got := mustRender(t, KindModel, Options{Additional: []KeyValue{
			{Key: "timestamps", Value: "false"},
			{Key: "schema", Value: "'app'"},
		}}, nil, table)
		assert.Contains(t, got, "\t\ttableName: 't',\n\t\ttimestamps: false,\n\t\tschema: 'app',\n\t\tfreezeTableName: true\n")
	})

	t.Run("explicit freezeTableName wins", func(t *testing.T) {
		got := mustRender(t, KindModel, Options{Additional: []KeyValue{
			{Key: "freezeTableName", Value: "false"},
		}}, nil, table)
		assert.Contains(t, got, "freezeTableName: false\n")
		assert.NotContains(t, got, "freezeTableName: true")
	})
}

func TestModel_ConfirmedPrimaryKeyBeyondFirstColumn(t *testing.T) {
	table := &schema.Table{Name: "memberships", Columns: []schema.Column{
		{Name: "user_id", Attributes: schema.Attributes{Type: "integer", PrimaryKey: true}},
		{Name: "team_id", Attributes: schema.Attributes{
			Type:       "integer",
			PrimaryKey: true,
			ForeignKey: &schema.ForeignKeyRef{SourceColumn: "team_id", IsPrimaryKey: true},
		}},
	}}
	got := mustRender(t, KindModel, Options{}, nil, table)

	assert.Equal(t, 2, strings.Count(got, "primaryKey: true"))
	// a primary-key-only ref carries no target, so no references block
	assert.NotContains(t, got, "references")
}

func TestAssociation(t *testing.T) {
	got := mustRender(t, KindAssociation, Options{Spaces: true, Indentation: 2}, primaryIsSerial, usersTable())

	want := `module.exports = function(sequelize) {
  var m = sequelize.import('./users.js');
  var teams = sequelize.import('./teams.js');
  m.hasOne(teams, { as: 'teams', foreignKey: 'id' });
  return m;
};
`
	assert.Equal(t, want, got)
}

func TestAssociation_SameTargetTwice(t *testing.T) {
	ref := func(col string) *schema.ForeignKeyRef {
		return &schema.ForeignKeyRef{SourceColumn: col, TargetTable: "users", TargetColumn: "id", IsForeignKey: true}
	}
	table := &schema.Table{Name: "transfers", Columns: []schema.Column{
		{Name: "id", Attributes: schema.Attributes{Type: "integer"}},
		{Name: "from_id", Attributes: schema.Attributes{Type: "integer", ForeignKey: ref("from_id")}},
		{Name: "to_id", Attributes: schema.Attributes{Type: "integer", ForeignKey: ref("to_id")}},
	}}
	got := mustRender(t, KindAssociation, Options{}, nil, table)

	assert.Equal(t, 1, strings.Count(got, "var users = sequelize.import('./users.js');"))
	assert.Contains(t, got, "m.hasOne(users, { as: 'users', foreignKey: 'id' });")
	assert.Contains(t, got, "m.hasOne(users, { as: 'users_to_id', foreignKey: 'id' });")
}

func TestAssociation_TargetShadowsReservedNames(t *testing.T) {
	ref := func(col, target string) *schema.ForeignKeyRef {
		return &schema.ForeignKeyRef{SourceColumn: col, TargetTable: target, TargetColumn: "id", IsForeignKey: true}
	}
	table := &schema.Table{Name: "users", Columns: []schema.Column{
		{Name: "id", Attributes: schema.Attributes{Type: "integer"}},
		{Name: "m_id", Attributes: schema.Attributes{Type: "integer", ForeignKey: ref("m_id", "m")}},
		{Name: "orm_id", Attributes: schema.Attributes{Type: "integer", ForeignKey: ref("orm_id", "sequelize")}},
	}}

	assoc := mustRender(t, KindAssociation, Options{}, nil, table)
	assert.Contains(t, assoc, "var m_model = sequelize.import('./m.js');")
	assert.Contains(t, assoc, "var sequelize_model = sequelize.import('./sequelize.js');")
	assert.Contains(t, assoc, "m.hasOne(m_model, { as: 'm', foreignKey: 'id' });")

	repo := mustRender(t, KindRepository, Options{}, nil, table)
	assert.Contains(t, repo, "{ model: m_model, as: 'm' }")
	assert.Contains(t, repo, "{ model: sequelize_model, as: 'sequelize' }")
	assert.NotContains(t, repo, "model: m,")
}

func TestRepository(t *testing.T) {
	got := mustRender(t, KindRepository, Options{Spaces: true, Indentation: 2}, primaryIsSerial, usersTable())

	want := `module.exports = function(sequelize) {
  var m = sequelize.import('./users.model.js');
  var teams = sequelize.import('./teams.model.js');
  m.findWith_teams = function(limit) {
    return m.findAll({
      include: [{ model: teams, as: 'teams' }],
      limit: limit,
      raw: true
    }).then(function(rows) {
      console.log(rows);
      return rows;
    });
  };
  m.findWithAssociations = function(limit, order, cb) {
    return m.findAll({
      include: [
        { model: teams, as: 'teams' }
      ],
      order: order,
      limit: limit,
      raw: true
    }).then(function(rows) {
      cb(rows);
    });
  };
  m.findBy = function(attr, value, cb) {
    var where = {};
    where[attr] = value;
    return m.findAll({
      where: where,
      raw: true
    }).then(function(rows) {
      cb(rows);
    });
  };
  return m;
};
`
	assert.Equal(t, want, got)
}

func TestRepository_NoForeignKeys(t *testing.T) {
	table := &schema.Table{Name: "logs", Columns: []schema.Column{{Name: "id", Attributes: schema.Attributes{Type: "bigint"}}}}
	got := mustRender(t, KindRepository, Options{}, nil, table)

	assert.NotContains(t, got, "findWith_")
	assert.Contains(t, got, "\t\t\tinclude: [],\n")
	assert.Contains(t, got, "m.findBy = function(attr, value, cb) {")
}

func TestTypedef(t *testing.T) {
	got := mustRender(t, KindTypedef, Options{Spaces: true, Indentation: 2}, primaryIsSerial, usersTable())

	want := `typedef DB__users = {
  id: Int,
  email: String,
  team_id: Int,
  status: String,
  score: Dynamic
};
`
	assert.Equal(t, want, got)
}

func TestFileNames(t *testing.T) {
	want := map[Kind]string{
		KindModel:       "users.js",
		KindAssociation: "users.model.js",
		KindRepository:  "users.repository.js",
		KindTypedef:     "DB__users.hx",
	}
	for _, kind := range Kinds {
		r, err := New(kind, Options{}, nil)
		require.NoError(t, err)
		assert.Equal(t, kind, r.Kind())
		assert.Equal(t, want[kind], r.FileName("users"), kind.String())
	}
}

func TestRender_IsDeterministic(t *testing.T) {
	for _, kind := range Kinds {
		first := mustRender(t, kind, Options{}, primaryIsSerial, usersTable())
		second := mustRender(t, kind, Options{}, primaryIsSerial, usersTable())
		assert.Equal(t, first, second, kind.String())
	}
}

func TestRender_RejectsUnnamedTable(t *testing.T) {
	r, err := New(KindModel, Options{}, nil)
	require.NoError(t, err)

	_, err = r.Render(nil)
	assert.True(t, errs.IsInvalidInput(err))

	_, err = r.Render(&schema.Table{})
	assert.True(t, errs.IsInvalidInput(err))
}

func TestNew_UnknownKind(t *testing.T) {
	_, err := New(Kind(42), Options{}, nil)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestParseKind(t *testing.T) {
	for _, kind := range Kinds {
		got, err := ParseKind(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, got)
	}
	_, err := ParseKind("schema")
	assert.Error(t, err)
}

func TestOptions_Indent(t *testing.T) {
	assert.Equal(t, "\t", Options{}.Indent())
	assert.Equal(t, "\t\t", Options{Indentation: 2}.Indent())
	assert.Equal(t, "    ", Options{Spaces: true, Indentation: 4}.Indent())
	assert.Equal(t, " ", Options{Spaces: true, Indentation: -3}.Indent())
}

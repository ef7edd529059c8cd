package mapfile_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/docmap"
	"github.com/reoring/docmap/mapfile"
)

type Person struct {
	Id   int
	Name string
}

type Account struct {
	Key     string
	Email   string
	Nick    string
	Owner   *Person
	Friends []Person
}

const accountYAML = `
version: "1"
entities:
  - type: mapfile_test.Person
    automap: true
  - type: mapfile_test.Account
    collection: accts
    include: [Email]
    fields:
      Nick: nickname
      Email: mail
    id: Key
    autoid: false
    unique: [Email]
    indexes:
      - field: nickname
        unique: true
    refs:
      Owner: people
      Friends:
`

func TestParse_KeepsFieldOrder(t *testing.T) {
	f, err := mapfile.Parse([]byte(accountYAML))
	require.NoError(t, err)
	require.Len(t, f.Entities, 2)

	acc := f.Entities[1]
	require.Len(t, acc.Fields, 2)
	assert.Equal(t, "Nick", acc.Fields[0].Key)
	assert.Equal(t, "Email", acc.Fields[1].Key)
	v, ok := acc.Refs.Get("Friends")
	assert.True(t, ok)
	assert.Equal(t, "", v)
	require.NotNil(t, acc.AutoID)
	assert.False(t, *acc.AutoID)
}

func TestParse_DefaultsAndUnknownKeys(t *testing.T) {
	f, err := mapfile.Parse([]byte("entities: []\n"))
	require.NoError(t, err)
	assert.Equal(t, mapfile.CurrentVersion, f.Version)

	_, err = mapfile.Parse([]byte("entities:\n  - type: a.B\n    colection: x\n"))
	assert.Error(t, err)

	_, err = mapfile.Parse([]byte("entities:\n  - type: a.B\n    fields: [a, b]\n"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.yaml")
	require.NoError(t, os.WriteFile(path, []byte(accountYAML), 0o644))
	f, err := mapfile.LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, f.Entities, 2)

	_, err = mapfile.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMarshal_RoundTripsFieldOrder(t *testing.T) {
	f, err := mapfile.Parse([]byte(accountYAML))
	require.NoError(t, err)
	b, err := mapfile.Marshal(f)
	require.NoError(t, err)
	g, err := mapfile.Parse(b)
	require.NoError(t, err)
	assert.Equal(t, f.Entities[1].Fields, g.Entities[1].Fields)
}

func TestOrderedMap_MarshalJSON(t *testing.T) {
	m := mapfile.OrderedMap{{Key: "b", Value: "1"}, {Key: "a", Value: "2"}}
	b, err := m.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"b":"1","a":"2"}`, string(b))
}

func TestLint(t *testing.T) {
	f := &mapfile.File{
		Version: "2",
		Entities: []mapfile.Entity{
			{Type: " "},
			{Type: "a.User", ID: "Id", Fields: mapfile.OrderedMap{
				{Key: "Name", Value: "n"},
				{Key: "Nick", Value: "n"},
				{Key: "Id", Value: "ident"},
				{Key: "Mail", Value: ""},
			}, Ignore: []string{"Id"}, Indexes: []mapfile.Index{{Field: ""}}},
			{Type: "a.User"},
		},
	}
	err := mapfile.Lint(f)
	require.Error(t, err)
	iss, ok := docmap.AsIssues(err)
	require.True(t, ok)

	paths := make([]string, 0, len(iss))
	for _, it := range iss {
		paths = append(paths, it.Code+"@"+it.Path)
	}
	assert.Equal(t, []string{
		docmap.CodeInvalidArgument + "@version",
		docmap.CodeInvalidArgument + "@entities[0]",
		docmap.CodeDuplicateMember + "@a.User.Nick",
		docmap.CodeInvalidArgument + "@a.User.Id",
		docmap.CodeInvalidArgument + "@a.User.Mail",
		docmap.CodeInvalidArgument + "@a.User.indexes",
		docmap.CodeInvalidArgument + "@a.User.Id",
		docmap.CodeDuplicateMember + "@a.User",
	}, paths)
	assert.ErrorIs(t, err, docmap.ErrDuplicateMember)
}

func TestLint_OK(t *testing.T) {
	f, err := mapfile.Parse([]byte(accountYAML))
	require.NoError(t, err)
	assert.NoError(t, mapfile.Lint(f))
}

func TestApply(t *testing.T) {
	f, err := mapfile.Parse([]byte(accountYAML))
	require.NoError(t, err)

	reg := docmap.NewRegistry()
	eds, err := mapfile.Apply(reg, f, mapfile.Types(Person{}, &Account{}))
	require.NoError(t, err)
	require.Len(t, eds, 2)

	acc := eds[1]
	assert.Equal(t, "accts", acc.Collection())
	var fields []string
	for _, m := range acc.Members() {
		fields = append(fields, m.FieldName)
	}
	assert.Equal(t, []string{"mail", "nickname", "_id", "Owner", "Friends"}, fields)

	id, ok := acc.ID()
	require.True(t, ok)
	assert.Equal(t, "Key", id.MemberName)
	assert.False(t, id.AutoID)

	mail, _ := acc.Field("mail")
	assert.True(t, mail.IsUnique)
	nick, _ := acc.Field("nickname")
	assert.True(t, nick.IsUnique)

	owner, _ := acc.Member("Owner")
	assert.Equal(t, "people", owner.Reference.Collection)
	friends, _ := acc.Member("Friends")
	assert.Equal(t, "persons", friends.Reference.Collection)
	assert.True(t, friends.Reference.Many)

	got, ok := reg.Lookup("accts")
	require.True(t, ok)
	assert.Same(t, acc, got)
}

func TestApply_Errors(t *testing.T) {
	reg := docmap.NewRegistry()

	_, err := mapfile.Apply(reg, &mapfile.File{Version: "1", Entities: []mapfile.Entity{{Type: ""}}}, nil)
	assert.ErrorIs(t, err, docmap.ErrInvalidArgument)

	_, err = mapfile.Apply(reg, &mapfile.File{Version: "1", Entities: []mapfile.Entity{{Type: "x.Unknown"}}}, mapfile.TypeSet{})
	assert.ErrorIs(t, err, docmap.ErrInvalidArgument)
	assert.Contains(t, err.Error(), "x.Unknown")

	bad := &mapfile.File{Version: "1", Entities: []mapfile.Entity{
		{Type: "mapfile_test.Person", AutoMap: true},
		{Type: "mapfile_test.Account", Include: []string{"Owner.Name"}},
	}}
	eds, err := mapfile.Apply(reg, bad, mapfile.Types(Person{}, Account{}))
	assert.ErrorIs(t, err, docmap.ErrIllegalExpression)
	assert.Len(t, eds, 1)
}

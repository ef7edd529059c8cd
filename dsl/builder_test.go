package dsl_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/docmap"
	"github.com/reoring/docmap/dsl"
)

type User struct {
	Id   int
	Name string
}

type Group struct {
	ID      string
	Title   string
	Owner   *User
	Members []User
	Tags    []string
}

var (
	userID   = dsl.Prop(func(u *User) *int { return &u.Id })
	userName = dsl.Prop(func(u *User) *string { return &u.Name })
)

func TestEntity_EndToEnd(t *testing.T) {
	reg := docmap.NewRegistry()
	e, err := dsl.Entity[User](reg).
		AutoMap().
		ID(userID).
		Field(userName, "full_name").
		Index(userName, true).
		Build()
	require.NoError(t, err)

	ms := e.Members()
	require.Len(t, ms, 2)
	assert.Equal(t, "_id", ms[0].FieldName)
	assert.Equal(t, "Id", ms[0].MemberName)
	assert.True(t, ms[0].AutoID)
	assert.False(t, ms[0].IsUnique)
	assert.Equal(t, "full_name", ms[1].FieldName)
	assert.Equal(t, "Name", ms[1].MemberName)
	assert.True(t, ms[1].IsUnique)
	assert.False(t, ms[1].AutoID)

	published, ok := reg.Get(reflect.TypeFor[User](), false)
	require.True(t, ok)
	assert.Same(t, e, published)
	assert.True(t, published.Sealed())
}

func TestInclude_TwiceIsDuplicate(t *testing.T) {
	reg := docmap.NewRegistry()
	b := dsl.Entity[User](reg).Include(userName)
	require.NoError(t, b.Err())

	b.Include(userName)
	assert.ErrorIs(t, b.Err(), docmap.ErrDuplicateMember)

	_, err := b.Build()
	assert.ErrorIs(t, err, docmap.ErrDuplicateMember)
	e, ok := reg.Get(reflect.TypeFor[User](), false)
	require.True(t, ok)
	assert.Equal(t, 0, e.Len(), "failed chains publish nothing")
}

func TestInclude_IsNotIdentifier(t *testing.T) {
	reg := docmap.NewRegistry()
	e := dsl.Entity[User](reg).Include(userID).MustBuild()
	m, ok := e.Member("Id")
	require.True(t, ok)
	assert.Equal(t, "Id", m.FieldName)
	assert.False(t, m.AutoID)
}

func TestInclude_KeyTakenIsDuplicate(t *testing.T) {
	reg := docmap.NewRegistry()
	b := dsl.Entity[User](reg).Include(userID).Field(userID, "Name").Include(userName)
	assert.ErrorIs(t, b.Err(), docmap.ErrDuplicateMember)
}

func TestIgnore_ThenResolveIsAbsent(t *testing.T) {
	reg := docmap.NewRegistry()
	b := dsl.Entity[User](reg).AutoMap().Ignore(userName)
	require.NoError(t, b.Err())

	m, _, ok, err := docmap.Resolve(b.Draft(), userName)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, m)

	// unmapped members can be ignored too, and AutoMap respects it
	reg2 := docmap.NewRegistry()
	e := dsl.Entity[User](reg2).Ignore(userName).AutoMap().MustBuild()
	assert.Equal(t, 1, e.Len())
	_, ok = e.Member("Name")
	assert.False(t, ok)
}

func TestIgnore_ThenIncludeAgain(t *testing.T) {
	reg := docmap.NewRegistry()
	e := dsl.Entity[User](reg).AutoMap().Ignore(userName).Include(userName).MustBuild()
	m, ok := e.Member("Name")
	require.True(t, ok)
	assert.Equal(t, "Name", m.FieldName)
	assert.Equal(t, 2, e.Len())
}

func TestField_RenamesOnlyTheKey(t *testing.T) {
	reg := docmap.NewRegistry()
	b := dsl.Entity[User](reg).AutoMap()
	before, _ := b.Draft().Member("Name")
	getter, setter, dt := before.Getter, before.Setter, before.DataType

	b.Field(userName, "x")
	require.NoError(t, b.Err())
	after, _ := b.Draft().Member("Name")
	assert.Equal(t, "x", after.FieldName)
	assert.Equal(t, "Name", after.MemberName)
	assert.Equal(t, reflect.ValueOf(getter).Pointer(), reflect.ValueOf(after.Getter).Pointer())
	assert.Equal(t, reflect.ValueOf(setter).Pointer(), reflect.ValueOf(after.Setter).Pointer())
	assert.Equal(t, dt, after.DataType)
}

func TestField_BlankNameAndCollision(t *testing.T) {
	reg := docmap.NewRegistry()
	b := dsl.Entity[User](reg).Field(userName, "  ")
	assert.ErrorIs(t, b.Err(), docmap.ErrInvalidArgument)

	b = dsl.Entity[User](docmap.NewRegistry()).AutoMap().Field(userName, "_id")
	assert.ErrorIs(t, b.Err(), docmap.ErrDuplicateMember)

	// renaming a member to its own key is fine
	b = dsl.Entity[User](docmap.NewRegistry()).AutoMap().Field(userName, "Name")
	assert.NoError(t, b.Err())
}

func TestID_Defaults(t *testing.T) {
	reg := docmap.NewRegistry()
	e := dsl.Entity[User](reg).ID(userID).MustBuild()
	m, ok := e.ID()
	require.True(t, ok)
	assert.Equal(t, "Id", m.MemberName)
	assert.True(t, m.AutoID)

	e = dsl.Entity[User](docmap.NewRegistry()).ID(userID, false).MustBuild()
	m, _ = e.ID()
	assert.False(t, m.AutoID)
}

func TestID_SecondMemberIsDuplicate(t *testing.T) {
	reg := docmap.NewRegistry()
	b := dsl.Entity[User](reg).ID(userID).ID(userID, false)
	require.NoError(t, b.Err(), "re-marking the same member is allowed")

	b.ID(userName)
	assert.ErrorIs(t, b.Err(), docmap.ErrDuplicateMember)

	// the conventional id can be moved after renaming it
	e := dsl.Entity[User](docmap.NewRegistry()).
		AutoMap().
		Field(userID, "legacy_id").
		ID(userName).
		MustBuild()
	id, _ := e.ID()
	assert.Equal(t, "Name", id.MemberName)
}

func TestIndex_ByProperty(t *testing.T) {
	reg := docmap.NewRegistry()
	b := dsl.Entity[User](reg).Index(userName, true)
	m, _ := b.Draft().Member("Name")
	assert.True(t, m.IsUnique)

	b.Index(userName)
	assert.False(t, m.IsUnique)
}

func TestIndexFunc(t *testing.T) {
	reg := docmap.NewRegistry()
	e := dsl.Entity[User](reg).
		AutoMap().
		IndexFunc("name_len", func(u User) any { return len(u.Name) }, true).
		MustBuild()

	m, ok := e.Field("name_len")
	require.True(t, ok)
	assert.Equal(t, "name_len", m.MemberName)
	assert.Nil(t, m.Setter)
	assert.True(t, m.IsVirtual())
	assert.True(t, m.IsUnique)
	assert.Equal(t, 3, m.Getter(User{Name: "Ann"}))
	assert.Equal(t, 2, m.Getter(&User{Name: "Al"}))
	assert.Nil(t, m.Getter((*User)(nil)))

	vals, err := reg.Extract(&User{Id: 1, Name: "Bob"})
	require.NoError(t, err)
	assert.Equal(t, docmap.Value{Field: "name_len", Value: 3}, vals[2])
}

func TestIndexFunc_InvalidArguments(t *testing.T) {
	reg := docmap.NewRegistry()
	b := dsl.Entity[User](reg).IndexFunc("", func(User) any { return 1 })
	assert.ErrorIs(t, b.Err(), docmap.ErrInvalidArgument)

	b = dsl.Entity[User](docmap.NewRegistry()).IndexFunc("x", nil)
	assert.ErrorIs(t, b.Err(), docmap.ErrInvalidArgument)

	b = dsl.Entity[User](docmap.NewRegistry()).AutoMap().IndexFunc("Name", func(User) any { return 1 })
	assert.ErrorIs(t, b.Err(), docmap.ErrDuplicateMember)
}

func TestIndexField(t *testing.T) {
	reg := docmap.NewRegistry()
	b := dsl.Entity[User](reg).AutoMap().Field(userName, "full_name").IndexField("full_name", true)
	require.NoError(t, b.Err())
	m, _ := b.Draft().Field("full_name")
	assert.True(t, m.IsUnique)

	b.IndexField("missing", true)
	assert.ErrorIs(t, b.Err(), docmap.ErrInvalidArgument)

	b = dsl.Entity[User](docmap.NewRegistry()).AutoMap().IndexField(" ")
	assert.ErrorIs(t, b.Err(), docmap.ErrInvalidArgument)
}

func TestDbRef(t *testing.T) {
	owner := dsl.Prop(func(g *Group) **User { return &g.Owner })
	members := dsl.Prop(func(g *Group) *[]User { return &g.Members })

	reg := docmap.NewRegistry()
	e := dsl.Entity[Group](reg).
		DbRef(owner, "custom").
		DbRef(members).
		MustBuild()

	o, _ := e.Member("Owner")
	require.NotNil(t, o.Reference)
	assert.Equal(t, "custom", o.Reference.Collection)
	assert.False(t, o.Reference.Many)

	m, _ := e.Member("Members")
	require.NotNil(t, m.Reference)
	assert.Equal(t, "users", m.Reference.Collection)
	assert.True(t, m.Reference.Many)
	assert.Equal(t, reflect.TypeFor[User](), m.Reference.Target)

	b := dsl.Entity[Group](docmap.NewRegistry()).DbRef(docmap.Name("Tags"))
	assert.ErrorIs(t, b.Err(), docmap.ErrInvalidArgument)
}

func TestChain_StopsAtFirstError(t *testing.T) {
	reg := docmap.NewRegistry()
	b := dsl.Entity[User](reg).
		Include(docmap.Name("Nope")).
		Include(userName).
		Field(userName, "")
	assert.ErrorIs(t, b.Err(), docmap.ErrIllegalExpression)
	assert.Equal(t, 0, b.Draft().Len())
	assert.Panics(t, func() { b.MustBuild() })
}

func TestBuild_TwiceFails(t *testing.T) {
	reg := docmap.NewRegistry()
	b := dsl.Entity[User](reg).AutoMap()
	_, err := b.Build()
	require.NoError(t, err)
	b.Index(userName, true)
	assert.ErrorIs(t, b.Err(), docmap.ErrInvalidArgument)

	e, _ := reg.Get(reflect.TypeFor[User](), false)
	m, _ := e.Member("Name")
	assert.False(t, m.IsUnique)
}

func TestBuilder_ContinuesPublishedMapping(t *testing.T) {
	reg := docmap.NewRegistry()
	dsl.Entity[User](reg).AutoMap().Field(userName, "n").MustBuild()

	e := dsl.Entity[User](reg).Index(userName, true).Collection("people").MustBuild()
	m, _ := e.Member("Name")
	assert.Equal(t, "n", m.FieldName)
	assert.True(t, m.IsUnique)
	assert.Equal(t, "people", e.Collection())
}

func TestEntityOf_NonStruct(t *testing.T) {
	b := dsl.EntityOf(docmap.NewRegistry(), reflect.TypeFor[string]())
	assert.ErrorIs(t, b.Err(), docmap.ErrInvalidArgument)
	b.AutoMap().Include(docmap.Name("X"))
	_, err := b.Build()
	assert.ErrorIs(t, err, docmap.ErrInvalidArgument)
}

func TestBuild_PublishedDescriptorIsDetachedFromDraft(t *testing.T) {
	reg := docmap.NewRegistry()
	b := dsl.Entity[User](reg).AutoMap()
	m, ok := b.Draft().Member("Name")
	require.True(t, ok)

	e, err := b.Build()
	require.NoError(t, err)
	m.FieldName = "_id"
	m.IsUnique = true

	published, _ := reg.Get(reflect.TypeFor[User](), false)
	assert.Same(t, e, published)
	got, _ := published.Member("Name")
	assert.Equal(t, "Name", got.FieldName)
	assert.False(t, got.IsUnique)
	assert.NoError(t, published.Validate())
}

func TestIndexFunc_MayReuseRenamedMemberName(t *testing.T) {
	reg := docmap.NewRegistry()
	e, err := dsl.Entity[User](reg).
		AutoMap().
		Field(userName, "full_name").
		IndexFunc("Name", func(u User) any { return u.Name + "!" }).
		Build()
	require.NoError(t, err)

	virt, ok := e.Field("Name")
	require.True(t, ok)
	assert.True(t, virt.IsVirtual())
	assert.Equal(t, "Al!", virt.Getter(User{Name: "Al"}))

	m, ok := e.Member("Name")
	require.True(t, ok)
	assert.Equal(t, "full_name", m.FieldName)
}

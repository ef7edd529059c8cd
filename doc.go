// Package docmap describes how Go struct types map onto records of a
// schemaless document store.
//
// An EntityDescriptor lists, in order, the MemberDescriptors of one struct
// type: the document key of every field, which field is the identifier
// ("_id"), which fields carry a unique index and which fields reference
// records of other collections. Descriptors live in a Registry and are
// configured through the fluent builder in package dsl:
//
//	reg := docmap.NewRegistry()
//	dsl.Entity[User](reg).
//		AutoMap().
//		ID(docmap.Name("Id")).
//		Field(docmap.Name("Name"), "full_name").
//		Index(docmap.Name("Name"), true).
//		MustBuild()
//
//	e, _ := reg.Get(reflect.TypeFor[User](), false)
//
// Design policy:
//   - Builders mutate a draft; Registry.Publish seals it. Published
//     descriptors are immutable and safe for concurrent readers.
//   - Configuration errors are Issues (see errors.go) raised at the failing
//     builder call. Match them with errors.Is against ErrIllegalExpression,
//     ErrDuplicateMember and ErrInvalidArgument.
//   - Discovery, member construction, reference registration and collection
//     naming are pluggable through Options; Conventions is the default.
package docmap

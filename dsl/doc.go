// Package dsl provides the fluent mapping builder for docmap.
//
// Overview
//   - Builder: untyped builder over a reflect.Type, driven by docmap.Name
//     property references. Used by mapfile and other declarative front ends.
//   - EntityBuilder[T]: typed wrapper whose property references come from
//     field-pointer selectors (docmap.Select / Prop).
//
// Entry points
//   - Entity[T](reg): typed builder; chain AutoMap/Include/Ignore/Field/ID/Index/DbRef then Build or MustBuild.
//   - EntityOf(reg, t): untyped builder with the same operations.
//
// Quickstart
//
//	type User struct {
//		Id   int
//		Name string
//	}
//
//	reg := docmap.NewRegistry()
//	users := dsl.Entity[User](reg).
//		AutoMap().
//		ID(dsl.Prop(func(u *User) *int { return &u.Id })).
//		Field(dsl.Prop(func(u *User) *string { return &u.Name }), "full_name").
//		Index(docmap.Name("Name"), true).
//		MustBuild()
//
// Error handling
//   - The first failing call records its error; later calls are no-ops.
//   - Build returns that error (a docmap.Issue); MustBuild panics with it.
//   - Builders work on a draft. Readers of the registry only ever see the
//     snapshot published by Build.
package dsl

// Package binder fills request structs from form fields, query parameters
// and route parameters using struct tags.
//
//	type EditBookRequest struct {
//		Book  string `path:"book"`
//		Title string `form:"title"`
//		Year  int    `form:"year"`
//		Back  string `query:"back"`
//	}
//
// Each binder only touches fields carrying its own tag, so several can be
// applied to the same struct in turn. Supported field types are strings,
// signed and unsigned integers, booleans and pointers to those.
package binder

// Package meta defines the declarative field metadata understood by the form
// synthesis engine.
//
// Metadata is attached to struct fields through a `meta` struct tag:
//
//	type Activity struct {
//		Name        string    `meta:"displayName=Name;required;order=1;maxLength=120"`
//		Description string    `meta:"displayName=Description;maxLength=2000"`
//		Status      *Status   `meta:"displayName=Status;dataProviderBean=statusService"`
//		Owner       *User     `meta:"dataProviderBean=userService;dataProviderMethod=listActive"`
//		Tags        []string  `meta:"dataProviderBean=context;dataProviderMethod=availableTags"`
//		internal    string
//	}
//
// A field without the tag is not bindable. Values containing `;` can be
// single-quoted (`description='a; b'`). Boolean hints may be written bare
// (`required`) or with an explicit value (`required=false`).
//
// The data provider bean names "none", "this", "context" and "session" are
// sentinels; ParseTarget turns them into a closed Target variant so callers
// switch over TargetKind instead of comparing strings.
package meta

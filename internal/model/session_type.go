package model

// SessionType is a category of venue usage (for example a public
// skating session or a private hire slot).  It determines which
// products are offered and at what price.  Session types are
// created by staff, soft-disabled via IsActive and referenced by
// orders, so they are never hard-deleted while orders exist.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – unique display name.
//  Slug      – unique URL-safe identifier.
//  IsActive  – whether the session type is currently offered.
//  SortOrder – display ordering; listings sort by (sort_order, name).
type SessionType struct {
	ID        uint64 `json:"id"`         // session_types.id
	Name      string `json:"name"`       // session_types.name
	Slug      string `json:"slug"`       // session_types.slug
	IsActive  bool   `json:"is_active"`  // session_types.is_active
	SortOrder uint32 `json:"sort_order"` // session_types.sort_order
}

package model

// UserProfile is the single persona using the journal.
//
// There is at most one profile per journal: it is created on login,
// overwritten by profile edits and removed on logout. There is no password
// and no account server behind it.
//
// WHY POINTERS FOR Email/Bio/PhotoURL?
// The stored JSON distinguishes "field missing" from "empty string", and a
// nil pointer with omitempty keeps that distinction when we write it back.
// PhotoURL is the exception: a profile without a photo stores an explicit
// "photoUrl": null.
type UserProfile struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Email    *string `json:"email,omitempty"`
	Bio      *string `json:"bio,omitempty"`
	PhotoURL *string `json:"photoUrl"`
}

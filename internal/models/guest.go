package models

import "strings"

// DefaultGuestColor is used when a guest is created without a color.
const DefaultGuestColor = "#6aa9ff"

// TransientPicturePrefix marks session-scoped picture references (object
// URLs) that cannot survive a restart.
const TransientPicturePrefix = "blob:"

// Guest is a person who can be seated.
type Guest struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Color   string  `json:"color"`
	IsChild bool    `json:"isChild"`
	Picture *string `json:"picture"`
}

// Clone returns a deep copy of the guest.
func (g *Guest) Clone() *Guest {
	out := *g
	if g.Picture != nil {
		p := *g.Picture
		out.Picture = &p
	}
	return &out
}

// HasTransientPicture reports whether the picture reference is session-scoped.
func (g *Guest) HasTransientPicture() bool {
	return g.Picture != nil && strings.HasPrefix(*g.Picture, TransientPicturePrefix)
}

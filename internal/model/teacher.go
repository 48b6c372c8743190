package model

// Teacher is a catalog entry.  ID doubles as the owner slug carried in a
// teacher's access token.
type Teacher struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

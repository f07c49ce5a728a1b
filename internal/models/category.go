package models

// Category groups posts under a unique name.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

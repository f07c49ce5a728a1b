package dto

type CreatePostRequest struct {
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	Excerpt    string `json:"excerpt"`
	Content    string `json:"content"`
	CategoryID *int64 `json:"categoryId"`
}

// UpdatePostRequest carries a partial update; nil fields keep current values.
type UpdatePostRequest struct {
	Title      *string `json:"title"`
	Slug       *string `json:"slug"`
	Excerpt    *string `json:"excerpt"`
	Content    *string `json:"content"`
	CategoryID *int64  `json:"categoryId"`
}

type CreateCategoryRequest struct {
	Name string `json:"name"`
}

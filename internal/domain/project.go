package domain

// Project is a named grouping that owns issues. Projects are created
// implicitly on the first issue submitted under an unseen name and are never
// updated or deleted.
type Project struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

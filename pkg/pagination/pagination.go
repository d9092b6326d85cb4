// Package pagination provides the list envelope shared by every collection
// endpoint.
package pagination

// Query carries the common page parameters. Embed it in list query structs.
type Query struct {
	Page     int `query:"page" json:"page,omitempty" default:"1" validate:"min=1"`
	PageSize int `query:"page_size" json:"page_size,omitempty" default:"10" validate:"min=1,max=50"`
}

// Limit returns the SQL limit for the query.
func (q Query) Limit() int {
	return q.PageSize
}

// Offset returns the SQL offset for the query.
func (q Query) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// Page is the envelope returned by list endpoints.
type Page struct {
	Items    interface{} `json:"items"`
	NbItems  int         `json:"nb_items"`
	NbPages  int         `json:"nb_pages"`
	PageSize int         `json:"page_size"`
	Page     int         `json:"page"`
}

// NewPage assembles the envelope for one page of results.
func NewPage(items interface{}, total int, q Query) Page {
	nbPages := total / q.PageSize
	if total%q.PageSize != 0 {
		nbPages++
	}
	return Page{
		Items:    items,
		NbItems:  total,
		NbPages:  nbPages,
		PageSize: q.PageSize,
		Page:     q.Page,
	}
}

// Package pagination provides framework-agnostic page and page-request value
// objects shared by the repository and service layers. A Page carries its
// content slice plus derived metadata (total counts, first/last flags); a
// PageRequest carries the requested page coordinates and optional sort.
//
// Both types are pure data holders. Input clamping (default and maximum page
// sizes) is a service-boundary concern and intentionally does not live here.
package pagination

// Direction is a sort direction for a single Order clause.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Order is one {property, direction} pair of a Sort.
type Order struct {
	Property  string
	Direction Direction
}

// Sort is an ordered list of Order clauses. A nil or empty Sort means
// "repository default ordering".
type Sort []Order

// PageRequest identifies one page of a result set. Page is zero-based.
type PageRequest struct {
	Page int
	Size int
	Sort Sort
}

// Offset returns the row offset corresponding to the request.
func (r PageRequest) Offset() int { return r.Page * r.Size }

// Page is one page of results of type T together with pagination metadata.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int   `json:"total_pages"`
	Number        int   `json:"page"`
	Size          int   `json:"page_size"`
	First         bool  `json:"first"`
	Last          bool  `json:"last"`
	HasNext       bool  `json:"has_next"`
	HasPrevious   bool  `json:"has_previous"`
}

// NewPage assembles a Page from a content slice plus the request coordinates
// and the total number of matching elements. TotalPages is the ceiling of
// total/size; a non-positive size yields zero total pages (and Last=true).
func NewPage[T any](content []T, number, size int, total int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if size > 0 {
		totalPages = int((total + int64(size) - 1) / int64(size))
	}
	last := number >= totalPages-1
	return Page[T]{
		Content:       content,
		TotalElements: total,
		TotalPages:    totalPages,
		Number:        number,
		Size:          size,
		First:         number == 0,
		Last:          last,
		HasNext:       !last,
		HasPrevious:   number > 0,
	}
}

// Empty returns a page with no content and zeroed counts. First and Last are
// both true: an empty result set has exactly one (empty) page view.
func Empty[T any]() Page[T] {
	return Page[T]{
		Content: []T{},
		First:   true,
		Last:    true,
	}
}

// Map produces a new Page with identical pagination metadata and content
// transformed element-wise by fn. Mapping the identity function yields equal
// content; mapping g over a page mapped with f equals mapping g∘f once.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, len(p.Content))
	for i, v := range p.Content {
		out[i] = fn(v)
	}
	return Page[U]{
		Content:       out,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		Number:        p.Number,
		Size:          p.Size,
		First:         p.First,
		Last:          p.Last,
		HasNext:       p.HasNext,
		HasPrevious:   p.HasPrevious,
	}
}

// By returns a Sort with a single clause.
func By(property string, dir Direction) Sort {
	return Sort{{Property: property, Direction: dir}}
}

package api

import "fmt"

//Pagination bounds a read. Offset is a number of records, not a page index.
type Pagination struct {
	Offset int
	Limit  int
}

type invalidPagination string

func (err invalidPagination) Error() string {
	return string(err)
}

func (err invalidPagination) IsValidation() bool {
	return true
}

func (p Pagination) Validate() error {
	if p.Offset < 0 || p.Limit < 0 {
		return invalidPagination(fmt.Sprintf("invalid pagination: offset=%d limit=%d", p.Offset, p.Limit))
	}
	return nil
}

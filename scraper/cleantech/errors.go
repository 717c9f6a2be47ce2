package cleantech

import "errors"

var (
	ErrNoTable        = errors.New("no table found on list page")
	ErrUnexpectedCell = errors.New("row has more cells than known columns")
	ErrMarkerNotFound = errors.New("profile json marker not found")
	ErrNoCompany      = errors.New("profile json has no company object")
	ErrMissingURL     = errors.New("list row has no cleantech_url")
)

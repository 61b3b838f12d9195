package services

import "errors"

var (
	// ErrGraphQL is returned when a GraphQL response carries an errors array
	ErrGraphQL = errors.New("graphql error")
	// ErrUnexpectedStatus is returned for non-200 responses from a contribution source
	ErrUnexpectedStatus = errors.New("unexpected response status")
)

package domain

import "time"

// Client is a person or company the agency files applications and takes
// orders for. Email is unique across the book. Inactive clients stay on
// record so their applications and orders keep their references.
type Client struct {
	ID             string
	FullName       string
	Email          string
	Phone          string
	Nationality    string
	PassportNumber string
	Company        string
	Address        string
	Notes          string
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

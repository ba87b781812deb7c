package domain

import "time"

type CustomerStatus string

const (
	CustomerStatusActive   CustomerStatus = "Active"
	CustomerStatusInactive CustomerStatus = "Inactive"
)

type Customer struct {
	ID             int32          `json:"id"`
	FullName       string         `json:"full_name"`
	IdentityNumber string         `json:"identity_number"`
	Email          string         `json:"email"`
	Phone          string         `json:"phone"`
	Address        string         `json:"address"`
	Status         CustomerStatus `json:"status"`
	CreatedOn      time.Time      `json:"created_on"`
}

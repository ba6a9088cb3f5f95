package domain

// Customer is the notification recipient. Accounts themselves are managed elsewhere.
type Customer struct {
	ID                int64  `json:"id"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	FirstName         string `json:"first_name"`
	LastName          string `json:"last_name"`
	ReceivePromotions bool   `json:"receive_promotions"`
}

func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

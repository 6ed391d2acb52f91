package customer

// Customer is read-only for the order core. Handle is unique.
type Customer struct {
	ID      int64
	Handle  string
	Name    string
	IsAdmin bool
}
